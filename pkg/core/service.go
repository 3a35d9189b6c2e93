package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
)

// DefaultDocument is the catalog document name used when none is configured.
const DefaultDocument = "lib.csv"

const defaultEventBuffer = 100

// Service owns the authoritative in-memory collection of books.
//
// Every mutation re-encodes the whole collection in the dialect and hands it
// to the repository; the in-memory collection only changes once that write
// succeeded. A mutex serializes mutations.
type Service struct {
	repo      Repository
	codecs    map[Format]Codec
	confirmer Confirmer
	logger    *slog.Logger
	document  string
	strict    bool
	now       func() time.Time

	eventBufferSize int

	mu        sync.Mutex
	books     []Book
	editingID string
	lastID    int64
	persisted []byte
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithCodecs registers the codecs used for persistence, import and export.
// The FormatDialect codec is required for persistence.
func WithCodecs(codecs map[Format]Codec) ServiceOption {
	return func(s *Service) {
		for f, c := range codecs {
			s.codecs[f] = c
		}
	}
}

// WithConfirmer sets the prompt consulted before a removal.
func WithConfirmer(c Confirmer) ServiceOption {
	return func(s *Service) { s.confirmer = c }
}

// WithServiceLogger sets the logger for the service.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// WithDocument sets the catalog document name (default "lib.csv").
func WithDocument(name string) ServiceOption {
	return func(s *Service) {
		if name != "" {
			s.document = name
		}
	}
}

// WithStrictLoading makes LoadAll and ImportForeign report rejected rows
// as errors instead of only logging them.
func WithStrictLoading(strict bool) ServiceOption {
	return func(s *Service) { s.strict = strict }
}

// WithClock replaces time.Now, for id generation and year defaults.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithEventBufferSize sets the buffer of the channel returned by Watch.
func WithEventBufferSize(size int) ServiceOption {
	return func(s *Service) {
		if size > 0 {
			s.eventBufferSize = size
		}
	}
}

// NewService creates a new Service.
func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{
		repo:            repo,
		codecs:          make(map[Format]Codec),
		document:        DefaultDocument,
		now:             time.Now,
		eventBufferSize: defaultEventBuffer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repository returns the underlying storage adapter.
func (s *Service) Repository() Repository {
	return s.repo
}

// Document returns the catalog document name.
func (s *Service) Document() string {
	return s.document
}

// Load reads the catalog document from the repository and replaces the
// collection with it. When the document cannot be read the collection
// becomes empty and the error wraps ErrSourceUnavailable.
func (s *Service) Load(ctx context.Context) error {
	data, err := s.repo.Read(ctx, s.document)
	if err != nil {
		s.mu.Lock()
		s.books = nil
		s.persisted = nil
		s.mu.Unlock()
		return fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, s.document, err)
	}
	_, err = s.LoadAll(ctx, data)
	return err
}

// LoadAll parses a whole dialect document and replaces the collection.
//
// Rejected rows are skipped and logged. In strict mode they are also
// returned as an error; the collection is replaced either way.
func (s *Service) LoadAll(ctx context.Context, data []byte) ([]Book, error) {
	books, rowErr, err := s.decode(FormatDialect, data)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.books = books
	s.persisted = bytes.Clone(data)
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Debug("loaded catalog", "document", s.document, "books", len(books))
	}
	if s.strict && rowErr != nil {
		return cloneBooks(books), rowErr
	}
	return cloneBooks(books), nil
}

// decode runs the codec for format. Row-level failures are logged and
// returned separately from format-level ones.
func (s *Service) decode(format Format, data []byte) (books []Book, rowErr error, err error) {
	codec, ok := s.codecs[format]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	books, err = codec.Decode(data)
	if err != nil && !IsRowError(err) {
		return nil, nil, err
	}
	if err != nil {
		s.logRowErrors(err)
	}
	return books, err, nil
}

func (s *Service) logRowErrors(err error) {
	if s.logger == nil {
		return
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			s.logger.Warn("skipped malformed row", "document", s.document, "error", e)
		}
		return
	}
	s.logger.Warn("skipped malformed row", "document", s.document, "error", err)
}

// Add appends a book and persists the collection. An empty ID is replaced
// by a fresh one and an ID already in the collection is rejected with
// ErrDuplicateID; the stored book is returned.
func (s *Service) Add(ctx context.Context, b Book) (Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b = Normalize(b, s.now())
	if b.ID == "" {
		b.ID = s.nextID(s.books)
	} else if indexOf(s.books, b.ID) >= 0 {
		return Book{}, fmt.Errorf("%w: %s", ErrDuplicateID, b.ID)
	}

	next := append(cloneBooks(s.books), b)
	if err := s.persist(ctx, next, "add "+b.Title); err != nil {
		return Book{}, err
	}
	s.books = next
	return b.Clone(), nil
}

// BeginEdit marks id as the book being edited and returns it.
func (s *Service) BeginEdit(id string) (Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.books, id)
	if i < 0 {
		return Book{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.editingID = id
	return s.books[i].Clone(), nil
}

// CancelEdit clears the pending edit marker.
func (s *Service) CancelEdit() {
	s.mu.Lock()
	s.editingID = ""
	s.mu.Unlock()
}

// EditingID returns the id marked by BeginEdit, or "".
func (s *Service) EditingID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editingID
}

// Update replaces the book with the given id and persists the collection.
// An unknown id is a no-op that reports false. The pending edit marker is
// cleared in every case.
func (s *Service) Update(ctx context.Context, id string, b Book) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.editingID = "" }()

	i := indexOf(s.books, id)
	if i < 0 {
		return false, nil
	}

	b = Normalize(b, s.now())
	b.ID = id

	next := cloneBooks(s.books)
	next[i] = b
	if err := s.persist(ctx, next, "update "+b.Title); err != nil {
		return false, err
	}
	s.books = next
	return true, nil
}

// Remove deletes the book with the given id once the confirmer approves,
// then persists the collection. A declined (or missing) confirmation
// reports false and changes nothing.
func (s *Service) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.books, id)
	if i < 0 {
		return false, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !s.confirm(ctx, s.books[i]) {
		if s.logger != nil {
			s.logger.Debug("removal declined", "id", id)
		}
		return false, nil
	}

	next := removeAt(s.books, i)
	if err := s.persist(ctx, next, "remove "+s.books[i].Title); err != nil {
		return false, err
	}
	s.books = next
	if s.editingID == id {
		s.editingID = ""
	}
	return true, nil
}

func (s *Service) confirm(ctx context.Context, b Book) bool {
	if s.confirmer == nil {
		return false
	}
	return s.confirmer.Confirm(ctx, fmt.Sprintf("Delete %q (%s)?", b.Title, b.ID))
}

// Decode parses data in the given format without touching the collection.
// Every book goes through Coerce, so dialect documents decode exactly as
// LoadAll reads them; JSON and YAML documents must hold a top-level
// sequence. Rejected rows are logged and, in strict mode, returned as an
// error with no books.
func (s *Service) Decode(data []byte, format Format) ([]Book, error) {
	books, rowErr, err := s.decode(format, data)
	if err != nil {
		return nil, err
	}
	if s.strict && rowErr != nil {
		return nil, rowErr
	}
	now := s.now()
	for i := range books {
		books[i] = Coerce(books[i], now)
	}
	return books, nil
}

// ImportForeign replaces the collection with the books decoded from data
// and persists it. On any failure the collection is left unmodified.
func (s *Service) ImportForeign(ctx context.Context, data []byte, format Format) ([]Book, error) {
	books, err := s.Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", format, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reason := fmt.Sprintf("import %d books from %s", len(books), format)
	if err := s.persist(ctx, books, reason); err != nil {
		return nil, err
	}
	s.books = books
	s.editingID = ""
	return cloneBooks(books), nil
}

// Flush writes the current collection even when nothing changed. It
// creates the catalog document of a fresh library.
func (s *Service) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx, s.books, "initialize "+s.document)
}

// Export encodes the collection in the given format.
func (s *Service) Export(format Format) ([]byte, error) {
	codec, ok := s.codecs[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	s.mu.Lock()
	books := cloneBooks(s.books)
	s.mu.Unlock()
	return codec.Encode(books)
}

// Books returns a copy of the collection in order.
func (s *Service) Books() []Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneBooks(s.books)
}

// Get returns the book with the given id.
func (s *Service) Get(id string) (Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.books, id); i >= 0 {
		return s.books[i].Clone(), nil
	}
	return Book{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// persist encodes books in the dialect and writes the catalog document.
// Callers hold s.mu.
func (s *Service) persist(ctx context.Context, books []Book, reason string) error {
	codec, ok := s.codecs[FormatDialect]
	if !ok {
		return fmt.Errorf("%w: no %q codec registered", ErrUnsupportedFormat, FormatDialect)
	}
	data, err := codec.Encode(books)
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if _, ok := ctx.Value(ChangeReasonKey).(string); !ok {
		ctx = context.WithValue(ctx, ChangeReasonKey, reason)
	}
	if err := s.repo.Write(ctx, s.document, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.document, err)
	}
	s.persisted = data
	if s.logger != nil {
		s.logger.Debug("persisted catalog", "document", s.document, "books", len(books), "reason", reason)
	}
	return nil
}

// nextID returns a millisecond timestamp id that is strictly greater than
// any id handed out before and not used in books.
func (s *Service) nextID(books []Book) string {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	for indexOf(books, strconv.FormatInt(id, 10)) >= 0 {
		id++
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

// Watch reloads the collection whenever the catalog document is changed by
// someone else and forwards those events. Writes made by this service are
// recognized and not reloaded. The returned channel closes with ctx.
func (s *Service) Watch(ctx context.Context) (<-chan Event, error) {
	w, ok := s.repo.(Watchable)
	if !ok {
		return nil, errors.New("repository does not support watching")
	}
	upstream, err := w.Watch(ctx, s.document)
	if err != nil {
		return nil, err
	}

	out := make(chan Event, s.eventBufferSize)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-upstream:
				if !ok {
					return nil
				}
				if !s.reload(ctx, e) {
					continue
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return out, nil
}

// reload applies an external change. It reports false for echoes of our
// own writes.
func (s *Service) reload(ctx context.Context, e Event) bool {
	if e.Type == EventDelete {
		s.mu.Lock()
		s.books = nil
		s.persisted = nil
		s.mu.Unlock()
		if s.logger != nil {
			s.logger.Warn("catalog document removed", "document", s.document)
		}
		return true
	}

	data, err := s.repo.Read(ctx, s.document)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("reload failed", "document", s.document, "error", err)
		}
		return false
	}

	s.mu.Lock()
	own := bytes.Equal(data, s.persisted)
	s.mu.Unlock()
	if own {
		return false
	}

	if _, err := s.LoadAll(ctx, data); err != nil && s.logger != nil {
		s.logger.Warn("reloaded catalog with errors", "document", s.document, "error", err)
	}
	return true
}

// History lists the recorded revisions of the catalog document when the
// repository keeps them.
func (s *Service) History(ctx context.Context) ([]Revision, error) {
	v, ok := s.repo.(Versioned)
	if !ok {
		return nil, errors.New("repository does not keep history")
	}
	return v.History(ctx, s.document)
}

// Close releases the repository when it holds resources.
func (s *Service) Close() error {
	if c, ok := s.repo.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func indexOf(books []Book, id string) int {
	for i := range books {
		if books[i].ID == id {
			return i
		}
	}
	return -1
}

func removeAt(books []Book, i int) []Book {
	next := make([]Book, 0, len(books)-1)
	next = append(next, cloneBooks(books[:i])...)
	return append(next, cloneBooks(books[i+1:])...)
}

func cloneBooks(books []Book) []Book {
	if books == nil {
		return nil
	}
	out := make([]Book, len(books))
	for i, b := range books {
		out[i] = b.Clone()
	}
	return out
}
