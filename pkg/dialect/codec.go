package dialect

import (
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/YaroslavMizgirev/shelf/pkg/core"
)

// Columns is the minimum number of fields of a data row.
const Columns = 9

// Header lists the columns in the order they are written.
var Header = []string{
	"id", "title", "authors", "year", "edition",
	"storage_name", "storage_path", "isRead", "type",
}

// Codec maps catalog lines to Books and back.
type Codec struct {
	// Mode decides whether malformed year and isRead values are defaulted
	// or reported.
	Mode Mode
	// Now returns the current time; it feeds year defaults and synthetic ids.
	// Defaults to time.Now.
	Now func() time.Time
}

// New creates a Codec in the given mode.
func New(mode Mode) *Codec {
	return &Codec{Mode: mode, Now: time.Now}
}

func (c *Codec) now() time.Time {
	if c == nil || c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c *Codec) mode() Mode {
	if c == nil {
		return Permissive
	}
	return c.Mode
}

// HasHeader reports whether the first line of a document is a header:
// case-insensitively it mentions "id" and either "title" or "authors".
func HasHeader(line string) bool {
	l := strings.ToLower(line)
	return strings.Contains(l, "id") &&
		(strings.Contains(l, "title") || strings.Contains(l, "authors"))
}

// DecodeRow maps cleaned fields (see Fields) onto a Book.
//
// Rows with fewer than Columns fields are rejected with an error wrapping
// core.ErrMalformedRow. Absent fields get their placeholders; an empty id
// is synthesized from the current time and ordinal. In strict mode a
// malformed year or isRead rejects the row with *FieldError values.
func (c *Codec) DecodeRow(fields []string, ordinal int) (core.Book, error) {
	if len(fields) < Columns {
		return core.Book{}, shortRowError(len(fields))
	}
	now := c.now()

	year, yearErr := ParseYear(fields[3], now, c.mode())
	isRead, readErr := ParseRead(fields[7], c.mode())
	if err := errors.Join(yearErr, readErr); err != nil {
		return core.Book{}, err
	}

	b := core.Book{
		ID:      fields[0],
		Title:   orDefault(fields[1], core.DefaultTitle),
		Authors: core.SplitAuthors(fields[2]),
		Year:    year,
		Edition: fields[4],
		Storage: core.Storage{
			Name: orDefault(fields[5], core.DefaultStorageName),
			Path: fields[6],
		},
		IsRead: isRead,
		Type:   orDefault(fields[8], core.DefaultType),
	}
	if b.ID == "" {
		b.ID = SyntheticID(now, ordinal)
	}
	return b, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Parse decodes a whole document.
//
// Lines are split on '\n' and trimmed; blank lines are skipped. The first
// line is skipped when HasHeader recognizes it. Rejected rows never abort the
// document: the surviving books are returned together with the joined
// *RowError values of the rejected ones.
func (c *Codec) Parse(text string) ([]core.Book, error) {
	// Only trailing space is dropped so RowError lines match the document.
	lines := strings.Split(strings.TrimRightFunc(text, unicode.IsSpace), "\n")

	first := 0
	for first < len(lines) && strings.TrimSpace(lines[first]) == "" {
		first++
	}
	start := first
	if first < len(lines) && HasHeader(lines[first]) {
		start = first + 1
	}

	var (
		books []core.Book
		errs  []error
	)
	for i := start; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		b, err := c.DecodeRow(Fields(line), i)
		if err != nil {
			errs = append(errs, &RowError{Line: i + 1, Err: err})
			continue
		}
		books = append(books, b)
	}
	return books, errors.Join(errs...)
}

// EncodeLine renders one data line.
//
// Text columns are always quoted with inner quotes doubled. id, year and
// isRead are bare; an id holding a delimiter, quote or backslash is quoted
// too. Backslashes are escaped everywhere so the tokenizer reads them back as
// written. Decoding trims every field, so surrounding whitespace is not kept.
func EncodeLine(b core.Book) string {
	fields := []string{
		encodeID(b.ID),
		quote(b.Title),
		quote(strings.Join(b.Authors, core.AuthorSeparator)),
		strconv.Itoa(b.Year),
		quote(b.Edition),
		quote(b.Storage.Name),
		quote(b.Storage.Path),
		strconv.FormatBool(b.IsRead),
		quote(b.Type),
	}
	return strings.Join(fields, string(Delimiter))
}

// Encode renders the header followed by one line per book, joined by '\n'
// without a trailing newline.
func Encode(books []core.Book) string {
	lines := make([]string, 0, len(books)+1)
	lines = append(lines, strings.Join(Header, string(Delimiter)))
	for _, b := range books {
		lines = append(lines, EncodeLine(b))
	}
	return strings.Join(lines, "\n")
}

func quote(s string) string {
	s = strings.ReplaceAll(s, string(Escape), string(Escape)+string(Escape))
	return string(Quote) + strings.ReplaceAll(s, string(Quote), string(Quote)+string(Quote)) + string(Quote)
}

func encodeID(id string) string {
	if strings.ContainsAny(id, string([]rune{Delimiter, Quote, Escape})) {
		return quote(id)
	}
	return id
}
