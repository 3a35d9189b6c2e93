package core

import (
	"context"
	"fmt"
)

// Batch stages mutations against a copy of the collection. It is only
// valid inside the function passed to WithBatch.
type Batch struct {
	s      *Service
	ctx    context.Context
	books  []Book
	reason []string
}

// Add stages a new book and returns it with its assigned id. A book whose
// id is empty or already staged gets a fresh one, so merged imports never
// duplicate ids.
func (b *Batch) Add(book Book) Book {
	book = Normalize(book, b.s.now())
	if book.ID == "" || indexOf(b.books, book.ID) >= 0 {
		book.ID = b.s.nextID(b.books)
	}
	b.books = append(b.books, book)
	b.reason = append(b.reason, "add "+book.Title)
	return book.Clone()
}

// Update stages a replacement for id. It reports false for unknown ids.
func (b *Batch) Update(id string, book Book) bool {
	i := indexOf(b.books, id)
	if i < 0 {
		return false
	}
	book = Normalize(book, b.s.now())
	book.ID = id
	b.books[i] = book
	b.reason = append(b.reason, "update "+book.Title)
	return true
}

// Remove stages a removal once the service confirmer approves it.
func (b *Batch) Remove(id string) (bool, error) {
	i := indexOf(b.books, id)
	if i < 0 {
		return false, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !b.s.confirm(b.ctx, b.books[i]) {
		return false, nil
	}
	b.reason = append(b.reason, "remove "+b.books[i].Title)
	b.books = removeAt(b.books, i)
	return true, nil
}

// Books returns the staged collection.
func (b *Batch) Books() []Book {
	return cloneBooks(b.books)
}

// WithBatch runs fn against a staged copy of the collection and persists
// the result in a single write. If fn returns an error nothing is written
// and the collection is left unchanged.
func (s *Service) WithBatch(ctx context.Context, fn func(b *Batch) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := &Batch{s: s, ctx: ctx, books: cloneBooks(s.books)}
	if err := fn(b); err != nil {
		return err
	}
	if len(b.reason) == 0 {
		return nil
	}

	reason := b.reason[0]
	if len(b.reason) > 1 {
		reason = fmt.Sprintf("batch: %d changes", len(b.reason))
	}
	if err := s.persist(ctx, b.books, reason); err != nil {
		return err
	}
	s.books = b.books
	if s.editingID != "" && indexOf(s.books, s.editingID) < 0 {
		s.editingID = ""
	}
	return nil
}
