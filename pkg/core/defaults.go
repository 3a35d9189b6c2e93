package core

import (
	"errors"
	"strings"
	"time"
)

// Placeholders used when a field is absent from the source.
const (
	DefaultTitle       = "Untitled"
	DefaultAuthor      = "Unknown author"
	DefaultStorageName = "Not specified"
	DefaultType        = "Other"
)

// AuthorSeparator joins authors inside a single field.
const AuthorSeparator = "|"

// SplitAuthors splits a pipe-joined author field and trims each element.
// Empty elements are kept. A blank field becomes the placeholder author.
func SplitAuthors(field string) []string {
	if strings.TrimSpace(field) == "" {
		return []string{DefaultAuthor}
	}
	parts := strings.Split(field, AuthorSeparator)
	authors := make([]string, 0, len(parts))
	for _, p := range parts {
		authors = append(authors, strings.TrimSpace(p))
	}
	return authors
}

// Normalize coerces b into canonical shape. Authors that still carry a
// pipe-joined list are split, blank authors are dropped, and absent fields
// get their placeholders. Year zero becomes the year of now.
func Normalize(b Book, now time.Time) Book {
	n := b.Clone()
	n.Title = strings.TrimSpace(n.Title)
	if n.Title == "" {
		n.Title = DefaultTitle
	}

	var authors []string
	for _, a := range n.Authors {
		for _, part := range strings.Split(a, AuthorSeparator) {
			if part = strings.TrimSpace(part); part != "" {
				authors = append(authors, part)
			}
		}
	}
	if len(authors) == 0 {
		authors = []string{DefaultAuthor}
	}
	n.Authors = authors

	if n.Year == 0 {
		n.Year = now.Year()
	}
	if strings.TrimSpace(n.Storage.Name) == "" {
		n.Storage.Name = DefaultStorageName
	}
	if strings.TrimSpace(n.Type) == "" {
		n.Type = DefaultType
	}
	return n
}

// Coerce brings a decoded book into canonical shape without rewriting its
// content: an author that still holds a pipe-joined list is split as
// SplitAuthors does, and year zero becomes the year of now.
func Coerce(b Book, now time.Time) Book {
	c := b.Clone()
	if len(c.Authors) == 0 {
		c.Authors = []string{DefaultAuthor}
	} else {
		authors := make([]string, 0, len(c.Authors))
		for _, a := range c.Authors {
			if strings.Contains(a, AuthorSeparator) {
				authors = append(authors, SplitAuthors(a)...)
				continue
			}
			authors = append(authors, a)
		}
		c.Authors = authors
	}
	if c.Year == 0 {
		c.Year = now.Year()
	}
	return c
}

// IsRowError reports whether err only describes rejected rows or fields,
// which never abort a whole-document load.
func IsRowError(err error) bool {
	if err == nil {
		return false
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if !IsRowError(e) {
				return false
			}
		}
		return true
	}
	return errors.Is(err, ErrMalformedRow) || errors.Is(err, ErrMalformedField)
}
