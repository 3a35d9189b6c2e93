package core

import (
	"sort"
	"strings"
)

// ReadState selects books by their read flag.
type ReadState string

const (
	ReadAny    ReadState = ""
	ReadDone   ReadState = "read"
	ReadUnread ReadState = "unread"
)

// Query narrows the collection. Zero fields match everything.
type Query struct {
	// Search is matched case-insensitively against the title and every author.
	Search string
	// Type must equal the book type exactly.
	Type string
	Read ReadState
}

// Match reports whether b satisfies q.
func (q Query) Match(b Book) bool {
	if q.Type != "" && b.Type != q.Type {
		return false
	}
	switch q.Read {
	case ReadDone:
		if !b.IsRead {
			return false
		}
	case ReadUnread:
		if b.IsRead {
			return false
		}
	}
	needle := strings.TrimSpace(q.Search)
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(b.Title), strings.ToLower(needle)) {
		return true
	}
	return b.HasAuthor(needle)
}

// Stats summarizes the collection.
type Stats struct {
	Total  int `json:"total"`
	Read   int `json:"read"`
	Unread int `json:"unread"`
}

// Filter returns the books matching q, in collection order.
func (s *Service) Filter(q Query) []Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Book
	for _, b := range s.books {
		if q.Match(b) {
			out = append(out, b.Clone())
		}
	}
	return out
}

// Stats counts total, read and unread books.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{Total: len(s.books)}
	for _, b := range s.books {
		if b.IsRead {
			st.Read++
		}
	}
	st.Unread = st.Total - st.Read
	return st
}

// Types returns the distinct book types, sorted.
func (s *Service) Types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{})
	var types []string
	for _, b := range s.books {
		if _, ok := seen[b.Type]; ok {
			continue
		}
		seen[b.Type] = struct{}{}
		types = append(types, b.Type)
	}
	sort.Strings(types)
	return types
}
