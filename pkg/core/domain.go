// Package core holds the catalog domain: the Book entity, the ports the
// catalog talks through, and the Service that owns the in-memory collection.
package core

import "strings"

// Storage describes where a physical or digital copy lives.
type Storage struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
}

// Book is the central entity of the domain.
// It is one row of the catalog document.
type Book struct {
	ID      string   `json:"id" yaml:"id"`
	Title   string   `json:"title" yaml:"title"`
	Authors []string `json:"authors" yaml:"authors"`
	Year    int      `json:"year" yaml:"year"`
	Edition string   `json:"edition" yaml:"edition"`
	Storage Storage  `json:"storage" yaml:"storage"`
	IsRead  bool     `json:"isRead" yaml:"isRead"`
	Type    string   `json:"type" yaml:"type"`
}

// Clone returns a copy that shares no slices with b.
func (b Book) Clone() Book {
	c := b
	if b.Authors != nil {
		c.Authors = append([]string(nil), b.Authors...)
	}
	return c
}

// HasAuthor reports whether any author contains needle, case-insensitively.
func (b Book) HasAuthor(needle string) bool {
	needle = strings.ToLower(needle)
	for _, a := range b.Authors {
		if strings.Contains(strings.ToLower(a), needle) {
			return true
		}
	}
	return false
}

// Format names an on-disk representation of the collection.
type Format string

const (
	FormatDialect Format = "csv"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
)

// EventType represents the type of change observed on the catalog document.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change of a catalog document.
type Event struct {
	Type      EventType
	Name      string
	Timestamp int64 // Unix timestamp
}

// String implements lifecycle.Event.
func (e Event) String() string {
	return string(e.Type) + " " + e.Name
}
