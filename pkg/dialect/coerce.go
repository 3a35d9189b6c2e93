package dialect

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/YaroslavMizgirev/shelf/pkg/core"
)

// Mode selects how coercion failures are handled.
type Mode int

const (
	// Permissive replaces malformed numeric and boolean fields with defaults.
	Permissive Mode = iota
	// Strict reports malformed numeric and boolean fields as *FieldError.
	Strict
)

func (m Mode) String() string {
	if m == Strict {
		return "strict"
	}
	return "permissive"
}

// ParseYear reads a year field.
//
// An empty value is absent and yields the year of now. In permissive mode
// the leading integer of the value is used, so "1999 (reprint)" is 1999; a
// value with no leading integer, or whose integer is zero, falls back to the
// year of now. Strict mode requires the whole value to be an integer.
func ParseYear(s string, now time.Time, mode Mode) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now.Year(), nil
	}
	if mode == Strict {
		y, err := strconv.Atoi(s)
		if err != nil {
			return 0, &FieldError{Field: "year", Value: s}
		}
		if y == 0 {
			return now.Year(), nil
		}
		return y, nil
	}

	y, ok := leadingInt(s)
	if !ok || y == 0 {
		return now.Year(), nil
	}
	return y, nil
}

// leadingInt parses an optional sign followed by the longest run of digits.
func leadingInt(s string) (int, bool) {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	j := i
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	if j == i {
		return 0, false
	}
	n, err := strconv.Atoi(s[:j])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseRead reads the isRead field. Only the exact literal "true" is true.
// Strict mode rejects anything other than "true", "false" or empty.
func ParseRead(s string, mode Mode) (bool, error) {
	if s == "true" {
		return true, nil
	}
	if mode == Strict && s != "false" && s != "" {
		return false, &FieldError{Field: "isRead", Value: s}
	}
	return false, nil
}

// CoerceAuthors turns a structured value into an author list. A string is
// split on the author separator; a sequence keeps one author per element.
func CoerceAuthors(v any) []string {
	switch t := v.(type) {
	case nil:
		return []string{core.DefaultAuthor}
	case string:
		return core.SplitAuthors(t)
	case []string:
		return core.Normalize(core.Book{Authors: t}, time.Time{}).Authors
	case []any:
		authors := make([]string, 0, len(t))
		for _, a := range t {
			if a == nil {
				continue
			}
			authors = append(authors, fmt.Sprint(a))
		}
		return core.Normalize(core.Book{Authors: authors}, time.Time{}).Authors
	default:
		return core.SplitAuthors(fmt.Sprint(t))
	}
}

// CoerceYear turns a structured value into a year. Numeric strings are
// parsed; anything unusable falls back to the year of now.
func CoerceYear(v any, now time.Time) int {
	switch t := v.(type) {
	case int:
		if t != 0 {
			return t
		}
	case int64:
		if t != 0 {
			return int(t)
		}
	case uint64:
		if t != 0 && t <= math.MaxInt32 {
			return int(t)
		}
	case float64:
		if t != 0 && !math.IsNaN(t) && !math.IsInf(t, 0) {
			return int(t)
		}
	case json.Number:
		return CoerceYear(string(t), now)
	case string:
		y, _ := ParseYear(t, now, Permissive)
		return y
	}
	return now.Year()
}

// CoerceRead turns a structured value into a read flag. Textual booleans
// are compared case-insensitively.
func CoerceRead(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "true")
	default:
		return false
	}
}

// CoerceString renders a scalar as text; nil is empty.
func CoerceString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// FromMap maps one structured object (a JSON or YAML backup element) onto a
// Book in canonical shape. Storage may be nested ("storage": {"name", "path"})
// or flat ("storage_name", "storage_path"). An object without an id gets one
// from now and ordinal.
func FromMap(m map[string]any, ordinal int, now time.Time) core.Book {
	b := core.Book{
		ID:      strings.TrimSpace(CoerceString(m["id"])),
		Title:   CoerceString(m["title"]),
		Authors: CoerceAuthors(m["authors"]),
		Year:    CoerceYear(m["year"], now),
		Edition: CoerceString(m["edition"]),
		IsRead:  CoerceRead(m["isRead"]),
		Type:    CoerceString(m["type"]),
	}

	switch s := m["storage"].(type) {
	case map[string]any:
		b.Storage.Name = CoerceString(s["name"])
		b.Storage.Path = CoerceString(s["path"])
	default:
		b.Storage.Name = CoerceString(m["storage_name"])
		b.Storage.Path = CoerceString(m["storage_path"])
	}

	if b.ID == "" {
		b.ID = SyntheticID(now, ordinal)
	}
	return core.Normalize(b, now)
}

// SyntheticID builds an id from the millisecond timestamp and a row ordinal,
// so rows of one pass never collide.
func SyntheticID(now time.Time, ordinal int) string {
	return strconv.FormatInt(now.UnixMilli(), 10) + strconv.Itoa(ordinal)
}
