package fs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/YaroslavMizgirev/shelf/pkg/core"
	"github.com/YaroslavMizgirev/shelf/pkg/dialect"
)

// DefaultSerializers returns the standard set of collection codecs.
func DefaultSerializers(strict bool) map[core.Format]core.Codec {
	mode := dialect.Permissive
	if strict {
		mode = dialect.Strict
	}
	return map[core.Format]core.Codec{
		core.FormatDialect: NewDialectSerializer(mode),
		core.FormatJSON:    NewJSONSerializer(strict),
		core.FormatYAML:    NewYAMLSerializer(strict),
	}
}

// FormatFromFilename picks a format from the file extension.
func FormatFromFilename(name string) (core.Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return core.FormatDialect, nil
	case ".json":
		return core.FormatJSON, nil
	case ".yaml", ".yml":
		return core.FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, filepath.Base(name))
	}
}

// --- Dialect Serializer ---

// DialectSerializer reads and writes the delimited catalog dialect.
type DialectSerializer struct {
	Codec *dialect.Codec
}

// NewDialectSerializer creates a dialect serializer in the given mode.
func NewDialectSerializer(mode dialect.Mode) *DialectSerializer {
	return &DialectSerializer{Codec: dialect.New(mode)}
}

func (s *DialectSerializer) Decode(data []byte) ([]core.Book, error) {
	return s.Codec.Parse(string(data))
}

func (s *DialectSerializer) Encode(books []core.Book) ([]byte, error) {
	return []byte(dialect.Encode(books)), nil
}

// --- JSON Serializer ---

// JSONSerializer handles JSON backups: a top-level array of book objects.
type JSONSerializer struct {
	// Strict rejects array elements that are not objects instead of skipping them.
	Strict bool
	Now    func() time.Time
}

// NewJSONSerializer creates a new JSON serializer.
func NewJSONSerializer(strict bool) *JSONSerializer {
	return &JSONSerializer{Strict: strict, Now: time.Now}
}

func (s *JSONSerializer) Decode(data []byte) ([]core.Book, error) {
	var payload any
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: invalid json: %v", core.ErrUnsupportedFormat, err)
	}
	return fromSequence(payload, s.Strict, nowFunc(s.Now))
}

func (s *JSONSerializer) Encode(books []core.Book) ([]byte, error) {
	if books == nil {
		books = []core.Book{}
	}
	return json.MarshalIndent(books, "", "  ")
}

// --- YAML Serializer ---

// YAMLSerializer handles YAML backups: a top-level sequence of book mappings.
type YAMLSerializer struct {
	// Strict rejects sequence elements that are not mappings instead of skipping them.
	Strict bool
	Now    func() time.Time
}

// NewYAMLSerializer creates a new YAML serializer.
func NewYAMLSerializer(strict bool) *YAMLSerializer {
	return &YAMLSerializer{Strict: strict, Now: time.Now}
}

func (s *YAMLSerializer) Decode(data []byte) ([]core.Book, error) {
	var payload any
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: invalid yaml: %v", core.ErrUnsupportedFormat, err)
	}
	return fromSequence(payload, s.Strict, nowFunc(s.Now))
}

func (s *YAMLSerializer) Encode(books []core.Book) ([]byte, error) {
	if books == nil {
		books = []core.Book{}
	}
	return yaml.Marshal(books)
}

// --- Helpers ---

func nowFunc(f func() time.Time) time.Time {
	if f == nil {
		return time.Now()
	}
	return f()
}

// fromSequence accepts only a top-level sequence. Elements are coerced into
// canonical shape; elements that are not objects are reported as rejected rows.
func fromSequence(payload any, strict bool, now time.Time) ([]core.Book, error) {
	items, ok := payload.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: top-level value is %s, want a sequence", core.ErrUnsupportedFormat, kindOf(payload))
	}

	books := make([]core.Book, 0, len(items))
	var errs []error
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			err := &dialect.RowError{Line: i + 1, Err: fmt.Errorf("%w: element is %s, want an object", core.ErrMalformedRow, kindOf(item))}
			if strict {
				return nil, fmt.Errorf("%w: %v", core.ErrUnsupportedFormat, err)
			}
			errs = append(errs, err)
			continue
		}
		books = append(books, dialect.FromMap(m, i, now))
	}
	return books, errors.Join(errs...)
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "an object"
	case []any:
		return "a sequence"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	default:
		return "a number"
	}
}
