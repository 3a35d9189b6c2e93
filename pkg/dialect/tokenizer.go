package dialect

import (
	"strings"
	"unicode/utf8"
)

const (
	// Delimiter separates fields on a line.
	Delimiter = ','
	// Quote wraps a field so delimiters inside it are content.
	Quote = '"'
	// Escape makes the next character literal.
	Escape = '\\'
)

// rawField is one field as scanned, before cleaning. quoted records
// whether any quote was consumed while scanning it.
type rawField struct {
	text   string
	quoted bool
}

// scan splits one physical line into raw fields.
//
// State is an accumulator, an in-quotes flag and an escape-next flag.
// A quote toggles the in-quotes flag and is dropped; inside quotes a doubled
// quote is one literal quote. A backslash is dropped and the character after
// it is kept verbatim. A delimiter outside quotes ends the field. The last
// field is flushed at end of line even when empty, and a quote left open is
// not an error: the rest of the line is quoted content.
func scan(line string) []rawField {
	var (
		fields   []rawField
		buf      strings.Builder
		inQuotes bool
		escaped  bool
		quoted   bool
	)

	flush := func() {
		fields = append(fields, rawField{text: buf.String(), quoted: quoted})
		buf.Reset()
		quoted = false
	}

	for i := 0; i < len(line); {
		r, size := utf8.DecodeRuneInString(line[i:])
		i += size

		switch {
		case escaped:
			buf.WriteRune(r)
			escaped = false
		case r == Escape:
			escaped = true
		case r == Quote:
			if inQuotes && i < len(line) && line[i] == Quote {
				buf.WriteByte(Quote)
				i++
				continue
			}
			quoted = true
			inQuotes = !inQuotes
		case r == Delimiter && !inQuotes:
			flush()
		default:
			buf.WriteRune(r)
		}
	}
	flush()

	return fields
}

// Tokenize splits one line into raw fields. Raw fields are not cleaned:
// whitespace around them is kept.
func Tokenize(line string) []string {
	raw := scan(line)
	out := make([]string, len(raw))
	for i, f := range raw {
		out[i] = f.text
	}
	return out
}

// Fields tokenizes line and cleans every field.
func Fields(line string) []string {
	raw := scan(line)
	out := make([]string, len(raw))
	for i, f := range raw {
		out[i] = f.clean()
	}
	return out
}

// Clean applies the field post-processing to a raw field: surrounding
// whitespace is trimmed, and a value that starts and ends with a quote loses
// one quote on each side and has every doubled quote collapsed.
func Clean(field string) string {
	return unwrap(strings.TrimSpace(field))
}

func (f rawField) clean() string {
	s := strings.TrimSpace(f.text)
	if f.quoted {
		// Quotes that survived a quoted scan are literal content.
		return s
	}
	return unwrap(s)
}

func unwrap(s string) string {
	if len(s) >= 2 && s[0] == Quote && s[len(s)-1] == Quote {
		return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	}
	return s
}
