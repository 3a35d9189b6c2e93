package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"Plain", "a,b,c", []string{"a", "b", "c"}},
		{"Only Delimiters", ",,,", []string{"", "", "", ""}},
		{"Empty Line", "", []string{""}},
		{"Quoted Delimiter", `"a,b",c`, []string{"a,b", "c"}},
		{"Escaped Delimiter", `a\,b,c`, []string{"a,b", "c"}},
		{"Escaped Quote Keeps Quote State", `a\"b,c`, []string{`a"b`, "c"}},
		{"Escaped Backslash", `a\\,b`, []string{`a\`, "b"}},
		{"Doubled Quote Inside Quotes", `"say ""hi""",x`, []string{`say "hi"`, "x"}},
		{"Surrounding Whitespace Kept", `  a , b `, []string{"  a ", " b "}},
		{"Unterminated Quote", `a,"b,c,d`, []string{"a", "b,c,d"}},
		{"Trailing Escape Dropped", `a,b\`, []string{"a", "b"}},
		{"Unicode", `"Löwe, der",Ω`, []string{"Löwe, der", "Ω"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.line))
		})
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  plain  ", "plain"},
		{`"wrapped"`, "wrapped"},
		{` "wrapped" `, "wrapped"},
		{`"a ""b"" c"`, `a "b" c`},
		{`"`, `"`},
		{`""`, ""},
		{`"half`, `"half`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Clean(tt.in), "Clean(%q)", tt.in)
	}
}

func TestFields(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"Trims Bare Whitespace", ` 1 , title ,x`, []string{"1", "title", "x"}},
		{"Quoted Whitespace Trimmed", `"  padded  ",x`, []string{"padded", "x"}},
		{"Whitespace Around Quotes Trimmed", `  " padded "  ,x`, []string{"padded", "x"}},
		{"Escaped Space Trimmed", `\ a,x`, []string{"a", "x"}},
		{"Inner Whitespace Kept", `" a  b ",x`, []string{"a  b", "x"}},
		{"Quotes Of Quoted Field Are Literal", `"""quoted""",x`, []string{`"quoted"`, "x"}},
		{"Bare Wrapped Value Unwrapped", `a,b`, []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fields(tt.line))
		})
	}
}

func TestTokenize_EscapeNeutralization(t *testing.T) {
	line := `1,Title\, with comma,Author,2001,,Shelf,,true,Novel`
	fields := Fields(line)
	assert.Len(t, fields, Columns)
	assert.Equal(t, "Title, with comma", fields[1])
}
