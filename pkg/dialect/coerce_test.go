package dialect

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/YaroslavMizgirev/shelf/pkg/core"
)

func TestCoerceAuthors(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{"Nil", nil, []string{core.DefaultAuthor}},
		{"Piped String", "Alice | Bob", []string{"Alice", "Bob"}},
		{"Blank String", "  ", []string{core.DefaultAuthor}},
		{"Sequence", []any{"Alice", " Bob ", nil}, []string{"Alice", "Bob"}},
		{"Sequence With Piped Element", []any{"Alice|Bob"}, []string{"Alice", "Bob"}},
		{"Empty Sequence", []any{}, []string{core.DefaultAuthor}},
		{"Number", 42, []string{"42"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoerceAuthors(tt.in))
		})
	}
}

func TestCoerceYear(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{1965, 1965},
		{int64(1815), 1815},
		{float64(2001), 2001},
		{json.Number("1999"), 1999},
		{"1984", 1984},
		{"circa 1900", fixedNow.Year()},
		{nil, fixedNow.Year()},
		{true, fixedNow.Year()},
		{0, fixedNow.Year()},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CoerceYear(tt.in, fixedNow), "CoerceYear(%#v)", tt.in)
	}
}

func TestCoerceRead(t *testing.T) {
	assert.True(t, CoerceRead(true))
	assert.True(t, CoerceRead("true"))
	assert.True(t, CoerceRead(" TRUE "))
	assert.False(t, CoerceRead("yes"))
	assert.False(t, CoerceRead(1))
	assert.False(t, CoerceRead(nil))
}

func TestFromMap(t *testing.T) {
	t.Run("Nested Storage", func(t *testing.T) {
		b := FromMap(map[string]any{
			"id":      "9",
			"title":   "Dune",
			"authors": "Frank Herbert",
			"year":    "1965",
			"storage": map[string]any{"name": "Shelf", "path": "top"},
			"isRead":  "true",
			"type":    "Novel",
		}, 0, fixedNow)

		assert.Equal(t, core.Book{
			ID:      "9",
			Title:   "Dune",
			Authors: []string{"Frank Herbert"},
			Year:    1965,
			Storage: core.Storage{Name: "Shelf", Path: "top"},
			IsRead:  true,
			Type:    "Novel",
		}, b)
	})

	t.Run("Flat Storage And Defaults", func(t *testing.T) {
		b := FromMap(map[string]any{
			"storage_name": "Box",
			"storage_path": "3",
		}, 4, fixedNow)

		assert.Equal(t, SyntheticID(fixedNow, 4), b.ID)
		assert.Equal(t, core.DefaultTitle, b.Title)
		assert.Equal(t, []string{core.DefaultAuthor}, b.Authors)
		assert.Equal(t, fixedNow.Year(), b.Year)
		assert.Equal(t, core.Storage{Name: "Box", Path: "3"}, b.Storage)
		assert.Equal(t, core.DefaultType, b.Type)
	})

	t.Run("Numeric Id", func(t *testing.T) {
		b := FromMap(map[string]any{"id": float64(1700000000000)}, 0, fixedNow)
		assert.Equal(t, "1700000000000", b.ID)
	})
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "permissive", Permissive.String())
	assert.Equal(t, "strict", Strict.String())
}
