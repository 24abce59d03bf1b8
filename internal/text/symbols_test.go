package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolTableRoundTrip(t *testing.T) {
	table := NewPhonemeTable()

	tests := []struct {
		name string
		text string
	}{
		{name: "letters", text: "hello world"},
		{name: "punctuation", text: "wait... what?!"},
		{name: "ipa", text: "həˈloʊ"},
		{name: "empty", text: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := table.Encode(tt.text)
			require.NoError(t, err)

			back, err := table.Decode(ids)
			require.NoError(t, err)
			assert.Equal(t, tt.text, back)
		})
	}
}

func TestSymbolTableRejectsUnknownRune(t *testing.T) {
	table := NewPhonemeTable()

	_, err := table.Encode("hello 世界")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in the table")
}

func TestSymbolTableIds(t *testing.T) {
	table := NewPhonemeTable()

	assert.Equal(t, int32(0), table.PadID())
	assert.Greater(t, table.VocabSize(), 100)

	ids, err := table.Encode("_")
	require.NoError(t, err)
	assert.Equal(t, []int32{0}, ids)

	ids, err = table.Encode("abc")
	require.NoError(t, err)
	for _, id := range ids {
		assert.Less(t, int(id), table.VocabSize())
	}
}

func TestNewSymbolTableValidation(t *testing.T) {
	_, err := NewSymbolTable("")
	assert.Error(t, err)

	_, err = NewSymbolTable("aba")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")

	table, err := NewSymbolTable("_ab")
	require.NoError(t, err)
	assert.Equal(t, 3, table.VocabSize())
}

func TestIntersperse(t *testing.T) {
	got := Intersperse([]int32{4, 7, 9}, 0)
	assert.Equal(t, []int32{0, 4, 0, 7, 0, 9, 0}, got)

	assert.Equal(t, []int32{0}, Intersperse(nil, 0))
}