package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestTikToken loads the default encoding, skipping the test when the
// BPE ranks are not cached and cannot be fetched.
func newTestTikToken(t *testing.T) *TikToken {
	t.Helper()
	tok, err := NewTikToken(DefaultEncoding)
	if err != nil {
		t.Skipf("tiktoken encoding unavailable: %v", err)
	}
	return tok
}

func TestTikTokenRoundTrip(t *testing.T) {
	tok := newTestTikToken(t)

	tests := []struct {
		name string
		text string
	}{
		{name: "simple", text: "Hello, world!"},
		{name: "newlines", text: "first line\nsecond line\n"},
		{name: "unicode", text: "Grüße, 世界! 🌍"},
		{name: "empty", text: ""},
		{name: "long", text: "The quick brown fox jumps over the lazy dog. " +
			"Pack my box with five dozen liquor jugs."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := tok.Encode(tt.text)
			require.NoError(t, err)

			back, err := tok.Decode(ids)
			require.NoError(t, err)
			assert.Equal(t, tt.text, back)
		})
	}
}

func TestTikTokenIdsWithinVocab(t *testing.T) {
	tok := newTestTikToken(t)

	ids, err := tok.Encode("A reasonably ordinary sentence with numbers 123 and punctuation.")
	require.NoError(t, err)
	require.NotEmpty(t, ids)
	for _, id := range ids {
		assert.GreaterOrEqual(t, id, int32(0))
		assert.Less(t, int(id), tok.VocabSize())
	}
}

func TestTikTokenMetadata(t *testing.T) {
	tok := newTestTikToken(t)
	assert.Equal(t, "cl100k_base", tok.Name())
	assert.Equal(t, 100256, tok.VocabSize())
}

func TestTikTokenUnknownEncoding(t *testing.T) {
	tok, err := NewTikToken("no_such_encoding")
	assert.Error(t, err)
	assert.Nil(t, tok)
}
