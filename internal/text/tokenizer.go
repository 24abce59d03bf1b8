package text

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer converts text to int32 token ids and back.
type Tokenizer interface {
	// Encode converts text to token ids.
	Encode(text string) ([]int32, error)

	// Decode converts token ids back to text.
	Decode(ids []int32) (string, error)

	// VocabSize returns the total vocabulary size. Every id returned by
	// Encode is below it.
	VocabSize() int
}

const (
	// DefaultEncoding is the encoding used when no preference is given.
	DefaultEncoding = encodingCL100kBase

	encodingCL100kBase = "cl100k_base"
	encodingP50kBase   = "p50k_base"
	encodingR50kBase   = "r50k_base"
)

// TikToken wraps a pkoukk/tiktoken-go BPE encoding. Byte-level BPE has
// no unknown tokens, so Encode never loses input and Decode(Encode(s))
// returns s.
type TikToken struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewTikToken loads the named encoding. The BPE ranks are fetched on
// first use and cached, so this can fail without network access.
func NewTikToken(encodingName string) (*TikToken, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding %q: %w", encodingName, err)
	}
	return &TikToken{encoding: encoding, name: encodingName}, nil
}

// Encode converts text to token ids.
func (t *TikToken) Encode(text string) ([]int32, error) {
	tokens := t.encoding.Encode(text, nil, nil)
	ids := make([]int32, len(tokens))
	for i, tok := range tokens {
		ids[i] = int32(tok) //nolint:gosec // G115: token ids fit in int32, vocab size < 2^31.
	}
	return ids, nil
}

// Decode converts token ids back to text.
func (t *TikToken) Decode(ids []int32) (string, error) {
	tokens := make([]int, len(ids))
	for i, id := range ids {
		tokens[i] = int(id)
	}
	return t.encoding.Decode(tokens), nil
}

// VocabSize returns the vocabulary size of the loaded encoding.
// tiktoken-go does not expose it, so the known sizes are hardcoded.
func (t *TikToken) VocabSize() int {
	switch t.name {
	case encodingCL100kBase:
		return 100256
	case encodingP50kBase, encodingR50kBase:
		return 50257
	default:
		return 100256
	}
}

// Name returns the encoding name.
func (t *TikToken) Name() string {
	return t.name
}
