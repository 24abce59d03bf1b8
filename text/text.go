// Copyright 2025 The Voxflow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package text

import (
	"github.com/voxflow-ml/voxflow/internal/tensor"
	"github.com/voxflow-ml/voxflow/internal/text"
)

// Tokenizer converts text to int32 token ids and back.
type Tokenizer = text.Tokenizer

// DefaultEncoding is the BPE encoding used when no preference is given.
const DefaultEncoding = text.DefaultEncoding

// TikToken is a byte-level BPE tokenizer backed by pkoukk/tiktoken-go.
type TikToken = text.TikToken

// NewTikToken loads the named encoding, fetching and caching the BPE
// ranks on first use.
func NewTikToken(encodingName string) (*TikToken, error) {
	return text.NewTikToken(encodingName)
}

// SymbolTable is a fixed-inventory tokenizer for phonemized or
// character-level input. Id 0 is the pad symbol.
type SymbolTable = text.SymbolTable

// NewSymbolTable builds a table from an inventory string, one symbol
// per rune in order. The first rune becomes the pad symbol.
func NewSymbolTable(inventory string) (*SymbolTable, error) {
	return text.NewSymbolTable(inventory)
}

// NewPhonemeTable builds the standard speech inventory: pad,
// punctuation, Latin letters, and IPA phonemes.
func NewPhonemeTable() *SymbolTable {
	return text.NewPhonemeTable()
}

// Intersperse returns ids with sep inserted between and around every
// token. Use the pad id as sep to give each symbol a resting frame.
func Intersperse(ids []int32, sep int32) []int32 {
	return text.Intersperse(ids, sep)
}

// TextEncoderConfig configures a TextEncoder.
type TextEncoderConfig = text.TextEncoderConfig

// TextEncoder maps token ids [batch, time] to the prior statistics
// (m, logs) and the hidden sequence that conditions the flow.
type TextEncoder[B tensor.Backend] = text.TextEncoder[B]

// NewTextEncoder creates the encoder. tok may be nil when only Forward
// is used; EncodeStrings then fails.
func NewTextEncoder[B tensor.Backend](backend B, tok Tokenizer, cfg TextEncoderConfig) *TextEncoder[B] {
	return text.NewTextEncoder(backend, tok, cfg)
}
