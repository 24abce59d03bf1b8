package text

import (
	"fmt"
	"strings"
)

// Symbol inventory for phoneme input: pad first, then punctuation,
// Latin letters, and the IPA block.
const (
	padSymbol      = "_"
	punctuation    = `;:,.!?¡¿—…"«»“” `
	letters        = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	lettersIPA     = "ɑɐɒæɓʙβɔɕçɗɖðʤəɘɚɛɜɝɞɟʄɡɠɢʛɦɧħɥʜɨɪʝɭɬɫɮʟɱɯɰŋɳɲɴøɵɸθœɶʘɹɺɾɻʀʁɽʂʃʈʧʉʊʋⱱʌɣɤʍχʎʏʑʐʒʔʡʕʢǀǁǂǃˈˌːˑʼʴʰʱʲʷˠˤ˞↓↑→↗↘'̩ᵻ"
	defaultSymbols = padSymbol + punctuation + letters + lettersIPA
)

// SymbolTable is a fixed-inventory tokenizer: one id per symbol, no
// merges. It is the front end for phonemized or character-level input,
// where the vocabulary is a closed set known at model build time.
//
// Id 0 is always the pad symbol.
type SymbolTable struct {
	symbols []rune
	ids     map[rune]int32
}

// NewSymbolTable builds a table from the given inventory string, one
// symbol per rune in order. The first rune becomes the pad symbol.
// Duplicate runes are rejected.
func NewSymbolTable(inventory string) (*SymbolTable, error) {
	runes := []rune(inventory)
	if len(runes) == 0 {
		return nil, fmt.Errorf("symbol inventory is empty")
	}
	ids := make(map[rune]int32, len(runes))
	for i, r := range runes {
		if _, dup := ids[r]; dup {
			return nil, fmt.Errorf("duplicate symbol %q at position %d", r, i)
		}
		ids[r] = int32(i) //nolint:gosec // G115: inventory sizes are tiny.
	}
	return &SymbolTable{symbols: runes, ids: ids}, nil
}

// NewPhonemeTable builds the standard speech inventory: pad,
// punctuation, Latin letters, and IPA phonemes.
func NewPhonemeTable() *SymbolTable {
	table, err := NewSymbolTable(defaultSymbols)
	if err != nil {
		panic(fmt.Sprintf("symbols: default inventory invalid: %v", err))
	}
	return table
}

// Encode converts text to symbol ids. Every rune must be in the
// inventory; a closed vocabulary has no unknown-token fallback.
func (s *SymbolTable) Encode(text string) ([]int32, error) {
	ids := make([]int32, 0, len(text))
	for _, r := range text {
		id, ok := s.ids[r]
		if !ok {
			return nil, fmt.Errorf("symbol %q is not in the table", r)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Decode converts symbol ids back to text.
func (s *SymbolTable) Decode(ids []int32) (string, error) {
	var sb strings.Builder
	for _, id := range ids {
		if id < 0 || int(id) >= len(s.symbols) {
			return "", fmt.Errorf("id %d is outside the table of %d symbols", id, len(s.symbols))
		}
		sb.WriteRune(s.symbols[id])
	}
	return sb.String(), nil
}

// VocabSize returns the number of symbols in the table.
func (s *SymbolTable) VocabSize() int {
	return len(s.symbols)
}

// PadID returns the id of the pad symbol.
func (s *SymbolTable) PadID() int32 {
	return 0
}

// Intersperse returns ids with sep inserted between and around every
// token, doubling the sequence length plus one. Flow front ends use
// this with the pad id so each real symbol gets a resting frame on
// either side.
func Intersperse(ids []int32, sep int32) []int32 {
	out := make([]int32, 2*len(ids)+1)
	for i := range out {
		out[i] = sep
	}
	for i, id := range ids {
		out[2*i+1] = id
	}
	return out
}
