package text

import (
	"errors"
	"fmt"
	"math"

	"github.com/voxflow-ml/voxflow/internal/nn"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// TextEncoderConfig configures the text front end. Units defaults to 2
// and MaxLen to 1024 when zero.
type TextEncoderConfig struct {
	VocabSize   int // embedding rows, usually Tokenizer.VocabSize()
	Channels    int // embedding and hidden width
	OutChannels int // width of each prior statistic
	KernelSize  int // depth-separable conv kernel, odd
	Blocks      int // residual block count
	Units       int // conv units per residual block
	MaxLen      int // positional table length
}

// TextEncoder maps token ids [batch, time] to per-token prior statistics
// (m, logs), each [batch, outChannels, time], plus the hidden sequence
// [batch, channels, time] that conditions the coupling layers.
//
// The pipeline is embedding, scaling by sqrt(channels), sinusoidal
// position add, then residual depth-separable conv blocks and a linear
// head producing both statistics stacked on the channel axis.
type TextEncoder[B tensor.Backend] struct {
	cfg     TextEncoderConfig
	backend B
	tok     Tokenizer

	emb    *nn.Embedding[B]
	pos    *nn.PositionalEncoding[B]
	blocks []*nn.TextResidualBlock[B]
	proj   *nn.LinearNorm[B]
	scale  float32
}

// NewTextEncoder creates the encoder. tok may be nil when only Forward
// is used; EncodeStrings then fails.
func NewTextEncoder[B tensor.Backend](backend B, tok Tokenizer, cfg TextEncoderConfig) *TextEncoder[B] {
	if cfg.OutChannels <= 0 {
		panic(fmt.Sprintf("textencoder: outChannels must be positive, got %d", cfg.OutChannels))
	}
	if cfg.Blocks <= 0 {
		panic(fmt.Sprintf("textencoder: blocks must be positive, got %d", cfg.Blocks))
	}
	if cfg.Units == 0 {
		cfg.Units = 2
	}
	if cfg.MaxLen == 0 {
		cfg.MaxLen = 1024
	}

	e := &TextEncoder[B]{
		cfg:     cfg,
		backend: backend,
		tok:     tok,
		emb:     nn.NewEmbedding(backend, cfg.VocabSize, cfg.Channels),
		pos:     nn.NewPositionalEncoding(backend, cfg.Channels, cfg.MaxLen),
		proj: nn.NewLinearNorm(backend, nn.LinearNormConfig{
			InFeatures:  cfg.Channels,
			OutFeatures: 2 * cfg.OutChannels,
		}),
		scale: float32(math.Sqrt(float64(cfg.Channels))),
	}
	for i := 0; i < cfg.Blocks; i++ {
		e.blocks = append(e.blocks, nn.NewTextResidualBlock(backend, cfg.Channels, cfg.KernelSize, cfg.Units))
	}
	return e
}

// Forward encodes ids [batch, time] under an optional [batch, 1, time]
// mask. Padded positions come out zero in all three returns.
func (e *TextEncoder[B]) Forward(ids *tensor.Tensor[int32, B], mask *tensor.Tensor[float32, B]) (m, logs, hidden *tensor.Tensor[float32, B]) {
	seqLen := ids.Shape()[1]

	h := e.emb.Forward(ids).MulScalar(e.scale)
	h = h.Add(e.pos.Forward(seqLen))
	h = h.Transpose(1, 2)
	if mask != nil {
		h = h.Mul(mask)
	}
	for _, blk := range e.blocks {
		h = blk.Forward(h, mask)
	}

	stats := e.proj.Forward(h.Transpose(1, 2)).Transpose(1, 2)
	if mask != nil {
		stats = stats.Mul(mask)
	}
	parts := stats.Chunk(2, 1)
	return parts[0], parts[1], h
}

// EncodeStrings tokenizes a batch of texts, right-pads the id rows with
// zero to a common length and builds the matching [batch, 1, time]
// validity mask.
func (e *TextEncoder[B]) EncodeStrings(texts []string) (*tensor.Tensor[int32, B], *tensor.Tensor[float32, B], error) {
	if e.tok == nil {
		return nil, nil, errors.New("text: encoder has no tokenizer")
	}
	if len(texts) == 0 {
		return nil, nil, errors.New("text: empty batch")
	}

	seqs := make([][]int32, len(texts))
	maxLen := 0
	for i, s := range texts {
		ids, err := e.tok.Encode(s)
		if err != nil {
			return nil, nil, fmt.Errorf("text %d: %w", i, err)
		}
		for _, id := range ids {
			if int(id) >= e.cfg.VocabSize || id < 0 {
				return nil, nil, fmt.Errorf("text %d: token id %d outside vocabulary of %d", i, id, e.cfg.VocabSize)
			}
		}
		seqs[i] = ids
		if len(ids) > maxLen {
			maxLen = len(ids)
		}
	}
	if maxLen == 0 {
		return nil, nil, errors.New("text: batch has no tokens")
	}

	ids := tensor.Zeros[int32](e.backend, tensor.Shape{len(texts), maxLen})
	mask := tensor.Zeros[float32](e.backend, tensor.Shape{len(texts), 1, maxLen})
	idData, maskData := ids.Data(), mask.Data()
	for i, seq := range seqs {
		copy(idData[i*maxLen:], seq)
		for j := range seq {
			maskData[i*maxLen+j] = 1
		}
	}
	return ids, mask, nil
}

// Parameters returns all parameters of the encoder.
func (e *TextEncoder[B]) Parameters() []*nn.Parameter[B] {
	params := e.emb.Parameters()
	for _, blk := range e.blocks {
		params = append(params, blk.Parameters()...)
	}
	return append(params, e.proj.Parameters()...)
}

// StateDict returns the encoder's tensors under emb, blocks.N and proj
// prefixes. The positional table is derived, not stored.
func (e *TextEncoder[B]) StateDict() map[string]*tensor.Tensor[float32, B] {
	state := make(map[string]*tensor.Tensor[float32, B])
	nn.PrefixStateDict(state, "emb", e.emb.StateDict())
	for i, blk := range e.blocks {
		nn.PrefixStateDict(state, fmt.Sprintf("blocks.%d", i), blk.StateDict())
	}
	nn.PrefixStateDict(state, "proj", e.proj.StateDict())
	return state
}

// LoadStateDict restores the encoder's tensors.
func (e *TextEncoder[B]) LoadStateDict(state map[string]*tensor.Tensor[float32, B]) error {
	if err := e.emb.LoadStateDict(nn.SubStateDict(state, "emb")); err != nil {
		return fmt.Errorf("emb: %w", err)
	}
	for i, blk := range e.blocks {
		if err := blk.LoadStateDict(nn.SubStateDict(state, fmt.Sprintf("blocks.%d", i))); err != nil {
			return fmt.Errorf("blocks.%d: %w", i, err)
		}
	}
	if err := e.proj.LoadStateDict(nn.SubStateDict(state, "proj")); err != nil {
		return fmt.Errorf("proj: %w", err)
	}
	return nil
}
