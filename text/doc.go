// Copyright 2025 The Voxflow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

/*
Package text provides the text front end: a BPE tokenizer and the
encoder that turns token ids into per-token prior statistics for the
flow stack.

# Tokenization

TikToken wraps a byte-level BPE encoding. Byte-level BPE has no unknown
tokens, so every string round-trips exactly:

	tok, err := text.NewTikToken(text.DefaultEncoding)
	if err != nil {
		log.Fatal(err)
	}
	ids, _ := tok.Encode("hello world")
	s, _ := tok.Decode(ids)  // "hello world"

Any type implementing the Tokenizer interface can stand in for
TikToken, for example a phoneme table in a speech pipeline.

# Encoding

TextEncoder embeds token ids, runs them through residual
depth-separable conv blocks, and projects to the (m, logs) statistics
that parameterize the prior, plus the hidden sequence that conditions
the coupling layers:

	enc := text.NewTextEncoder(backend, tok, text.TextEncoderConfig{
		VocabSize:   tok.VocabSize(),
		Channels:    192,
		OutChannels: 96,
		KernelSize:  5,
		Blocks:      3,
	})
	ids, mask, err := enc.EncodeStrings([]string{"hello", "hi"})
	if err != nil {
		log.Fatal(err)
	}
	m, logs, hidden := enc.Forward(ids, mask)

EncodeStrings right-pads each batch row with zero ids and returns the
matching [batch, 1, time] validity mask; Forward zeroes padded
positions in all three outputs.
*/
package text
