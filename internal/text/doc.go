// Package text is the front end that turns raw strings into the inputs
// the flow stack consumes.
//
// A Tokenizer maps text to int32 token ids; TikToken wraps the tiktoken
// BPE encodings (cl100k_base, p50k_base). TextEncoder embeds the ids,
// adds sinusoidal positions, refines the sequence with depth-separable
// residual blocks and projects it to the per-token prior statistics
// (m, logs), alongside the hidden sequence used to condition couplings.
//
// Example usage:
//
//	tok, err := text.NewTikToken(text.DefaultEncoding)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	enc := text.NewTextEncoder(backend, tok, text.TextEncoderConfig{
//	    VocabSize:   tok.VocabSize(),
//	    Channels:    192,
//	    OutChannels: 96,
//	    KernelSize:  5,
//	    Blocks:      3,
//	})
//	ids, mask, err := enc.EncodeStrings([]string{"hello world"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m, logs, hidden := enc.Forward(ids, mask)
package text
