// Package tokenizer implements the byte-level BPE codec used by the GPT-2
// model family. A model directory carries its vocabulary in encoder.json and
// its merge ranks in vocab.bpe.
package tokenizer

// Codec converts between text and token ids.
type Codec interface {
	Encode(text string) ([]int, error)
	Decode(ids []int) (string, error)
}
