// Package model restores a language model from a checkpoint and exposes a
// per-token forward pass. The model is a tied-embedding LM: token and
// position embeddings are summed and projected back onto the vocabulary
// through the transposed token embedding. The transformer block stack is the
// generation engine's concern, not this driver's.
package model

import (
	"fmt"

	"github.com/samcharles93/prattle/internal/checkpoint"
	"github.com/samcharles93/prattle/internal/hparams"
)

// Tensor names expected in a checkpoint.
const (
	TokenEmbedding    = "wte"
	PositionEmbedding = "wpe"
)

// LM is a restored model instance. It is stateful: each Forward call consumes
// one position of the context window. Not safe for concurrent use.
type LM struct {
	vocab int
	ctx   int
	embd  int
	wte   []float32 // [vocab * embd]
	wpe   []float32 // [ctx * embd]
	pos   int
	h     []float32 // scratch [embd]
}

// Restore loads model weights from a checkpoint file and validates their
// shapes against the hyperparameters.
func Restore(path string, p hparams.Params) (*LM, error) {
	f, err := checkpoint.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint: %w", err)
	}

	wte, wteInfo, err := f.ReadTensorF32(TokenEmbedding)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", TokenEmbedding, err)
	}
	if len(wteInfo.Shape) != 2 || wteInfo.Shape[0] != p.VocabSize || wteInfo.Shape[1] != p.EmbedDim {
		return nil, fmt.Errorf("%s shape %v does not match hyperparameters [%d %d]",
			TokenEmbedding, wteInfo.Shape, p.VocabSize, p.EmbedDim)
	}

	wpe, wpeInfo, err := f.ReadTensorF32(PositionEmbedding)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", PositionEmbedding, err)
	}
	if len(wpeInfo.Shape) != 2 || wpeInfo.Shape[0] != p.ContextWindow || wpeInfo.Shape[1] != p.EmbedDim {
		return nil, fmt.Errorf("%s shape %v does not match hyperparameters [%d %d]",
			PositionEmbedding, wpeInfo.Shape, p.ContextWindow, p.EmbedDim)
	}

	return &LM{
		vocab: p.VocabSize,
		ctx:   p.ContextWindow,
		embd:  p.EmbedDim,
		wte:   wte,
		wpe:   wpe,
		h:     make([]float32, p.EmbedDim),
	}, nil
}

// Forward consumes one token at the current position and returns logits over
// the vocabulary for the next token.
func (m *LM) Forward(tok int) ([]float32, error) {
	if tok < 0 || tok >= m.vocab {
		return nil, fmt.Errorf("token id %d out of vocabulary range %d", tok, m.vocab)
	}
	if m.pos >= m.ctx {
		return nil, fmt.Errorf("context window of %d tokens exceeded", m.ctx)
	}

	emb := m.wte[tok*m.embd : (tok+1)*m.embd]
	posEmb := m.wpe[m.pos*m.embd : (m.pos+1)*m.embd]
	for i := range m.h {
		m.h[i] = emb[i] + posEmb[i]
	}
	m.pos++

	logits := make([]float32, m.vocab)
	for v := 0; v < m.vocab; v++ {
		row := m.wte[v*m.embd : (v+1)*m.embd]
		var sum float32
		for i, x := range m.h {
			sum += x * row[i]
		}
		logits[v] = sum
	}
	return logits, nil
}

// Reset rewinds the model to the start of the context window.
func (m *LM) Reset() { m.pos = 0 }

// Pos reports how many positions of the context window are consumed.
func (m *LM) Pos() int { return m.pos }

// ContextWindow reports the maximum number of positions.
func (m *LM) ContextWindow() int { return m.ctx }
