package generate

import (
	"fmt"

	"github.com/samcharles93/prattle/internal/checkpoint"
	"github.com/samcharles93/prattle/internal/hparams"
	"github.com/samcharles93/prattle/internal/model"
	"github.com/samcharles93/prattle/internal/sampler"
	"github.com/samcharles93/prattle/internal/tokenizer"
)

// Session binds a restored model, its codec, and an immutable sampling
// configuration. Exactly one session serves a process; it lives until
// shutdown and is never rebuilt per prompt. Not safe for concurrent use.
type Session struct {
	opts    Options
	params  hparams.Params
	codec   tokenizer.Codec
	lm      *model.LM
	sampler *sampler.Sampler
	length  int
	ckpt    string
}

// Open validates the options and constructs the session: hyperparameters,
// resolved target length, seeded sampler, codec, and restored checkpoint.
// Any failure aborts construction entirely; there is no partial session.
func Open(opts Options) (*Session, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	dir := opts.ModelDir()

	params, err := hparams.Load(dir)
	if err != nil {
		return nil, err
	}

	length := opts.Length
	if length == 0 {
		length = params.ContextWindow / 2
	} else if length > params.ContextWindow {
		return nil, fmt.Errorf("cannot sample more tokens than the context window of %d", params.ContextWindow)
	}

	// The sampler owns the only random source in the session. Building it
	// first means nothing can consume randomness before the seed applies.
	smp := sampler.New(sampler.Config{
		Seed:        opts.Seed,
		Temperature: float32(opts.Temperature),
		TopK:        opts.TopK,
		TopP:        float32(opts.TopP),
	})

	codec, err := tokenizer.Load(dir)
	if err != nil {
		return nil, err
	}

	ckpt, err := checkpoint.Latest(dir)
	if err != nil {
		return nil, err
	}
	lm, err := model.Restore(ckpt, params)
	if err != nil {
		return nil, err
	}

	return &Session{
		opts:    opts,
		params:  params,
		codec:   codec,
		lm:      lm,
		sampler: smp,
		length:  length,
		ckpt:    ckpt,
	}, nil
}

// Generate runs one sampling round: the prompt prefix is replicated across
// every batch slot and each slot produces exactly Length() continuation
// tokens. The prompt tokens are not part of the returned sequences. Slots run
// sequentially against the shared sampler, so output order is deterministic
// for a fixed seed.
func (s *Session) Generate(prompt []int) ([][]int, error) {
	if len(prompt) == 0 {
		return nil, fmt.Errorf("empty prompt")
	}
	if len(prompt)+s.length > s.params.ContextWindow {
		return nil, fmt.Errorf("prompt of %d tokens plus %d generated tokens exceeds the context window of %d",
			len(prompt), s.length, s.params.ContextWindow)
	}

	out := make([][]int, s.opts.BatchSize)
	for slot := range out {
		s.lm.Reset()
		var logits []float32
		var err error
		for _, id := range prompt {
			if logits, err = s.lm.Forward(id); err != nil {
				return nil, fmt.Errorf("prefill: %w", err)
			}
		}
		cont := make([]int, 0, s.length)
		for j := 0; j < s.length; j++ {
			next := s.sampler.Sample(logits)
			cont = append(cont, next)
			if j < s.length-1 {
				if logits, err = s.lm.Forward(next); err != nil {
					return nil, fmt.Errorf("generation step %d: %w", j, err)
				}
			}
		}
		out[slot] = cont
	}
	return out, nil
}

// Codec returns the codec loaded from the model directory.
func (s *Session) Codec() tokenizer.Codec { return s.codec }

// Length is the resolved number of tokens generated per completion.
func (s *Session) Length() int { return s.length }

// BatchSize is the fixed batch dimension of every round.
func (s *Session) BatchSize() int { return s.opts.BatchSize }

// Rounds is the number of rounds needed to produce Options.Samples.
func (s *Session) Rounds() int { return s.opts.Rounds() }

// Params exposes the loaded hyperparameters.
func (s *Session) Params() hparams.Params { return s.params }

// Checkpoint reports the restored checkpoint path.
func (s *Session) Checkpoint() string { return s.ckpt }

// Model reports the model identifier the session was opened with.
func (s *Session) Model() string { return s.opts.Model }
