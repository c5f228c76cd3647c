package model

import (
	"path/filepath"
	"testing"

	"github.com/samcharles93/prattle/internal/checkpoint"
	"github.com/samcharles93/prattle/internal/hparams"
)

func fixtureParams() hparams.Params {
	return hparams.Params{ContextWindow: 4, VocabSize: 3, EmbedDim: 2}
}

func writeFixture(t *testing.T, p hparams.Params) string {
	t.Helper()
	wte := make([]float32, p.VocabSize*p.EmbedDim)
	for i := range wte {
		wte[i] = float32(i%5) - 2
	}
	wpe := make([]float32, p.ContextWindow*p.EmbedDim)
	for i := range wpe {
		wpe[i] = float32(i%3) * 0.5
	}
	path := filepath.Join(t.TempDir(), "model-1.safetensors")
	err := checkpoint.WriteF32(path, map[string]checkpoint.F32Tensor{
		TokenEmbedding:    {Shape: []int{p.VocabSize, p.EmbedDim}, Data: wte},
		PositionEmbedding: {Shape: []int{p.ContextWindow, p.EmbedDim}, Data: wpe},
	})
	if err != nil {
		t.Fatalf("write fixture checkpoint: %v", err)
	}
	return path
}

func TestRestoreAndForward(t *testing.T) {
	p := fixtureParams()
	m, err := Restore(writeFixture(t, p), p)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	logits, err := m.Forward(1)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if len(logits) != p.VocabSize {
		t.Fatalf("logits length: got %d want %d", len(logits), p.VocabSize)
	}
	if m.Pos() != 1 {
		t.Fatalf("Pos: got %d want 1", m.Pos())
	}
}

func TestForwardDeterministic(t *testing.T) {
	p := fixtureParams()
	path := writeFixture(t, p)
	m1, err := Restore(path, p)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	m2, err := Restore(path, p)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	for _, tok := range []int{0, 2, 1} {
		a, err := m1.Forward(tok)
		if err != nil {
			t.Fatalf("Forward: %v", err)
		}
		b, err := m2.Forward(tok)
		if err != nil {
			t.Fatalf("Forward: %v", err)
		}
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("logit mismatch at %d: %g vs %g", i, a[i], b[i])
			}
		}
	}
}

func TestForwardContextOverflow(t *testing.T) {
	p := fixtureParams()
	m, err := Restore(writeFixture(t, p), p)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	for i := 0; i < p.ContextWindow; i++ {
		if _, err := m.Forward(0); err != nil {
			t.Fatalf("Forward %d: %v", i, err)
		}
	}
	if _, err := m.Forward(0); err == nil {
		t.Fatal("expected context overflow error")
	}
	m.Reset()
	if _, err := m.Forward(0); err != nil {
		t.Fatalf("Forward after Reset: %v", err)
	}
}

func TestForwardTokenOutOfRange(t *testing.T) {
	p := fixtureParams()
	m, err := Restore(writeFixture(t, p), p)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if _, err := m.Forward(p.VocabSize); err == nil {
		t.Fatal("expected out-of-range token error")
	}
}

func TestRestoreShapeMismatch(t *testing.T) {
	p := fixtureParams()
	path := writeFixture(t, p)
	wrong := p
	wrong.EmbedDim = 3
	if _, err := Restore(path, wrong); err == nil {
		t.Fatal("expected shape mismatch error")
	}
}

func TestRestoreMissingCheckpoint(t *testing.T) {
	if _, err := Restore(filepath.Join(t.TempDir(), "nope.safetensors"), fixtureParams()); err == nil {
		t.Fatal("expected error for missing checkpoint")
	}
}
