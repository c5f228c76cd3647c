package tokenizer

import (
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
)

func byteVocab() map[string]int { return ByteVocab() }

func TestEncodeDecodeRoundTrip(t *testing.T) {
	codec, err := New(byteVocab(), nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	inputs := []string{
		"Hello, world!",
		"  leading and trailing  ",
		"numbers 123 and symbols #$%",
		"unicode: héllo ☃",
	}
	for _, in := range inputs {
		ids, err := codec.Encode(in)
		if err != nil {
			t.Fatalf("Encode(%q): %v", in, err)
		}
		out, err := codec.Decode(ids)
		if err != nil {
			t.Fatalf("Decode(%q): %v", in, err)
		}
		if out != in {
			t.Fatalf("round trip mismatch: got %q want %q", out, in)
		}
	}
}

func TestMergesApplied(t *testing.T) {
	vocab := byteVocab()
	vocab["He"] = len(vocab)
	codec, err := New(vocab, []string{"#version: 0.2", "H e"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ids, err := codec.Encode("He")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(ids) != 1 || ids[0] != vocab["He"] {
		t.Fatalf("expected single merged token %d, got %v", vocab["He"], ids)
	}
	out, err := codec.Decode(ids)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out != "He" {
		t.Fatalf("decode: got %q want %q", out, "He")
	}
}

func TestSpecialTokenPassThrough(t *testing.T) {
	vocab := byteVocab()
	vocab["<|endoftext|>"] = len(vocab)
	codec, err := New(vocab, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ids, err := codec.Encode("<|endoftext|>")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(ids) != 1 || ids[0] != vocab["<|endoftext|>"] {
		t.Fatalf("expected special token id %d, got %v", vocab["<|endoftext|>"], ids)
	}
}

func TestDecodeOutOfRange(t *testing.T) {
	codec, err := New(byteVocab(), nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := codec.Decode([]int{codec.VocabSize()}); err == nil {
		t.Fatal("expected out-of-range error")
	}
}

func TestLoadFromModelDir(t *testing.T) {
	dir := t.TempDir()
	raw, err := json.Marshal(byteVocab())
	if err != nil {
		t.Fatalf("marshal vocab: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, VocabFile), raw, 0o644); err != nil {
		t.Fatalf("write vocab: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, MergesFile), []byte("#version: 0.2\n"), 0o644); err != nil {
		t.Fatalf("write merges: %v", err)
	}

	codec, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	ids, err := codec.Encode("abc")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := codec.Decode(ids)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out != "abc" {
		t.Fatalf("round trip via Load: got %q", out)
	}
}

func TestLoadMissingFiles(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("expected error for empty model dir")
	}
}
