package tokenizer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
)

const (
	// VocabFile maps token strings to ids.
	VocabFile = "encoder.json"
	// MergesFile lists BPE merges in rank order, one pair per line.
	MergesFile = "vocab.bpe"
)

// Load reads the codec files from a model directory.
func Load(dir string) (*BPE, error) {
	vocabRaw, err := os.ReadFile(filepath.Join(dir, VocabFile))
	if err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}
	var vocab map[string]int
	if err := json.Unmarshal(vocabRaw, &vocab); err != nil {
		return nil, fmt.Errorf("parse %s: %w", VocabFile, err)
	}

	mergesRaw, err := os.ReadFile(filepath.Join(dir, MergesFile))
	if err != nil {
		return nil, fmt.Errorf("load merges: %w", err)
	}
	merges := strings.Split(string(mergesRaw), "\n")

	codec, err := New(vocab, merges)
	if err != nil {
		return nil, fmt.Errorf("build codec: %w", err)
	}
	return codec, nil
}
