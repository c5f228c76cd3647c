package hparams

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
)

// FileName is the metadata file expected inside every model directory.
const FileName = "hparams.json"

// Params holds the model hyperparameters read from hparams.json. Fields
// default to the 124M reference configuration; keys present in the file
// override them and unknown keys are ignored.
type Params struct {
	ContextWindow int `json:"n_ctx"`
	VocabSize     int `json:"n_vocab"`
	EmbedDim      int `json:"n_embd"`
	HeadCount     int `json:"n_head"`
	LayerCount    int `json:"n_layer"`
}

// Default returns the 124M reference hyperparameters.
func Default() Params {
	return Params{
		ContextWindow: 1024,
		VocabSize:     50257,
		EmbedDim:      768,
		HeadCount:     12,
		LayerCount:    12,
	}
}

// Load reads hparams.json from a model directory and overlays it on the
// defaults. A missing or unparseable file is an error; the session cannot
// size its context window without it.
func Load(dir string) (Params, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("load hyperparameters: %w", err)
	}
	p := Default()
	if err := json.Unmarshal(data, &p); err != nil {
		return Params{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if p.ContextWindow <= 0 {
		p.ContextWindow = Default().ContextWindow
	}
	return p, nil
}
