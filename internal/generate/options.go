// Package generate is the session driver: it validates generation options,
// binds one long-lived session to a restored checkpoint, and runs the
// interactive prompt/sample/report loop over it.
package generate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Options carries the generation configuration for one session. Construct it
// once, validate it, and treat it as immutable afterwards; changing sampling
// parameters means opening a new session.
type Options struct {
	Model       string  // model identifier under ModelsDir
	Seed        int64   // -1 = non-deterministic
	Samples     int     // total completions per prompt
	BatchSize   int     // completions per round; must divide Samples
	Length      int     // tokens to generate; 0 = half the context window
	Temperature float64 // sampling temperature
	TopK        int     // 0 = unrestricted
	TopP        float64 // 1 = unrestricted
	ModelsDir   string  // parent directory of per-model subdirectories
}

// DefaultOptions mirrors the CLI defaults.
func DefaultOptions() Options {
	return Options{
		Model:       "124M",
		Seed:        -1,
		Samples:     1,
		BatchSize:   1,
		Temperature: 1,
		TopK:        0,
		TopP:        1,
		ModelsDir:   "models",
	}
}

// Validate normalizes the options and rejects anything that would make the
// session unserviceable. Length is only bounds-checked here; its resolution
// against the context window happens at session open, once the
// hyperparameters are known.
func (o *Options) Validate() error {
	if strings.TrimSpace(o.Model) == "" {
		return fmt.Errorf("model identifier is required")
	}
	if o.BatchSize == 0 {
		o.BatchSize = 1
	}
	if o.BatchSize < 0 {
		return fmt.Errorf("batch size must be positive, got %d", o.BatchSize)
	}
	if o.Samples <= 0 {
		return fmt.Errorf("samples must be positive, got %d", o.Samples)
	}
	if o.Samples%o.BatchSize != 0 {
		return fmt.Errorf("samples (%d) must be a multiple of batch size (%d)", o.Samples, o.BatchSize)
	}
	if o.Length < 0 {
		return fmt.Errorf("length must not be negative, got %d", o.Length)
	}
	if o.Temperature <= 0 {
		return fmt.Errorf("temperature must be positive, got %g", o.Temperature)
	}
	if o.TopK < 0 {
		return fmt.Errorf("top-k must not be negative, got %d", o.TopK)
	}
	if o.TopP <= 0 || o.TopP > 1 {
		return fmt.Errorf("top-p must be in (0,1], got %g", o.TopP)
	}
	if strings.TrimSpace(o.ModelsDir) == "" {
		o.ModelsDir = DefaultOptions().ModelsDir
	}
	o.ModelsDir = expandPath(o.ModelsDir)
	return nil
}

// Rounds is the number of batched generation rounds needed per prompt.
func (o Options) Rounds() int { return o.Samples / o.BatchSize }

// ModelDir is the directory holding the model's metadata and checkpoints.
func (o Options) ModelDir() string { return filepath.Join(o.ModelsDir, o.Model) }

// expandPath expands environment variables and a leading ~ before any I/O
// touches the path.
func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if p == "~" || strings.HasPrefix(p, "~"+string(filepath.Separator)) {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return filepath.Clean(p)
}
