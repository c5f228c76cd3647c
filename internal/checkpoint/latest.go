package checkpoint

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var stepPattern = regexp.MustCompile(`(\d+)\.safetensors$`)

// Latest returns the most recent checkpoint in a model directory. Checkpoints
// carrying a trailing step number (model-350000.safetensors) are ranked by
// step; unnumbered files rank below numbered ones and fall back to
// modification time.
func Latest(dir string) (string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("scan model dir: %w", err)
	}

	var (
		best      string
		bestStep  = -1
		bestMtime time.Time
	)
	for _, e := range ents {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".safetensors") {
			continue
		}
		step := -1
		if m := stepPattern.FindStringSubmatch(e.Name()); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				step = v
			}
		}
		var mtime time.Time
		if info, err := e.Info(); err == nil {
			mtime = info.ModTime()
		}
		if step > bestStep || (step == bestStep && mtime.After(bestMtime)) {
			best = filepath.Join(dir, e.Name())
			bestStep = step
			bestMtime = mtime
		}
	}
	if best == "" {
		return "", fmt.Errorf("no checkpoint found in %s", dir)
	}
	return best, nil
}
