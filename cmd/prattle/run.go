package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/prattle/internal/generate"
)

func runCmd() *cli.Command {
	flags := modelFlags()
	flags = append(flags, samplingFlags()...)
	flags = append(flags, loggingFlags()...)

	return &cli.Command{
		Name:  "run",
		Usage: "Sample interactively from a model",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			applyCommonConfig(c, LoadConfig())
			log := setupLogging()

			opts := buildOptions()

			loadStart := time.Now()
			sess, err := generate.Open(opts)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			log.Info("session ready",
				"model", sess.Model(),
				"checkpoint", filepath.Base(sess.Checkpoint()),
				"context", sess.Params().ContextWindow,
				"length", sess.Length(),
				"batch_size", sess.BatchSize(),
				"rounds", sess.Rounds(),
				"load_time", time.Since(loadStart).Round(time.Millisecond),
			)

			loop := &generate.Loop{
				Session:  sess,
				Codec:    sess.Codec(),
				ReadLine: readInteractiveLine,
				Out:      os.Stdout,
			}
			if err := loop.Run(); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			return nil
		},
	}
}
