package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/prattle/internal/checkpoint"
	"github.com/samcharles93/prattle/internal/hparams"
)

func listModelsCmd() *cli.Command {
	return &cli.Command{
		Name:    "models",
		Aliases: []string{"ls", "list-models"},
		Usage:   "List available models",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "models-path",
				Aliases:     []string{"path"},
				Usage:       "path to directory containing model subdirectories",
				Destination: &modelsPath,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := resolveModelsDir(modelsPath)

			models, err := discoverModels(dir)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if len(models) == 0 {
				fmt.Printf("No models found in %s\n", dir)
				return nil
			}

			fmt.Printf("Models in %s:\n\n", dir)
			for _, name := range models {
				modelDir := filepath.Join(dir, name)
				summary := ""
				if p, err := hparams.Load(modelDir); err == nil {
					summary = fmt.Sprintf("ctx=%d vocab=%d embd=%d", p.ContextWindow, p.VocabSize, p.EmbedDim)
				}
				ckpt := "no checkpoint"
				if path, err := checkpoint.Latest(modelDir); err == nil {
					ckpt = filepath.Base(path)
				}
				if summary != "" {
					fmt.Printf("  %-16s %-32s %s\n", name, summary, ckpt)
				} else {
					fmt.Printf("  %-16s %s\n", name, ckpt)
				}
			}
			fmt.Printf("\n%d model(s) found\n", len(models))
			return nil
		},
	}
}
