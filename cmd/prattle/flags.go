package main

import (
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/prattle/internal/generate"
	"github.com/samcharles93/prattle/internal/logger"
)

var (
	modelName  string
	modelsPath string
	seed       int64
	samples    int64
	batchSize  int64
	genLength  int64
	temp       float64
	topK       int64
	topP       float64
	logLevel   string
	logFormat  string
	debug      bool
)

func modelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "model",
			Aliases:     []string{"m"},
			Usage:       "model name under the models directory",
			Value:       "124M",
			Destination: &modelName,
		},
		&cli.StringFlag{
			Name:        "models-path",
			Aliases:     []string{"path"},
			Usage:       "path to directory containing model subdirectories",
			Destination: &modelsPath,
		},
	}
}

func samplingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "seed",
			Usage:       "sampling RNG seed (default -1 = random)",
			Value:       -1,
			Destination: &seed,
		},
		&cli.Int64Flag{
			Name:        "samples",
			Aliases:     []string{"n", "nsamples"},
			Usage:       "completions to generate per prompt",
			Value:       1,
			Destination: &samples,
		},
		&cli.Int64Flag{
			Name:        "batch-size",
			Aliases:     []string{"batch_size", "b"},
			Usage:       "completions per generation round; must divide --samples",
			Value:       1,
			Destination: &batchSize,
		},
		&cli.Int64Flag{
			Name:        "length",
			Aliases:     []string{"l"},
			Usage:       "tokens to generate per completion (default 0 = half the context window)",
			Destination: &genLength,
		},
		&cli.Float64Flag{
			Name:        "temp",
			Aliases:     []string{"temperature", "t"},
			Usage:       "sampling temperature",
			Value:       1.0,
			Destination: &temp,
		},
		&cli.Int64Flag{
			Name:        "top-k",
			Aliases:     []string{"top_k", "topk"},
			Usage:       "top-k sampling parameter (0 = unrestricted)",
			Destination: &topK,
		},
		&cli.Float64Flag{
			Name:        "top-p",
			Aliases:     []string{"top_p", "topp"},
			Usage:       "nucleus sampling parameter (1.0 = unrestricted)",
			Value:       1.0,
			Destination: &topP,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

func setupLogging() logger.Logger {
	level := logLevel
	if debug {
		level = "debug"
	}
	return logger.Setup(level, logFormat)
}

func buildOptions() generate.Options {
	return generate.Options{
		Model:       modelName,
		Seed:        seed,
		Samples:     int(samples),
		BatchSize:   int(batchSize),
		Length:      int(genLength),
		Temperature: temp,
		TopK:        int(topK),
		TopP:        topP,
		ModelsDir:   resolveModelsDir(modelsPath),
	}
}
