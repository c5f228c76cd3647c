package generate

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samcharles93/prattle/internal/tokenizer"
)

// PromptMarker is printed before every prompt read.
const PromptMarker = "Model prompt >>> "

const emptyPromptNotice = "Prompt should not be empty!"

// loopState enumerates the states of the interactive loop.
type loopState int

const (
	awaitPrompt loopState = iota
	encodePrompt
	generateRound
	reportRound
)

// rounder is the slice of session behavior the loop depends on.
type rounder interface {
	Generate(prompt []int) ([][]int, error)
	Rounds() int
}

// Loop drives the interactive cycle: await a prompt, encode it, run the
// session's rounds, and report each sample framed by separators. It is
// single-threaded and blocking; it has no terminal state of its own and runs
// until ReadLine reports io.EOF or a generation error propagates.
type Loop struct {
	Session rounder
	Codec   tokenizer.Codec

	// ReadLine blocks for one line of input, showing the given marker.
	// It reports io.EOF when the input source is exhausted.
	ReadLine func(marker string) (string, error)
	Out      io.Writer
}

// Run executes the loop until end of input or a fatal error.
func (l *Loop) Run() error {
	var (
		state   = awaitPrompt
		raw     string
		prompt  []int
		round   [][]int
		ordinal int
		done    int
	)
	for {
		switch state {
		case awaitPrompt:
			line, err := l.ReadLine(PromptMarker)
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			if line == "" {
				fmt.Fprintln(l.Out, emptyPromptNotice)
				continue
			}
			raw = line
			state = encodePrompt

		case encodePrompt:
			toks, err := l.Codec.Encode(raw)
			if err != nil {
				return fmt.Errorf("encode prompt: %w", err)
			}
			prompt = toks
			ordinal = 0
			done = 0
			state = generateRound

		case generateRound:
			batch, err := l.Session.Generate(prompt)
			if err != nil {
				return fmt.Errorf("generate: %w", err)
			}
			round = batch
			state = reportRound

		case reportRound:
			for _, cont := range round {
				ordinal++
				text, err := l.Codec.Decode(cont)
				if err != nil {
					return fmt.Errorf("decode sample %d: %w", ordinal, err)
				}
				fmt.Fprintln(l.Out, sampleHeader(ordinal))
				fmt.Fprintln(l.Out, text)
			}
			done++
			if done < l.Session.Rounds() {
				state = generateRound
				continue
			}
			fmt.Fprintln(l.Out, promptSeparator())
			state = awaitPrompt
		}
	}
}

func sampleHeader(n int) string {
	side := strings.Repeat("=", 40)
	return side + " SAMPLE " + strconv.Itoa(n) + " " + side
}

func promptSeparator() string {
	return strings.Repeat("=", 80)
}
