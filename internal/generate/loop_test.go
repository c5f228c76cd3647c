package generate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

// scriptedInput feeds the given lines one per call, then io.EOF.
func scriptedInput(lines ...string) func(string) (string, error) {
	i := 0
	return func(string) (string, error) {
		if i >= len(lines) {
			return "", io.EOF
		}
		line := lines[i]
		i++
		return line, nil
	}
}

// fakeCodec encodes one token per byte and decodes ids to a stable label.
type fakeCodec struct{}

func (fakeCodec) Encode(text string) ([]int, error) {
	ids := make([]int, len(text))
	for i := range text {
		ids[i] = int(text[i])
	}
	return ids, nil
}

func (fakeCodec) Decode(ids []int) (string, error) {
	return fmt.Sprintf("sample%v", ids), nil
}

// fakeSession hands out distinct token sequences so samples can be told
// apart across rounds.
type fakeSession struct {
	batch   int
	rounds  int
	counter int
	err     error
	prompts [][]int
}

func (f *fakeSession) Generate(prompt []int) ([][]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.prompts = append(f.prompts, prompt)
	out := make([][]int, f.batch)
	for i := range out {
		f.counter++
		out[i] = []int{f.counter}
	}
	return out, nil
}

func (f *fakeSession) Rounds() int { return f.rounds }

func TestLoopOrdinalsAcrossRounds(t *testing.T) {
	var out bytes.Buffer
	loop := &Loop{
		Session:  &fakeSession{batch: 2, rounds: 2},
		Codec:    fakeCodec{},
		ReadLine: scriptedInput("hello"),
		Out:      &out,
	}
	if err := loop.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := out.String()
	for n := 1; n <= 4; n++ {
		if !strings.Contains(got, sampleHeader(n)) {
			t.Fatalf("missing header for sample %d in %q", n, got)
		}
	}
	if strings.Contains(got, sampleHeader(5)) {
		t.Fatalf("unexpected fifth sample in %q", got)
	}
	// Headers appear in generation order.
	for n := 1; n < 4; n++ {
		if strings.Index(got, sampleHeader(n)) > strings.Index(got, sampleHeader(n+1)) {
			t.Fatalf("sample %d reported after sample %d", n, n+1)
		}
	}
	if !strings.HasSuffix(got, promptSeparator()+"\n") {
		t.Fatalf("missing closing separator in %q", got)
	}
}

func TestLoopOrdinalsResetPerPrompt(t *testing.T) {
	var out bytes.Buffer
	loop := &Loop{
		Session:  &fakeSession{batch: 1, rounds: 2},
		Codec:    fakeCodec{},
		ReadLine: scriptedInput("first", "second"),
		Out:      &out,
	}
	if err := loop.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := out.String()
	if c := strings.Count(got, sampleHeader(1)); c != 2 {
		t.Fatalf("expected two prompts to each restart at SAMPLE 1, got %d in %q", c, got)
	}
	if c := strings.Count(got, sampleHeader(2)); c != 2 {
		t.Fatalf("expected SAMPLE 2 twice, got %d", c)
	}
	if c := strings.Count(got, promptSeparator()+"\n"); c != 2 {
		t.Fatalf("expected two closing separators, got %d", c)
	}
}

func TestLoopEmptyPromptReprompts(t *testing.T) {
	sess := &fakeSession{batch: 1, rounds: 1}
	var out bytes.Buffer
	loop := &Loop{
		Session:  sess,
		Codec:    fakeCodec{},
		ReadLine: scriptedInput("", "", "hi"),
		Out:      &out,
	}
	if err := loop.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := out.String()
	if c := strings.Count(got, emptyPromptNotice); c != 2 {
		t.Fatalf("expected two re-prompt notices, got %d in %q", c, got)
	}
	// Empty input never reaches the session.
	if len(sess.prompts) != 1 {
		t.Fatalf("expected exactly one generate call, got %d", len(sess.prompts))
	}
	if c := strings.Count(got, sampleHeader(1)); c != 1 {
		t.Fatalf("expected one sample, got %d", c)
	}
}

func TestLoopEndsCleanlyOnEOF(t *testing.T) {
	var out bytes.Buffer
	loop := &Loop{
		Session:  &fakeSession{batch: 1, rounds: 1},
		Codec:    fakeCodec{},
		ReadLine: scriptedInput(),
		Out:      &out,
	}
	if err := loop.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestLoopPropagatesGenerationError(t *testing.T) {
	boom := errors.New("boom")
	var out bytes.Buffer
	loop := &Loop{
		Session:  &fakeSession{batch: 1, rounds: 1, err: boom},
		Codec:    fakeCodec{},
		ReadLine: scriptedInput("hi"),
		Out:      &out,
	}
	err := loop.Run()
	if err == nil || !errors.Is(err, boom) {
		t.Fatalf("expected generation error, got %v", err)
	}
}

func TestLoopReadErrorPropagates(t *testing.T) {
	bad := errors.New("tty gone")
	loop := &Loop{
		Session: &fakeSession{batch: 1, rounds: 1},
		Codec:   fakeCodec{},
		ReadLine: func(string) (string, error) {
			return "", bad
		},
		Out: io.Discard,
	}
	if err := loop.Run(); !errors.Is(err, bad) {
		t.Fatalf("expected read error, got %v", err)
	}
}
