//go:build !linux

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// stdinReader is shared across reads so piped input is not lost to the
// buffer between lines.
var stdinReader = bufio.NewReader(os.Stdin)

func readInteractiveLine(marker string) (string, error) {
	fmt.Print(marker)
	s, err := stdinReader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	if err == io.EOF && s == "" {
		return "", io.EOF
	}
	return trimTrailingNewline(s), nil
}

func trimTrailingNewline(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\n' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '\r' {
		s = s[:len(s)-1]
	}
	return s
}
