//go:build linux

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

var promptHistory []string

// stdinReader is shared across reads so piped input is not lost to the
// buffer between lines.
var stdinReader = bufio.NewReader(os.Stdin)

// readInteractiveLine reads one line from stdin. On a terminal it switches to
// raw mode and provides cursor movement, editing, and prompt history; piped
// input falls back to plain buffered reads. Ctrl+C and Ctrl+D on an empty
// line report io.EOF to end the session.
func readInteractiveLine(marker string) (string, error) {
	if !stdinIsTTY() {
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

	fd := int(os.Stdin.Fd())
	oldState, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return "", err
	}
	rawState := *oldState
	rawState.Lflag &^= unix.ICANON | unix.ECHO
	rawState.Cc[unix.VMIN] = 1
	rawState.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &rawState); err != nil {
		return "", err
	}
	defer func() {
		_ = unix.IoctlSetTermios(fd, unix.TCSETS, oldState)
	}()

	ed := &lineEditor{marker: marker, histPos: len(promptHistory)}
	fmt.Print(marker)
	return ed.readLoop()
}

// lineEditor holds the in-progress line and cursor for one raw-mode read.
type lineEditor struct {
	marker string
	line   []byte
	cursor int

	histPos      int
	histBrowsing bool
	histDraft    string
}

func (ed *lineEditor) readLoop() (string, error) {
	var buf [16]byte
	escState := 0
	var escSeq strings.Builder

	for {
		n, err := os.Stdin.Read(buf[:])
		if err != nil {
			return "", err
		}
		for i := 0; i < n; i++ {
			b := buf[i]
			if escState != 0 {
				switch escState {
				case 1:
					if b == '[' {
						escState = 2
						escSeq.Reset()
					} else {
						escState = 0
					}
				case 2:
					escSeq.WriteByte(b)
					if (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == '~' {
						ed.handleCSI(escSeq.String())
						escState = 0
					}
				}
				continue
			}

			switch b {
			case 27: // ESC
				escState = 1
			case '\r', '\n':
				fmt.Print("\r\n")
				out := string(ed.line)
				if strings.TrimSpace(out) != "" {
					promptHistory = append(promptHistory, out)
				}
				return out, nil
			case 3: // Ctrl+C
				fmt.Print("^C\r\n")
				return "", io.EOF
			case 4: // Ctrl+D
				if len(ed.line) == 0 {
					fmt.Print("\r\n")
					return "", io.EOF
				}
			case 127, 8: // backspace
				if ed.cursor > 0 {
					ed.line = append(ed.line[:ed.cursor-1], ed.line[ed.cursor:]...)
					ed.cursor--
					ed.redraw()
				}
			case 1: // Ctrl+A
				ed.cursor = 0
				ed.redraw()
			case 5: // Ctrl+E
				ed.cursor = len(ed.line)
				ed.redraw()
			case 21: // Ctrl+U
				ed.line = ed.line[:0]
				ed.cursor = 0
				ed.redraw()
			case 23: // Ctrl+W
				ed.deleteWordBack()
			default:
				if b >= 32 {
					ed.insert(b)
				}
			}
		}
	}
}

func (ed *lineEditor) insert(b byte) {
	if ed.cursor == len(ed.line) {
		ed.line = append(ed.line, b)
	} else {
		ed.line = append(ed.line, 0)
		copy(ed.line[ed.cursor+1:], ed.line[ed.cursor:])
		ed.line[ed.cursor] = b
	}
	ed.cursor++
	ed.redraw()
}

func (ed *lineEditor) handleCSI(seq string) {
	switch seq {
	case "A": // up: walk back through history
		if len(promptHistory) == 0 {
			return
		}
		if !ed.histBrowsing {
			ed.histDraft = string(ed.line)
			ed.histBrowsing = true
			ed.histPos = len(promptHistory)
		}
		if ed.histPos > 0 {
			ed.histPos--
			ed.setLine(promptHistory[ed.histPos])
		}
	case "B": // down: walk forward, ending at the stashed draft
		if !ed.histBrowsing {
			return
		}
		if ed.histPos < len(promptHistory)-1 {
			ed.histPos++
			ed.setLine(promptHistory[ed.histPos])
		} else {
			ed.histPos = len(promptHistory)
			ed.setLine(ed.histDraft)
			ed.histBrowsing = false
		}
	case "D": // left
		if ed.cursor > 0 {
			ed.cursor--
			ed.redraw()
		}
	case "C": // right
		if ed.cursor < len(ed.line) {
			ed.cursor++
			ed.redraw()
		}
	case "H": // home
		ed.cursor = 0
		ed.redraw()
	case "F": // end
		ed.cursor = len(ed.line)
		ed.redraw()
	case "3~": // delete
		if ed.cursor < len(ed.line) {
			ed.line = append(ed.line[:ed.cursor], ed.line[ed.cursor+1:]...)
			ed.redraw()
		}
	case "1;5D", "5D": // ctrl+left
		ed.moveWordLeft()
	case "1;5C", "5C": // ctrl+right
		ed.moveWordRight()
	}
}

func (ed *lineEditor) moveWordLeft() {
	if ed.cursor == 0 {
		return
	}
	for ed.cursor > 0 && isWordSpace(ed.line[ed.cursor-1]) {
		ed.cursor--
	}
	for ed.cursor > 0 && !isWordSpace(ed.line[ed.cursor-1]) {
		ed.cursor--
	}
	ed.redraw()
}

func (ed *lineEditor) moveWordRight() {
	if ed.cursor >= len(ed.line) {
		return
	}
	for ed.cursor < len(ed.line) && isWordSpace(ed.line[ed.cursor]) {
		ed.cursor++
	}
	for ed.cursor < len(ed.line) && !isWordSpace(ed.line[ed.cursor]) {
		ed.cursor++
	}
	ed.redraw()
}

func (ed *lineEditor) setLine(s string) {
	ed.line = append(ed.line[:0], s...)
	ed.cursor = len(ed.line)
	ed.redraw()
}

func (ed *lineEditor) deleteWordBack() {
	if ed.cursor == 0 {
		return
	}
	start := ed.cursor
	for start > 0 && isWordSpace(ed.line[start-1]) {
		start--
	}
	for start > 0 && !isWordSpace(ed.line[start-1]) {
		start--
	}
	ed.line = append(ed.line[:start], ed.line[ed.cursor:]...)
	ed.cursor = start
	ed.redraw()
}

func (ed *lineEditor) redraw() {
	fmt.Printf("\r%s%s", ed.marker, string(ed.line))
	fmt.Print("\x1b[K")
	if ed.cursor < len(ed.line) {
		fmt.Printf("\r%s%s", ed.marker, string(ed.line[:ed.cursor]))
	}
}

func isWordSpace(b byte) bool {
	return b == ' ' || b == '\t'
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
