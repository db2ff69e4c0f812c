package main

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/term"
)

// ErrInterrupt is returned when the user presses Ctrl-C.
var ErrInterrupt = fmt.Errorf("interrupted")

// lineEditor is a minimal raw-mode line editor that tracks the cursor as a
// byte offset into the buffer, the same unit the driver's Request.Cursor
// expects, so a line read here can be handed to the engine unchanged.
type lineEditor struct {
	tty      *os.File
	oldState *term.State
	buf      []byte
	cursor   int
}

// openLineEditor opens /dev/tty (so input still works when stdout is
// redirected to a transcript file) and switches it to raw mode.
func openLineEditor() (*lineEditor, error) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open /dev/tty: %w", err)
	}
	old, err := term.MakeRaw(int(tty.Fd()))
	if err != nil {
		tty.Close()
		return nil, fmt.Errorf("enter raw mode: %w", err)
	}
	return &lineEditor{tty: tty, oldState: old}, nil
}

func (e *lineEditor) Close() {
	term.Restore(int(e.tty.Fd()), e.oldState)
	e.tty.Close()
}

// Tty exposes the underlying terminal file for prompt/status writes.
func (e *lineEditor) Tty() io.Writer { return e.tty }

// ReadLine reads one line, echoing prompt + buffer after every keystroke,
// and returns the text plus the byte offset of the cursor within it.
func (e *lineEditor) ReadLine(prompt string) (text string, cursor int, err error) {
	e.buf = e.buf[:0]
	e.cursor = 0
	e.redraw(prompt)

	for {
		key, extra, err := e.readKey()
		if err != nil {
			return "", 0, err
		}

		switch key {
		case keyInterrupt:
			fmt.Fprint(e.tty, "\r\n")
			return "", 0, ErrInterrupt
		case keyEOF:
			if len(e.buf) == 0 {
				fmt.Fprint(e.tty, "\r\n")
				return "", 0, io.EOF
			}
		case keyEnter:
			fmt.Fprint(e.tty, "\r\n")
			return string(e.buf), e.cursor, nil
		case keyBackspace:
			e.deleteBefore()
		case keyDeleteForward:
			e.deleteAfter()
		case keyHome:
			e.cursor = 0
		case keyEnd:
			e.cursor = len(e.buf)
		case keyLeft:
			e.moveLeft()
		case keyRight:
			e.moveRight()
		case keyClearLine:
			e.buf = e.buf[:0]
			e.cursor = 0
		case keyPrintable:
			e.insert(extra)
		}

		e.redraw(prompt)
	}
}

func (e *lineEditor) insert(ch []byte) {
	e.buf = append(e.buf, make([]byte, len(ch))...)
	copy(e.buf[e.cursor+len(ch):], e.buf[e.cursor:len(e.buf)-len(ch)])
	copy(e.buf[e.cursor:], ch)
	e.cursor += len(ch)
}

func (e *lineEditor) deleteBefore() {
	if e.cursor == 0 {
		return
	}
	size := runeSizeBefore(e.buf, e.cursor)
	copy(e.buf[e.cursor-size:], e.buf[e.cursor:])
	e.buf = e.buf[:len(e.buf)-size]
	e.cursor -= size
}

func (e *lineEditor) deleteAfter() {
	if e.cursor >= len(e.buf) {
		return
	}
	_, size := utf8.DecodeRune(e.buf[e.cursor:])
	copy(e.buf[e.cursor:], e.buf[e.cursor+size:])
	e.buf = e.buf[:len(e.buf)-size]
}

func (e *lineEditor) moveLeft() {
	if e.cursor > 0 {
		e.cursor -= runeSizeBefore(e.buf, e.cursor)
	}
}

func (e *lineEditor) moveRight() {
	if e.cursor < len(e.buf) {
		_, size := utf8.DecodeRune(e.buf[e.cursor:])
		e.cursor += size
	}
}

// redraw clears the line and rewrites prompt + buffer, then walks the
// cursor back to its logical position.
func (e *lineEditor) redraw(prompt string) {
	fmt.Fprintf(e.tty, "\r\x1b[K%s%s", prompt, string(e.buf))
	if tail := utf8.RuneCount(e.buf[e.cursor:]); tail > 0 {
		fmt.Fprintf(e.tty, "\x1b[%dD", tail)
	}
}

func runeSizeBefore(buf []byte, pos int) int {
	i := pos - 1
	for i > 0 && !utf8.RuneStart(buf[i]) {
		i--
	}
	_, size := utf8.DecodeRune(buf[i:pos])
	return size
}
