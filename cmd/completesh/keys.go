package main

// key classifies one logical keystroke read from the terminal.
type key int

const (
	keyNone key = iota
	keyInterrupt
	keyEOF
	keyEnter
	keyBackspace
	keyDeleteForward
	keyHome
	keyEnd
	keyLeft
	keyRight
	keyClearLine
	keyPrintable
)

// readKey reads one keystroke, resolving multi-byte escape sequences and
// UTF-8 continuation bytes. extra carries the decoded rune bytes for
// keyPrintable; it is nil for every other key.
func (e *lineEditor) readKey() (key, []byte, error) {
	var b [1]byte
	if _, err := e.tty.Read(b[:]); err != nil {
		return keyNone, nil, err
	}

	switch b[0] {
	case 3:
		return keyInterrupt, nil, nil
	case 4:
		return keyEOF, nil, nil
	case 13, 10:
		return keyEnter, nil, nil
	case 127, 8:
		return keyBackspace, nil, nil
	case 1:
		return keyHome, nil, nil
	case 5:
		return keyEnd, nil, nil
	case 21:
		return keyClearLine, nil, nil
	case 27:
		return e.readEscape()
	}

	if b[0] < 32 {
		return keyNone, nil, nil
	}
	return keyPrintable, e.readUTF8Rune(b[0]), nil
}

// readEscape consumes a CSI sequence ("\x1b[...") and maps the recognized
// ones to a key; anything else is swallowed as a no-op.
func (e *lineEditor) readEscape() (key, []byte, error) {
	var seq [2]byte
	if n, _ := e.tty.Read(seq[:1]); n == 0 || seq[0] != '[' {
		return keyNone, nil, nil
	}
	if n, _ := e.tty.Read(seq[1:2]); n == 0 {
		return keyNone, nil, nil
	}

	switch seq[1] {
	case 'D':
		return keyLeft, nil, nil
	case 'C':
		return keyRight, nil, nil
	case 'H':
		return keyHome, nil, nil
	case 'F':
		return keyEnd, nil, nil
	case '1', '7':
		e.tty.Read(seq[:1]) // consume trailing '~'
		return keyHome, nil, nil
	case '3':
		e.tty.Read(seq[:1])
		return keyDeleteForward, nil, nil
	case '4', '8':
		e.tty.Read(seq[:1])
		return keyEnd, nil, nil
	}
	return keyNone, nil, nil
}

// readUTF8Rune reads the continuation bytes following lead, returning the
// full encoded rune.
func (e *lineEditor) readUTF8Rune(lead byte) []byte {
	n := utf8RuneLen(lead)
	if n == 1 {
		return []byte{lead}
	}
	rest := make([]byte, n-1)
	e.tty.Read(rest)
	return append([]byte{lead}, rest...)
}

func utf8RuneLen(lead byte) int {
	switch {
	case lead < 0xC0:
		return 1
	case lead < 0xE0:
		return 2
	case lead < 0xF0:
		return 3
	default:
		return 4
	}
}
