package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// InvalidKey is returned for a keypress that is not a digit.
const InvalidKey uint = 255

const ctrlC = 3

// Terminal reads single keypresses. When in is an interactive terminal each
// read switches it to raw mode for one byte and restores it afterwards;
// otherwise bytes are read as a stream with whitespace skipped, which keeps
// piped input usable.
type Terminal struct {
	in     io.Reader
	out    io.Writer
	reader *bufio.Reader
	fd     int
	raw    bool

	mu    sync.Mutex
	saved *term.State
}

// NewTerminal wraps in and out.
//
// Precondition: in and out must not be nil.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	t := &Terminal{in: in, out: out, reader: bufio.NewReader(in), fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.fd = int(f.Fd())
		t.raw = true
	}
	return t
}

// ReadKey returns the next non-whitespace byte. Ctrl-C reads as io.EOF.
func (t *Terminal) ReadKey() (byte, error) {
	if t.raw {
		if err := t.makeRaw(); err != nil {
			return 0, fmt.Errorf("entering raw mode: %w", err)
		}
		defer t.Restore()
	}
	for {
		b, err := t.reader.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case ctrlC:
			return 0, io.EOF
		}
		return b, nil
	}
}

func (t *Terminal) makeRaw() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	state, err := term.MakeRaw(t.fd)
	if err != nil {
		return err
	}
	t.saved = state
	return nil
}

// Restore returns the terminal to its cooked state if a read left it raw.
// It is safe to call from a signal handler goroutine.
func (t *Terminal) Restore() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.saved != nil {
		_ = term.Restore(t.fd, t.saved)
		t.saved = nil
	}
}

// ReadDigit reads one key and maps '0'-'9' to 0-9; anything else is InvalidKey.
func (t *Terminal) ReadDigit() (uint, error) {
	b, err := t.ReadKey()
	if err != nil {
		return 0, err
	}
	if b < '0' || b > '9' {
		return InvalidKey, nil
	}
	return uint(b - '0'), nil
}

// ReadMove implements match.Input. Keys other than digits are discarded, so
// escape sequences from arrow or function keys never cost a turn.
func (t *Terminal) ReadMove() (uint, error) {
	for {
		n, err := t.ReadDigit()
		if err != nil || n != InvalidKey {
			return n, err
		}
	}
}

// ReadMenu implements match.Input. Any key that is not a digit reads as
// InvalidKey, which every menu treats as leaving it.
func (t *Terminal) ReadMenu() (uint, error) { return t.ReadDigit() }

// Confirm implements match.Input. Only y or Y confirms.
func (t *Terminal) Confirm(prompt string) (bool, error) {
	fmt.Fprintf(t.out, "%s %s\r\n", Colorize(BrightYellow, prompt), Colorize(Gray, "[y/N]"))
	b, err := t.ReadKey()
	if err != nil {
		return false, err
	}
	return b == 'y' || b == 'Y', nil
}
