// Package bell provides the "cannot proceed" signal raised when undo or redo
// has nothing to act on.
package bell

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
)

// Bell produces an audible or visual bell.
type Bell interface {
	Ring()
}

// Func adapts a function to the Bell interface.
type Func func()

// Ring calls f.
func (f Func) Ring() { f() }

// Nop is a bell that does nothing.
var Nop Bell = Func(func() {})

// Terminal rings the bell of a tcell screen.
type Terminal struct {
	mu     sync.Mutex
	screen tcell.Screen
}

// NewTerminal creates a bell for an initialized screen.
func NewTerminal(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

// Ring implements Bell.
func (t *Terminal) Ring() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.screen == nil {
		return
	}
	_ = t.screen.Beep()
}

// Writer writes the ASCII BEL character to an io.Writer.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriter creates a bell writing to out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Ring implements Bell.
func (w *Writer) Ring() {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, _ = w.out.Write([]byte{'\a'})
}

// Counter counts rings and optionally forwards them.
type Counter struct {
	next  Bell
	rings atomic.Int64
}

// NewCounter wraps next; a nil next only counts.
func NewCounter(next Bell) *Counter {
	if next == nil {
		next = Nop
	}
	return &Counter{next: next}
}

// Ring implements Bell.
func (c *Counter) Ring() {
	c.rings.Add(1)
	c.next.Ring()
}

// Rings returns how many times the bell rang.
func (c *Counter) Rings() int {
	return int(c.rings.Load())
}

// Modes accepted by FromMode.
const (
	ModeTerminal = "terminal"
	ModeNone     = "none"
)

// FromMode maps a configured bell mode to an implementation. The terminal
// mode writes BEL to out; interactive screens replace it with a Terminal.
func FromMode(mode string, out io.Writer) (Bell, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeTerminal, "":
		return NewWriter(out), nil
	case ModeNone:
		return Nop, nil
	default:
		return nil, fmt.Errorf("unknown bell mode %q", mode)
	}
}
