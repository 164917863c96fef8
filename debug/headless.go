// Package debug provides vm.Display implementations: a tcell-backed terminal
// renderer for interactive sessions and a headless buffer-backed one for
// scripted/non-interactive runs and tests.
package debug

import (
	"bufio"
	"io"

	"github.com/rcornwell/synvm/vm"
)

// Headless is a vm.Display that never touches a screen: WriteMain appends to
// an in-memory/file sink, and ReadMain is served from an input stream one
// byte at a time. Refresh is a no-op. It is used for non-interactive image
// verification (piping a known input stream through a program and checking
// output) and is the concrete type the engine's test suite models its fake
// display after.
type Headless struct {
	out io.Writer
	in  *bufio.Reader
}

// NewHeadless builds a Headless display reading input from in and writing
// output to out. Either may be nil; a nil out discards output and a nil in
// faults immediately on the first ReadMain.
func NewHeadless(out io.Writer, in io.Reader) *Headless {
	h := &Headless{out: out}
	if in != nil {
		h.in = bufio.NewReader(in)
	}
	return h
}

func (h *Headless) WriteMain(c byte) {
	if h.out != nil {
		h.out.Write([]byte{c})
	}
}

func (h *Headless) ReadMain() (byte, error) {
	if h.in == nil {
		return 0, &vm.Fault{Class: vm.FaultIO, Msg: "no input stream configured"}
	}
	c, err := h.in.ReadByte()
	if err != nil {
		return 0, &vm.Fault{Class: vm.FaultIO, Msg: "input exhausted: " + err.Error()}
	}
	return c, nil
}

func (h *Headless) Refresh(m *vm.Machine, pc int32) {}

func (h *Headless) Close() {}
