package vm

// Display is the boundary between the core engine and whatever draws the
// debugger's four panels (§4.4). The engine only ever calls this interface;
// it is never compiled against a specific terminal library, matching the
// spec's treatment of the panel-drawing library as an external collaborator.
//
// A concrete terminal implementation renders Registers/Stack/Disassembly as
// on-screen panels and multiplexes ReadMain over real keyboard events. A
// headless implementation buffers WriteMain and serves ReadMain from a
// preloaded queue, for tests and scripted scenario replay.
type Display interface {
	// WriteMain emits one character produced by the out opcode.
	WriteMain(c byte)

	// ReadMain blocks for the next input character. It returns an I/O fault
	// if no more input is available. It does not redraw the panels; the
	// engine calls Refresh before each read.
	ReadMain() (byte, error)

	// Refresh redraws the Registers, Stack and Disassembly panels for the
	// given machine state at program counter pc. Implementations that don't
	// render to a screen (e.g. headless) may no-op.
	Refresh(m *Machine, pc int32)

	// Close releases any resources (terminal raw mode, screen) acquired for
	// the lifetime of the run.
	Close()
}
