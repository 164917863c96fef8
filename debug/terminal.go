package debug

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rcornwell/synvm/vm"
)

// disasmWindow is the number of words shown in the Disassembly panel and how
// far before the current PC the window starts (§4.4).
const (
	disasmWindow = 80
	disasmBefore = 40
)

// Terminal is a vm.Display backed by tcell, dividing the screen into a large
// left Main region and three stacked right-hand regions for Registers,
// Stack and Disassembly (§4.8). Keys are delivered one at a time with no
// line buffering, matching the in opcode's single-character read contract.
type Terminal struct {
	screen tcell.Screen
	cursor int // next write column in the Main region, wraps at its width
	row    int
}

// NewTerminal acquires the terminal in raw/fullscreen mode for the lifetime
// of the run. Callers must call Close on exit or fault to restore it.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, &vm.Fault{Class: vm.FaultIO, Msg: "opening terminal: " + err.Error()}
	}
	if err := screen.Init(); err != nil {
		return nil, &vm.Fault{Class: vm.FaultIO, Msg: "initializing terminal: " + err.Error()}
	}
	screen.Clear()
	return &Terminal{screen: screen}, nil
}

func (t *Terminal) mainWidth() int {
	w, _ := t.screen.Size()
	main := w * 2 / 3
	if main < 1 {
		main = 1
	}
	return main
}

// WriteMain draws one output character into the Main region. When output
// passes the bottom row it wraps to the top row; the region does not scroll,
// and earlier text is overwritten in place.
func (t *Terminal) WriteMain(c byte) {
	_, h := t.screen.Size()
	mainWidth := t.mainWidth()

	if c == '\n' {
		t.row++
		t.cursor = 0
	} else {
		t.screen.SetContent(t.cursor, t.row, rune(c), nil, tcell.StyleDefault)
		t.cursor++
		if t.cursor >= mainWidth {
			t.cursor = 0
			t.row++
		}
	}
	if t.row >= h {
		// The region is the full screen height; once exhausted, wrap to
		// the top. No scrollback buffer is kept.
		t.row = 0
	}
	t.screen.Show()
}

// ReadMain blocks for the next key event and returns its rune as a byte.
func (t *Terminal) ReadMain() (byte, error) {
	for {
		ev := t.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEnter {
				return '\n', nil
			}
			if ev.Key() == tcell.KeyRune {
				return byte(ev.Rune()), nil
			}
		case *tcell.EventResize:
			t.screen.Sync()
		case nil:
			return 0, &vm.Fault{Class: vm.FaultIO, Msg: "terminal closed"}
		}
	}
}

// Refresh redraws the Registers, Stack and Disassembly panels for m at pc.
func (t *Terminal) Refresh(m *vm.Machine, pc int32) {
	w, h := t.screen.Size()
	mainWidth := t.mainWidth()
	col := mainWidth + 1
	if col >= w {
		col = w - 1
	}
	panelWidth := w - col
	third := h / 3

	t.clearRegion(col, 0, panelWidth, h)
	t.drawVLine(mainWidth, 0, h)

	row := 0
	for i, r := range m.Registers {
		t.drawLine(col, row, panelWidth, fmt.Sprintf("R%d :: %5d %#04x", i, r, r))
		row++
	}

	row = third
	t.drawLine(col, row, panelWidth, "-- stack --")
	row++
	for i := 0; i < len(m.Stack) && row < 2*third; i++ {
		t.drawLine(col, row, panelWidth, fmt.Sprintf("S%03d :: %5d %#04x", i, m.Stack[i], m.Stack[i]))
		row++
	}

	start := int(pc) - disasmBefore
	if start < 0 {
		start = 0
	}
	lines := vm.Disassemble(&m.Memory, start, disasmWindow)
	row = 2 * third
	t.drawLine(col, row, panelWidth, "-- disassembly --")
	row++
	for _, line := range lines {
		if row >= h {
			break
		}
		text := line.String()
		if int32(line.Addr) == pc {
			text = "-> " + text
		}
		t.drawLine(col, row, panelWidth, text)
		row++
	}

	t.screen.Show()
}

// Close restores the terminal to its original mode.
func (t *Terminal) Close() {
	t.screen.Fini()
}

func (t *Terminal) clearRegion(x, y, w, h int) {
	for row := y; row < y+h; row++ {
		for c := x; c < x+w; c++ {
			t.screen.SetContent(c, row, ' ', nil, tcell.StyleDefault)
		}
	}
}

func (t *Terminal) drawVLine(x, y, h int) {
	for row := y; row < y+h; row++ {
		t.screen.SetContent(x, row, tcell.RuneVLine, nil, tcell.StyleDefault)
	}
}

func (t *Terminal) drawLine(x, y, width int, text string) {
	for i, r := range text {
		if i >= width {
			break
		}
		t.screen.SetContent(x+i, y, r, nil, tcell.StyleDefault)
	}
}
