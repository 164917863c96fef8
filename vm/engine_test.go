package vm_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rcornwell/synvm/vm"
)

// fakeDisplay is a minimal vm.Display that records out-opcode output and
// serves in-opcode input from a preloaded queue, for deterministic,
// screen-free testing of the engine loop.
type fakeDisplay struct {
	output  []byte
	input   []byte
	pos     int
	refresh int
}

func (d *fakeDisplay) WriteMain(c byte) { d.output = append(d.output, c) }

func (d *fakeDisplay) ReadMain() (byte, error) {
	if d.pos >= len(d.input) {
		return 0, &vm.Fault{Class: vm.FaultIO, Msg: "input exhausted"}
	}
	c := d.input[d.pos]
	d.pos++
	return c, nil
}

func (d *fakeDisplay) Refresh(m *vm.Machine, pc int32) { d.refresh++ }
func (d *fakeDisplay) Close()                          {}

func imageFromWords(words ...vm.Word) *vm.Machine {
	m := vm.NewMachine()
	for i, w := range words {
		m.Memory[i] = w
	}
	return m
}

func TestHelloProgram(t *testing.T) {
	m := imageFromWords(19, 72, 19, 73, 0)
	disp := &fakeDisplay{}
	e := vm.NewEngine(m, disp, "", "")

	if err := e.Run(); err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	// char(72), char(73) is "HI"; out just forwards the operand's code point.
	if string(disp.output) != "HI" {
		t.Errorf("output = %q, want %q", disp.output, "HI")
	}
}

func TestRegisterArithmetic(t *testing.T) {
	m := imageFromWords(9, 32768, 32768, 5, 19, 32768, 0)
	disp := &fakeDisplay{}
	e := vm.NewEngine(m, disp, "", "")

	if err := e.Run(); err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if e.Machine().Registers[0] != 5 {
		t.Errorf("R0 = %d, want 5", e.Machine().Registers[0])
	}
	if string(disp.output) != "\x05" {
		t.Errorf("output = %q, want %q", disp.output, "\x05")
	}
}

func TestCallRet(t *testing.T) {
	// call 5; halt; [pad, pad]; out 'A'; ret
	m := imageFromWords(17, 5, 0, 0, 0, 19, 65, 18)
	disp := &fakeDisplay{}
	e := vm.NewEngine(m, disp, "", "")

	if err := e.Run(); err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if string(disp.output) != "A" {
		t.Errorf("output = %q, want %q", disp.output, "A")
	}
	if e.Machine().PC != 2 {
		t.Errorf("PC after ret = %d, want 2 (the halt call returned to)", e.Machine().PC)
	}
}

func TestOverflowModulus(t *testing.T) {
	m := imageFromWords(9, 32768, 32767, 2, 19, 32768, 0)
	disp := &fakeDisplay{}
	e := vm.NewEngine(m, disp, "", "")

	if err := e.Run(); err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if e.Machine().Registers[0] != 1 {
		t.Errorf("R0 = %d, want 1", e.Machine().Registers[0])
	}
	if string(disp.output) != "\x01" {
		t.Errorf("output = %q, want %q", disp.output, "\x01")
	}
}

func TestMemoryIndirection(t *testing.T) {
	m := imageFromWords(16, 100, 65, 15, 32768, 100, 19, 32768, 0)
	disp := &fakeDisplay{}
	e := vm.NewEngine(m, disp, "", "")

	if err := e.Run(); err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if string(disp.output) != "A" {
		t.Errorf("output = %q, want %q", disp.output, "A")
	}
}

func TestMultOverflow(t *testing.T) {
	m := imageFromWords(10, 32768, 181, 181, 0)
	disp := &fakeDisplay{}
	e := vm.NewEngine(m, disp, "", "")

	if err := e.Run(); err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if e.Machine().Registers[0] != 32761 {
		t.Errorf("R0 = %d, want 32761", e.Machine().Registers[0])
	}
}

func TestNotComplement(t *testing.T) {
	m := imageFromWords(14, 32768, 0, 0)
	disp := &fakeDisplay{}
	e := vm.NewEngine(m, disp, "", "")
	if err := e.Run(); err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if e.Machine().Registers[0] != 32767 {
		t.Errorf("not 0 = %d, want 32767", e.Machine().Registers[0])
	}

	m2 := imageFromWords(14, 32768, 32767, 0)
	disp2 := &fakeDisplay{}
	e2 := vm.NewEngine(m2, disp2, "", "")
	if err := e2.Run(); err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if e2.Machine().Registers[0] != 0 {
		t.Errorf("not 32767 = %d, want 0", e2.Machine().Registers[0])
	}
}

func TestModByZeroFaults(t *testing.T) {
	m := imageFromWords(11, 32768, 5, 0, 0)
	disp := &fakeDisplay{}
	e := vm.NewEngine(m, disp, "", "")
	err := e.Run()
	f, ok := vm.AsFault(err)
	if !ok {
		t.Fatalf("expected a Fault, got %v", err)
	}
	if f.Class != vm.FaultDecode {
		t.Errorf("class = %v, want %v", f.Class, vm.FaultDecode)
	}
}

func TestJtFallsThroughOnZero(t *testing.T) {
	// jt R0(=0) 10; out 88 ('X'); halt    -- should fall through to out/halt,
	// never touching address 10.
	m := imageFromWords(7, 32768, 10, 19, 88, 0)
	disp := &fakeDisplay{}
	e := vm.NewEngine(m, disp, "", "")
	if err := e.Run(); err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if string(disp.output) != "X" {
		t.Errorf("output = %q, want %q", disp.output, "X")
	}
}

func TestJtJumpsOnNonzero(t *testing.T) {
	// set R0 1; jt R0 12; out 89('Y'); halt; [pad]; out 90('Z'); halt
	// jt's target is address 12, the second out, skipping the first out/halt.
	m := imageFromWords(1, 32768, 1, 7, 32768, 12, 19, 89, 0, 0, 0, 0, 19, 90, 0)
	disp := &fakeDisplay{}
	e := vm.NewEngine(m, disp, "", "")
	if err := e.Run(); err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if string(disp.output) != "Z" {
		t.Errorf("output = %q, want %q", disp.output, "Z")
	}
}

func TestUnsupportedOpcodeFaults(t *testing.T) {
	m := imageFromWords(200)
	disp := &fakeDisplay{}
	e := vm.NewEngine(m, disp, "", "")
	err := e.Run()
	f, ok := vm.AsFault(err)
	if !ok {
		t.Fatalf("expected a Fault, got %v", err)
	}
	if f.Class != vm.FaultDecode {
		t.Errorf("class = %v, want %v", f.Class, vm.FaultDecode)
	}
}

func TestInputFaultsOnExhaustion(t *testing.T) {
	// in R0; halt -- with no input queued.
	m := imageFromWords(20, 32768, 0)
	disp := &fakeDisplay{}
	e := vm.NewEngine(m, disp, "", "")
	err := e.Run()
	f, ok := vm.AsFault(err)
	if !ok {
		t.Fatalf("expected a Fault, got %v", err)
	}
	if f.Class != vm.FaultIO {
		t.Errorf("class = %v, want %v", f.Class, vm.FaultIO)
	}
}

func TestInputDeliversOrdinaryCharacter(t *testing.T) {
	m := imageFromWords(20, 32768, 19, 32768, 0)
	disp := &fakeDisplay{input: []byte("A")}
	e := vm.NewEngine(m, disp, "", "")
	if err := e.Run(); err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if string(disp.output) != "A" {
		t.Errorf("output = %q, want %q", disp.output, "A")
	}
}

func TestInputQHalts(t *testing.T) {
	m := imageFromWords(20, 32768, 19, 32768, 0)
	disp := &fakeDisplay{input: []byte("Q")}
	e := vm.NewEngine(m, disp, "", "")
	if err := e.Run(); err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if len(disp.output) != 0 {
		t.Errorf("output = %q, want empty (Q halts before out runs)", disp.output)
	}
}

func TestInputRDeliversNewlineAndEntersStepMode(t *testing.T) {
	// in R0; out R0; halt, with 'R' then 'c' (to exit step mode before the
	// engine tries to prompt again on the next step).
	m := imageFromWords(20, 32768, 19, 32768, 0)
	disp := &fakeDisplay{input: []byte("Rc")}
	e := vm.NewEngine(m, disp, "", "")
	if err := e.Run(); err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if string(disp.output) != "\n" {
		t.Errorf("output = %q, want newline", disp.output)
	}
}

func TestSnapshotRoundTripViaSCommand(t *testing.T) {
	dir := t.TempDir()
	snapPath := filepath.Join(dir, "snap.bin")

	// add R0 R0 5; in R1 (pauses for S then Q); out R0; halt
	m := imageFromWords(9, 32768, 32768, 5, 20, 32769, 19, 32768, 0)
	disp := &fakeDisplay{input: []byte("SQ")}
	e := vm.NewEngine(m, disp, snapPath, "")
	if err := e.Run(); err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}

	if _, err := os.Stat(snapPath); err != nil {
		t.Fatalf("expected snapshot file to exist: %v", err)
	}

	loaded, err := vm.Load(snapPath)
	if err != nil {
		t.Fatalf("unexpected error loading snapshot: %v", err)
	}
	if loaded.Registers[0] != 5 {
		t.Errorf("loaded R0 = %d, want 5", loaded.Registers[0])
	}
	if loaded.PC != 4 {
		t.Errorf("loaded PC = %d, want 4 (at the in instruction)", loaded.PC)
	}
}

func TestBreakpointForcesStepMode(t *testing.T) {
	m := imageFromWords(9, 32768, 32768, 5, 19, 32768, 0)
	disp := &fakeDisplay{input: []byte("c")}
	e := vm.NewEngine(m, disp, "", "")
	e.Breakpoints[4] = struct{}{} // the out instruction

	if err := e.Run(); err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if string(disp.output) != "\x05" {
		t.Errorf("output = %q, want %q", disp.output, "\x05")
	}
	if disp.refresh == 0 {
		t.Errorf("expected breakpoint to trigger a panel refresh")
	}
}
