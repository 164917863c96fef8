package vm

import "log/slog"

// Engine drives the fetch-decode-execute loop over a Machine, multiplexing
// program input with debugger commands through the in opcode (§4.4). It is
// single-threaded and non-reentrant: nothing preempts a step except the
// debugger prompts the engine itself issues.
type Engine struct {
	m       *Machine
	display Display

	// SnapshotPath and DumpPath are the fixed (but overridable) filesystem
	// targets for the S and D debugger commands.
	SnapshotPath string
	DumpPath     string

	// Breakpoints forces step mode on whenever PC lands on one of these
	// addresses, independent of a manual R command. It is a debugging-session
	// concept, not machine state, and is never part of a snapshot.
	Breakpoints map[Word]struct{}

	stepMode bool
}

// NewEngine wires a Machine to a Display. snapshotPath and dumpPath are the
// targets the S/D commands and --save/--dump flags resolve to.
func NewEngine(m *Machine, display Display, snapshotPath, dumpPath string) *Engine {
	return &Engine{
		m:            m,
		display:      display,
		SnapshotPath: snapshotPath,
		DumpPath:     dumpPath,
		Breakpoints:  make(map[Word]struct{}),
	}
}

// Machine returns the engine's underlying machine state.
func (e *Engine) Machine() *Machine {
	return e.m
}

// Run executes until halt or a fault. The returned error is nil on a clean
// halt (opcode 0 or the Q debugger command) and a *Fault otherwise.
func (e *Engine) Run() error {
	for {
		halted, err := e.Step()
		if err != nil {
			return err
		}
		if halted {
			return nil
		}
	}
}

// Step executes exactly one instruction, honoring step mode and breakpoints
// before the fetch. It reports (true, nil) on a clean halt.
func (e *Engine) Step() (bool, error) {
	pc := e.m.PC
	if pc < 0 || int(pc) >= MemSize {
		return false, newFault(FaultAddressing, "program counter out of range: %d", pc)
	}

	if _, atBreakpoint := e.Breakpoints[Word(pc)]; atBreakpoint {
		e.stepMode = true
	}

	if e.stepMode {
		if err := e.promptStep(); err != nil {
			return false, err
		}
	}

	opcode := e.m.Memory[pc]
	inst, ok := Lookup(opcode)
	if !ok {
		return false, newFault(FaultDecode, "unsupported opcode: %d", opcode)
	}

	ops, err := e.operands(pc, inst.Arity)
	if err != nil {
		return false, err
	}

	next, err := inst.Exec(e, ops)
	if err != nil {
		return false, err
	}
	if next < 0 {
		return true, nil
	}
	e.m.PC = next
	return false, nil
}

// operands slices the Arity raw operand words following opcode at pc,
// faulting if the instruction runs past the end of memory.
func (e *Engine) operands(pc int32, arity int) ([]Word, error) {
	if arity == 0 {
		return nil, nil
	}
	if int(pc)+arity >= MemSize {
		return nil, newFault(FaultAddressing, "instruction operands out of range at %d", pc)
	}
	ops := make([]Word, arity)
	for i := 0; i < arity; i++ {
		ops[i] = e.m.Memory[int(pc)+1+i]
	}
	return ops, nil
}

// promptStep refreshes the panels and waits for a step-mode keystroke.
// Receiving c/C disables step mode; anything else consumes one instruction
// and remains in step mode (§4.4).
func (e *Engine) promptStep() error {
	e.display.Refresh(e.m, e.m.PC)
	c, err := e.display.ReadMain()
	if err != nil {
		return err
	}
	if c == 'c' || c == 'C' {
		e.stepMode = false
	}
	return nil
}

// readInput implements the in opcode's full multiplexing contract: it is
// the single point where debugger commands (Q, D, L, S, R) and ordinary
// program input share one blocking read (§4.4, §9).
func (e *Engine) readInput(dest Word) (int32, error) {
	for {
		e.display.Refresh(e.m, e.m.PC)
		c, err := e.display.ReadMain()
		if err != nil {
			return 0, err
		}

		switch c {
		case 'Q':
			return Halted, nil
		case 'D':
			if err := e.dumpDisassembly(); err != nil {
				return 0, err
			}
			continue
		case 'L':
			pc, err := e.loadSnapshot()
			if err != nil {
				return 0, err
			}
			return pc, nil
		case 'S':
			if err := e.saveSnapshot(); err != nil {
				return 0, err
			}
			continue
		case 'R':
			e.stepMode = true
			if err := e.m.write(dest, 0x0A); err != nil {
				return 0, err
			}
			return e.m.PC + 2, nil
		default:
			if err := e.m.write(dest, Word(c)); err != nil {
				return 0, err
			}
			return e.m.PC + 2, nil
		}
	}
}

func (e *Engine) dumpDisassembly() error {
	lines := Disassemble(&e.m.Memory, 0, MemSize)
	if err := writeDumpFile(e.DumpPath, lines); err != nil {
		slog.Error("disassembly dump failed", "class", FaultIO, "error", err)
		return newFault(FaultIO, "writing disassembly dump: %v", err)
	}
	return nil
}

func (e *Engine) saveSnapshot() error {
	if err := Save(e.SnapshotPath, e.m); err != nil {
		slog.Error("snapshot save failed", "class", FaultIO, "error", err)
		return newFault(FaultIO, "saving snapshot: %v", err)
	}
	return nil
}

func (e *Engine) loadSnapshot() (int32, error) {
	m, err := Load(e.SnapshotPath)
	if err != nil {
		slog.Error("snapshot load failed", "class", FaultIO, "error", err)
		return 0, newFault(FaultIO, "loading snapshot: %v", err)
	}
	*e.m = *m
	return e.m.PC, nil
}
