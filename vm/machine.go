package vm

// Machine holds the entire state of one running program: registers, stack,
// memory and the program counter. It replaces the source's module-level
// globals (registers/stack/memory) with a value threaded explicitly through
// the engine, so a Machine can be created, snapshotted and discarded without
// any other run's state leaking in.
type Machine struct {
	Registers [NumRegisters]Word
	Stack     []Word
	Memory    [MemSize]Word
	PC        int32
}

// NewMachine returns a Machine with zeroed registers and memory and an empty
// stack, PC at 0. Callers load an image or a snapshot into it before running.
func NewMachine() *Machine {
	return &Machine{}
}

// pushStack appends v to the top of the stack.
func (m *Machine) pushStack(v Word) {
	m.Stack = append(m.Stack, v)
}

// popStack removes and returns the top of the stack, faulting if empty.
func (m *Machine) popStack() (Word, error) {
	if len(m.Stack) == 0 {
		return 0, newFault(FaultStack, "pop/ret with empty stack")
	}
	top := len(m.Stack) - 1
	v := m.Stack[top]
	m.Stack = m.Stack[:top]
	return v, nil
}

// fetchMem reads memory[addr], faulting if addr is out of range. Unlike the
// source, which indexes the Python list without a bounds check, this always
// range-checks rmem/wmem and instruction fetch alike (§9 resolved ambiguity).
func (m *Machine) fetchMem(addr Word) (Word, error) {
	if int(addr) >= MemSize {
		return 0, newFault(FaultAddressing, "memory read out of range: %d", addr)
	}
	return m.Memory[addr], nil
}

// storeMem writes v to memory[addr], faulting if addr is out of range.
func (m *Machine) storeMem(addr, v Word) error {
	if int(addr) >= MemSize {
		return newFault(FaultAddressing, "memory write out of range: %d", addr)
	}
	m.Memory[addr] = v
	return nil
}
