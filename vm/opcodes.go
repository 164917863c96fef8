package vm

// Instruction describes one opcode: its mnemonic, the number of operand
// words that follow it, and the function that performs its effect. Exec
// returns the next PC (Arity+1 past the current one for ordinary
// instructions, the target for jumps, call and ret, Halted for halt) and
// the engine stores it as the new PC. This is the table-driven
// replacement for the source's per-opcode bound methods (§9): dispatch is
// an array index, never a virtual call.
type Instruction struct {
	Name  string
	Arity int
	Exec  func(e *Engine, ops []Word) (int32, error)
}

// Halted is the sentinel PC value an Exec function returns to signal that
// the engine should stop running.
const Halted int32 = -1

// NumOpcodes is one past the highest defined opcode number.
const NumOpcodes = 22

// Table is indexed by opcode number. An index with a nil Exec is unsupported
// and any attempt to fetch it is a decode fault. It is filled from
// opcodeTable in init because the in handler reaches Lookup (and so Table)
// through the D command's disassembly dump, an initialization cycle.
var Table [NumOpcodes]Instruction

func init() {
	Table = opcodeTable
}

var opcodeTable = [NumOpcodes]Instruction{
	0:  {"halt", 0, execHalt},
	1:  {"set", 2, execSet},
	2:  {"push", 1, execPush},
	3:  {"pop", 1, execPop},
	4:  {"eq", 3, execEq},
	5:  {"gt", 3, execGt},
	6:  {"jmp", 1, execJmp},
	7:  {"jt", 2, execJt},
	8:  {"jf", 2, execJf},
	9:  {"add", 3, execAdd},
	10: {"mult", 3, execMult},
	11: {"mod", 3, execMod},
	12: {"and", 3, execAnd},
	13: {"or", 3, execOr},
	14: {"not", 2, execNot},
	15: {"rmem", 2, execRmem},
	16: {"wmem", 2, execWmem},
	17: {"call", 1, execCall},
	18: {"ret", 0, execRet},
	19: {"out", 1, execOut},
	20: {"in", 1, execIn},
	21: {"nop", 0, execNop},
}

// Lookup returns the instruction for opcode, and whether it is defined.
func Lookup(opcode Word) (Instruction, bool) {
	if int(opcode) >= NumOpcodes {
		return Instruction{}, false
	}
	inst := Table[opcode]
	if inst.Exec == nil {
		return Instruction{}, false
	}
	return inst, true
}

func execHalt(e *Engine, ops []Word) (int32, error) {
	return Halted, nil
}

func execSet(e *Engine, ops []Word) (int32, error) {
	v, err := e.m.read(ops[1])
	if err != nil {
		return 0, err
	}
	if err := e.m.write(ops[0], v); err != nil {
		return 0, err
	}
	return e.m.PC + 3, nil
}

func execPush(e *Engine, ops []Word) (int32, error) {
	v, err := e.m.read(ops[0])
	if err != nil {
		return 0, err
	}
	e.m.pushStack(v)
	return e.m.PC + 2, nil
}

func execPop(e *Engine, ops []Word) (int32, error) {
	v, err := e.m.popStack()
	if err != nil {
		return 0, err
	}
	if err := e.m.write(ops[0], v); err != nil {
		return 0, err
	}
	return e.m.PC + 2, nil
}

func execEq(e *Engine, ops []Word) (int32, error) {
	b, err := e.m.read(ops[1])
	if err != nil {
		return 0, err
	}
	c, err := e.m.read(ops[2])
	if err != nil {
		return 0, err
	}
	result := Word(0)
	if b == c {
		result = 1
	}
	if err := e.m.write(ops[0], result); err != nil {
		return 0, err
	}
	return e.m.PC + 4, nil
}

func execGt(e *Engine, ops []Word) (int32, error) {
	b, err := e.m.read(ops[1])
	if err != nil {
		return 0, err
	}
	c, err := e.m.read(ops[2])
	if err != nil {
		return 0, err
	}
	result := Word(0)
	if b > c {
		result = 1
	}
	if err := e.m.write(ops[0], result); err != nil {
		return 0, err
	}
	return e.m.PC + 4, nil
}

func execJmp(e *Engine, ops []Word) (int32, error) {
	a, err := e.m.read(ops[0])
	if err != nil {
		return 0, err
	}
	return int32(a), nil
}

func execJt(e *Engine, ops []Word) (int32, error) {
	a, err := e.m.read(ops[0])
	if err != nil {
		return 0, err
	}
	if a != 0 {
		b, err := e.m.read(ops[1])
		if err != nil {
			return 0, err
		}
		return int32(b), nil
	}
	return e.m.PC + 3, nil
}

func execJf(e *Engine, ops []Word) (int32, error) {
	a, err := e.m.read(ops[0])
	if err != nil {
		return 0, err
	}
	if a == 0 {
		b, err := e.m.read(ops[1])
		if err != nil {
			return 0, err
		}
		return int32(b), nil
	}
	return e.m.PC + 3, nil
}

func execAdd(e *Engine, ops []Word) (int32, error) {
	b, c, err := e.readPair(ops[1], ops[2])
	if err != nil {
		return 0, err
	}
	if err := e.m.write(ops[0], (b+c)%ModBase); err != nil {
		return 0, err
	}
	return e.m.PC + 4, nil
}

func execMult(e *Engine, ops []Word) (int32, error) {
	b, c, err := e.readPair(ops[1], ops[2])
	if err != nil {
		return 0, err
	}
	if err := e.m.write(ops[0], Word((uint32(b)*uint32(c))%ModBase)); err != nil {
		return 0, err
	}
	return e.m.PC + 4, nil
}

func execMod(e *Engine, ops []Word) (int32, error) {
	b, c, err := e.readPair(ops[1], ops[2])
	if err != nil {
		return 0, err
	}
	if c == 0 {
		return 0, newFault(FaultDecode, "mod by zero")
	}
	if err := e.m.write(ops[0], b%c); err != nil {
		return 0, err
	}
	return e.m.PC + 4, nil
}

func execAnd(e *Engine, ops []Word) (int32, error) {
	b, c, err := e.readPair(ops[1], ops[2])
	if err != nil {
		return 0, err
	}
	if err := e.m.write(ops[0], b&c); err != nil {
		return 0, err
	}
	return e.m.PC + 4, nil
}

func execOr(e *Engine, ops []Word) (int32, error) {
	b, c, err := e.readPair(ops[1], ops[2])
	if err != nil {
		return 0, err
	}
	if err := e.m.write(ops[0], b|c); err != nil {
		return 0, err
	}
	return e.m.PC + 4, nil
}

func execNot(e *Engine, ops []Word) (int32, error) {
	b, err := e.m.read(ops[1])
	if err != nil {
		return 0, err
	}
	if err := e.m.write(ops[0], (^b)&0x7FFF); err != nil {
		return 0, err
	}
	return e.m.PC + 3, nil
}

func execRmem(e *Engine, ops []Word) (int32, error) {
	addr, err := e.m.read(ops[1])
	if err != nil {
		return 0, err
	}
	v, err := e.m.fetchMem(addr)
	if err != nil {
		return 0, err
	}
	if err := e.m.write(ops[0], v); err != nil {
		return 0, err
	}
	return e.m.PC + 3, nil
}

func execWmem(e *Engine, ops []Word) (int32, error) {
	addr, err := e.m.read(ops[0])
	if err != nil {
		return 0, err
	}
	v, err := e.m.read(ops[1])
	if err != nil {
		return 0, err
	}
	if err := e.m.storeMem(addr, v); err != nil {
		return 0, err
	}
	return e.m.PC + 3, nil
}

func execCall(e *Engine, ops []Word) (int32, error) {
	a, err := e.m.read(ops[0])
	if err != nil {
		return 0, err
	}
	e.m.pushStack(Word(e.m.PC + 2))
	return int32(a), nil
}

func execRet(e *Engine, ops []Word) (int32, error) {
	v, err := e.m.popStack()
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

func execOut(e *Engine, ops []Word) (int32, error) {
	a, err := e.m.read(ops[0])
	if err != nil {
		return 0, err
	}
	e.display.WriteMain(byte(a))
	return e.m.PC + 2, nil
}

func execIn(e *Engine, ops []Word) (int32, error) {
	return e.readInput(ops[0])
}

func execNop(e *Engine, ops []Word) (int32, error) {
	return e.m.PC + 1, nil
}

// readPair resolves two operands in order, short-circuiting on the first
// fault. Most arithmetic opcodes need exactly this shape.
func (e *Engine) readPair(x, y Word) (Word, Word, error) {
	a, err := e.m.read(x)
	if err != nil {
		return 0, 0, err
	}
	b, err := e.m.read(y)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
