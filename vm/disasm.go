package vm

import (
	"fmt"
	"strings"
)

// Line is one disassembled instruction (or raw word), tagged with the
// address it starts at so callers can re-align output (e.g. highlight the
// current PC) without re-parsing the rendered string.
type Line struct {
	Addr   Word
	Text   string
	Length int // words consumed, including the opcode itself
}

// Disassemble performs a purely syntactic linear sweep of mem starting at
// start for length words: no control-flow analysis, matching §4.5. Any
// opcode unknown to the instruction table is emitted as its raw decimal
// value and advances by one word.
func Disassemble(mem *[MemSize]Word, start, length int) []Line {
	lines := make([]Line, 0, length)
	pc := start
	consumed := 0
	for consumed < length && pc < MemSize {
		line := disassembleOne(mem, pc)
		lines = append(lines, line)
		pc += line.Length
		consumed += line.Length
	}
	return lines
}

// disassembleOne renders the single instruction (or raw word) at pc.
func disassembleOne(mem *[MemSize]Word, pc int) Line {
	opcode := mem[pc]
	inst, ok := Lookup(opcode)
	if !ok {
		return Line{Addr: Word(pc), Text: fmt.Sprintf("%d", opcode), Length: 1}
	}

	operands := make([]string, inst.Arity)
	for i := 0; i < inst.Arity; i++ {
		idx := pc + 1 + i
		if idx >= MemSize {
			operands = operands[:i]
			break
		}
		operands[i] = formatOperand(mem[idx])
	}

	text := inst.Name
	if len(operands) > 0 {
		text += " " + strings.Join(operands, ", ")
	}
	return Line{Addr: Word(pc), Text: text, Length: inst.Arity + 1}
}

// formatOperand renders a raw operand word as a decimal literal, or as Rn
// when it names a register.
func formatOperand(w Word) string {
	if IsRegister(w) {
		return fmt.Sprintf("R%d", w-RegBase)
	}
	return fmt.Sprintf("%d", w)
}

// String renders a Line the way both the disassembly panel and the D/disasm
// dump do: "addr:: mnemonic operands".
func (l Line) String() string {
	return fmt.Sprintf("%d:: %s", l.Addr, l.Text)
}
