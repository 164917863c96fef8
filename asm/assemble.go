// Package asm is a small two-pass mnemonic assembler for the VM's
// instruction set, sharing vm.Table for opcode names and arities so its
// output is exactly what vm.Disassemble would read back (§4.9). It exists to
// build test fixtures and disassemble/reassemble round trips without
// hand-encoding raw word images.
package asm

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rcornwell/synvm/vm"
)

// mnemonicToOpcode is the inverse of vm.Table, built once from the shared
// instruction table so the two can never drift apart.
var mnemonicToOpcode = func() map[string]vm.Word {
	m := make(map[string]vm.Word, vm.NumOpcodes)
	for op, inst := range vm.Table {
		if inst.Exec != nil {
			m[inst.Name] = vm.Word(op)
		}
	}
	return m
}()

type instrLine struct {
	mnemonic string
	operands []string // raw operand tokens, resolved in pass two
}

// Assemble reads source (one mnemonic/operand or .word/label-definition line
// per input line) and returns the assembled image as a stream of words
// ready for vm.LoadImage's byte layout.
func Assemble(source string) ([]vm.Word, error) {
	labels := map[string]vm.Word{}
	var program []instrLine
	var rawWords [][]string // word-directive groups, indexed alongside program by sentinel mnemonic ".word"

	addr := vm.Word(0)
	scanner := bufio.NewScanner(strings.NewReader(source))
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := stripComment(scanner.Text())
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasSuffix(line, ":") {
			label := strings.TrimSuffix(line, ":")
			if _, dup := labels[label]; dup {
				return nil, fmt.Errorf("line %d: duplicate label %q", lineNo, label)
			}
			labels[label] = addr
			continue
		}

		fields := strings.SplitN(line, " ", 2)
		mnemonic := strings.ToLower(fields[0])
		var operands []string
		if len(fields) == 2 {
			for _, op := range strings.Split(fields[1], ",") {
				operands = append(operands, strings.TrimSpace(op))
			}
		}

		if mnemonic == ".word" {
			program = append(program, instrLine{mnemonic: ".word", operands: operands})
			rawWords = append(rawWords, operands)
			addr += vm.Word(len(operands))
			continue
		}

		opcode, ok := mnemonicToOpcode[mnemonic]
		if !ok {
			return nil, fmt.Errorf("line %d: unknown mnemonic %q", lineNo, mnemonic)
		}
		inst := vm.Table[opcode]
		if len(operands) != inst.Arity {
			return nil, fmt.Errorf("line %d: %s wants %d operands, got %d", lineNo, mnemonic, inst.Arity, len(operands))
		}
		program = append(program, instrLine{mnemonic: mnemonic, operands: operands})
		addr += vm.Word(inst.Arity + 1)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	var out []vm.Word
	for _, stmt := range program {
		if stmt.mnemonic == ".word" {
			for _, op := range stmt.operands {
				w, err := resolveOperand(op, labels)
				if err != nil {
					return nil, err
				}
				out = append(out, w)
			}
			continue
		}
		opcode := mnemonicToOpcode[stmt.mnemonic]
		out = append(out, opcode)
		for _, op := range stmt.operands {
			w, err := resolveOperand(op, labels)
			if err != nil {
				return nil, err
			}
			out = append(out, w)
		}
	}
	return out, nil
}

// resolveOperand decodes a register (r0-r7), a decimal or 0x-prefixed hex
// literal, or a label reference.
func resolveOperand(tok string, labels map[string]vm.Word) (vm.Word, error) {
	lower := strings.ToLower(tok)
	if len(lower) == 2 && lower[0] == 'r' && lower[1] >= '0' && lower[1] <= '7' {
		return vm.RegBase + vm.Word(lower[1]-'0'), nil
	}
	if addr, ok := labels[tok]; ok {
		return addr, nil
	}
	n, err := strconv.ParseUint(tok, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("operand %q is neither a register, a known label, nor a literal", tok)
	}
	return vm.Word(n), nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, ';'); i >= 0 {
		return line[:i]
	}
	return line
}

// WriteImage writes words to path in the little-endian format vm.LoadImage
// reads, one word per two bytes.
func WriteImage(path string, words []vm.Word) error {
	buf := make([]byte, len(words)*2)
	for i, w := range words {
		binary.LittleEndian.PutUint16(buf[i*2:], w)
	}
	return os.WriteFile(path, buf, 0o644)
}
