/*
   synvm - 16-bit value model.

   Copyright 2026, synvm contributors.

   Permission is hereby granted, free of charge, to any person obtaining a
   copy of this software and associated documentation files (the "Software"),
   to deal in the Software without restriction, including without limitation
   the rights to use, copy, modify, merge, publish, distribute, sublicense,
   and/or sell copies of the Software, and to permit persons to whom the
   Software is furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
   THE AUTHORS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*/

package vm

// Word is a 16-bit value as stored in memory or on the stack. Only the low
// 15 bits are ever meaningful; arithmetic results are masked before storage.
type Word = uint16

const (
	// ModBase is the modulus register values and arithmetic results are
	// held under.
	ModBase = 0x8000

	// RegBase is the first value handle that names a register.
	RegBase = 0x8000
	// RegLimit is one past the last valid register handle.
	RegLimit = 0x8008
	// NumRegisters is the number of general purpose registers.
	NumRegisters = 8
	// MemSize is the number of addressable words.
	MemSize = 0x8000
)

// IsRegister reports whether w names a register rather than a literal.
func IsRegister(w Word) bool {
	return w >= RegBase && w < RegLimit
}

// IsInvalidHandle reports whether w is neither a literal nor a valid register.
func IsInvalidHandle(w Word) bool {
	return w >= RegLimit
}

// read decodes w as either a literal value or the contents of the register
// it names. It is the sole primitive for operand fetch (§4.1).
func (m *Machine) read(w Word) (Word, error) {
	switch {
	case w < RegBase:
		return w, nil
	case w < RegLimit:
		return m.Registers[w-RegBase], nil
	default:
		return 0, newFault(FaultDecode, "invalid value handle %#04x", w)
	}
}

// write stores v, masked to 15 bits, into the register named by dest. dest
// must itself be a register handle; writing through a literal is fatal.
func (m *Machine) write(dest, v Word) error {
	if !IsRegister(dest) {
		return newFault(FaultAddressing, "write to non-register destination %#04x", dest)
	}
	m.Registers[dest-RegBase] = v % ModBase
	return nil
}
