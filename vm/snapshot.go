package vm

import (
	"encoding/binary"
	"os"
)

// Snapshot binary layout (§4.6), all fields little-endian:
//
//	magic      uint32   snapshotMagic
//	version    uint16   snapshotVersion
//	stackLen   uint16   number of words on the stack
//	registers  [8]uint16
//	stack      [stackLen]uint16   deepest entry first (push order)
//	pc         uint16
//	memory     [0x8000]uint16
//
// This mirrors the versioned fixed-layout encoding used elsewhere in the
// corpus for CPU state serialization: a version tag checked on load, the
// register file, then the remaining scalars, with a version mismatch
// reported as an error rather than silently misreading the buffer.
const (
	snapshotMagic   uint32 = 0x53595643 // "SYVC"
	snapshotVersion uint16 = 1

	snapshotHeaderSize = 4 + 2 + 2
)

// Save fully rewrites path with a snapshot of m (§4.6, §5: snapshot writes
// are whole-file rewrites, no partial-write recovery).
func Save(path string, m *Machine) error {
	stackLen := len(m.Stack)
	size := snapshotHeaderSize + NumRegisters*2 + stackLen*2 + 2 + MemSize*2
	buf := make([]byte, size)
	off := 0

	binary.LittleEndian.PutUint32(buf[off:], snapshotMagic)
	off += 4
	binary.LittleEndian.PutUint16(buf[off:], snapshotVersion)
	off += 2
	binary.LittleEndian.PutUint16(buf[off:], uint16(stackLen))
	off += 2

	for _, r := range m.Registers {
		binary.LittleEndian.PutUint16(buf[off:], r)
		off += 2
	}
	for _, s := range m.Stack {
		binary.LittleEndian.PutUint16(buf[off:], s)
		off += 2
	}
	binary.LittleEndian.PutUint16(buf[off:], Word(m.PC))
	off += 2
	for _, w := range m.Memory {
		binary.LittleEndian.PutUint16(buf[off:], w)
		off += 2
	}

	return os.WriteFile(path, buf, 0o644)
}

// Load reads a snapshot previously written by Save, returning a fresh
// Machine that replaces any prior run's state atomically: the returned
// value shares nothing with whatever Machine the caller had before loading
// (§4.6: "must not leak prior-run residuals").
func Load(path string) (*Machine, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, newFault(FaultIO, "reading snapshot %s: %v", path, err)
	}
	if len(buf) < snapshotHeaderSize {
		return nil, newFault(FaultIO, "snapshot %s truncated", path)
	}

	off := 0
	magic := binary.LittleEndian.Uint32(buf[off:])
	off += 4
	if magic != snapshotMagic {
		return nil, newFault(FaultIO, "snapshot %s has bad magic %#08x", path, magic)
	}
	version := binary.LittleEndian.Uint16(buf[off:])
	off += 2
	if version != snapshotVersion {
		return nil, newFault(FaultIO, "snapshot %s has unsupported version %d", path, version)
	}
	stackLen := int(binary.LittleEndian.Uint16(buf[off:]))
	off += 2

	want := snapshotHeaderSize + NumRegisters*2 + stackLen*2 + 2 + MemSize*2
	if len(buf) != want {
		return nil, newFault(FaultIO, "snapshot %s has wrong size: got %d want %d", path, len(buf), want)
	}

	m := NewMachine()
	for i := 0; i < NumRegisters; i++ {
		m.Registers[i] = binary.LittleEndian.Uint16(buf[off:])
		off += 2
	}
	m.Stack = make([]Word, stackLen)
	for i := 0; i < stackLen; i++ {
		m.Stack[i] = binary.LittleEndian.Uint16(buf[off:])
		off += 2
	}
	m.PC = int32(binary.LittleEndian.Uint16(buf[off:]))
	off += 2
	for i := 0; i < MemSize; i++ {
		m.Memory[i] = binary.LittleEndian.Uint16(buf[off:])
		off += 2
	}

	return m, nil
}
