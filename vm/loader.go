package vm

import (
	"encoding/binary"
	"io"
	"os"
)

// LoadImage reads path as a sequence of little-endian 16-bit words, starting
// at address 0, and zero-fills the remainder of the address space (§6). The
// number of words loaded is ceil(filesize/2); a trailing odd byte is padded
// with a zero high byte, matching the source's struct.iter_unpack behavior
// on a well-formed even-length image (odd-length images are not expected by
// the ISA but are tolerated rather than rejected).
func LoadImage(path string) (*Machine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newFault(FaultIO, "opening image %s: %v", path, err)
	}
	defer f.Close()

	m := NewMachine()
	addr := 0
	buf := make([]byte, 2)
	for addr < MemSize {
		n, err := io.ReadFull(f, buf)
		if n == 0 {
			break
		}
		if n == 1 {
			buf[1] = 0
		}
		m.Memory[addr] = binary.LittleEndian.Uint16(buf)
		addr++
		if err != nil {
			break
		}
	}
	return m, nil
}
