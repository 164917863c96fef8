package vm_test

import (
	"path/filepath"
	"testing"

	"github.com/rcornwell/synvm/vm"
)

func TestSnapshotRoundTrip(t *testing.T) {
	m := vm.NewMachine()
	m.Registers[0] = 5
	m.Registers[7] = 0x7FFF
	m.Stack = []vm.Word{1, 2, 3}
	m.PC = 42
	m.Memory[100] = 0xBEEF & 0x7FFF

	path := filepath.Join(t.TempDir(), "snap.bin")
	if err := vm.Save(path, m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := vm.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Registers != m.Registers {
		t.Errorf("registers = %v, want %v", got.Registers, m.Registers)
	}
	if len(got.Stack) != len(m.Stack) {
		t.Fatalf("stack len = %d, want %d", len(got.Stack), len(m.Stack))
	}
	for i := range m.Stack {
		if got.Stack[i] != m.Stack[i] {
			t.Errorf("stack[%d] = %d, want %d", i, got.Stack[i], m.Stack[i])
		}
	}
	if got.PC != m.PC {
		t.Errorf("PC = %d, want %d", got.PC, m.PC)
	}
	if got.Memory != m.Memory {
		t.Errorf("memory mismatch at snapshot round trip")
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bin")
	m := vm.NewMachine()
	if err := vm.Save(path, m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	buf := readFile(t, path)
	buf[0] ^= 0xFF
	writeFile(t, path, buf)

	_, err := vm.Load(path)
	f, ok := vm.AsFault(err)
	if !ok {
		t.Fatalf("expected a Fault, got %v", err)
	}
	if f.Class != vm.FaultIO {
		t.Errorf("class = %v, want %v", f.Class, vm.FaultIO)
	}
}

func TestLoadRejectsTruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.bin")
	writeFile(t, path, []byte{1, 2, 3})

	_, err := vm.Load(path)
	if _, ok := vm.AsFault(err); !ok {
		t.Fatalf("expected a Fault, got %v", err)
	}
}
