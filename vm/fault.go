package vm

import "fmt"

// FaultClass tags a Fault with one of the taxonomy categories from the
// error handling design: decode, addressing, stack, I/O, or usage faults.
// The class is attached to log records so tooling can group failures
// without parsing the message text.
type FaultClass string

const (
	FaultDecode     FaultClass = "decode"
	FaultAddressing FaultClass = "addressing"
	FaultStack      FaultClass = "stack"
	FaultIO         FaultClass = "io"
	FaultUsage      FaultClass = "usage"
)

// Fault is a terminal condition. The engine never attempts to recover from
// one; it logs the record and the process exits with a non-zero status.
type Fault struct {
	Class FaultClass
	Msg   string
}

func (f *Fault) Error() string {
	return string(f.Class) + ": " + f.Msg
}

func newFault(class FaultClass, format string, args ...any) *Fault {
	return &Fault{Class: class, Msg: fmt.Sprintf(format, args...)}
}

// AsFault reports whether err is a *Fault, unwrapping it if so.
func AsFault(err error) (*Fault, bool) {
	f, ok := err.(*Fault)
	return f, ok
}
