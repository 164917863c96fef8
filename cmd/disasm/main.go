// Command disasm loads a binary image or snapshot and writes its full
// linear disassembly to stdout or a file, independent of the in-VM D
// debugger command (§4.9).
package main

import (
	"fmt"
	"os"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/synvm/vm"
)

func main() {
	optSnapshot := getopt.BoolLong("snapshot", 's', "Treat the input file as a snapshot rather than a raw image")
	optOut := getopt.StringLong("out", 'o', "", "Write disassembly to this file instead of stdout")
	optHelp := getopt.BoolLong("help", 'h', "Show usage")
	getopt.Parse()

	if *optHelp || len(getopt.Args()) != 1 {
		getopt.Usage()
		os.Exit(0)
	}

	path := getopt.Args()[0]
	var m *vm.Machine
	var err error
	if *optSnapshot {
		m, err = vm.Load(path)
	} else {
		m, err = vm.LoadImage(path)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *optOut != "" {
		if err := vm.DumpDisassembly(&m.Memory, *optOut); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	for _, line := range vm.Disassemble(&m.Memory, 0, vm.MemSize) {
		fmt.Println(line.String())
	}
}
