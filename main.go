/*
 * synvm - main process.
 *
 * Copyright 2026, synvm contributors.
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"log/slog"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/synvm/debug"
	"github.com/rcornwell/synvm/logging"
	"github.com/rcornwell/synvm/vm"
)

func main() {
	os.Exit(run())
}

func run() int {
	optResume := getopt.BoolLong("resume", 's', "Resume from the save-state snapshot instead of loading an image")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file path")
	optSavePath := getopt.StringLong("save", 0, "savestate.bin", "Snapshot file path")
	optDumpPath := getopt.StringLong("dump", 0, "dump.txt", "Disassembly dump file path")
	optHeadless := getopt.BoolLong("headless", 0, "Run without a terminal display, using stdin/stdout")
	optHelp := getopt.BoolLong("help", 'h', "Show usage")
	optBreakpoints := getopt.ListLong("breakpoint", 'b', "Seed a breakpoint address (repeatable)")

	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		return 0
	}

	var logFile *os.File
	if *optLogFile != "" {
		f, err := os.Create(*optLogFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "opening log file:", err)
			return 1
		}
		defer f.Close()
		logFile = f
	}
	logger := logging.New(logFile)
	logger.Info("synvm started")

	args := getopt.Args()
	var m *vm.Machine
	var err error
	switch {
	case *optResume:
		logger.Info("resuming from snapshot", "path", *optSavePath)
		m, err = vm.Load(*optSavePath)
	case len(args) == 1:
		logger.Info("loading image", "path", args[0])
		m, err = vm.LoadImage(args[0])
	default:
		logger.Error("fault", "class", vm.FaultUsage, "message", "usage: synvm <image> | synvm --resume")
		return 1
	}
	if err != nil {
		logFault(logger, err)
		return 1
	}

	var display vm.Display
	if *optHeadless {
		display = debug.NewHeadless(os.Stdout, os.Stdin)
	} else {
		display, err = debug.NewTerminal()
		if err != nil {
			logFault(logger, err)
			return 1
		}
	}
	defer display.Close()

	engine := vm.NewEngine(m, display, *optSavePath, *optDumpPath)
	for _, b := range *optBreakpoints {
		addr, err := strconv.ParseUint(b, 0, 16)
		if err != nil {
			fmt.Fprintln(os.Stderr, "invalid breakpoint address:", b)
			return 1
		}
		engine.Breakpoints[vm.Word(addr)] = struct{}{}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan error, 1)
	go func() { done <- engine.Run() }()

	select {
	case <-sigChan:
		logger.Info("received shutdown signal")
		return 0
	case runErr := <-done:
		if runErr != nil {
			logFault(logger, runErr)
			return 1
		}
	}

	logger.Info("synvm halted")
	return 0
}

func logFault(logger *slog.Logger, err error) {
	if f, ok := vm.AsFault(err); ok {
		logger.Error("fault", "class", f.Class, "message", f.Msg)
		return
	}
	logger.Error("error", "message", err.Error())
}
