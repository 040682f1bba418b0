// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/tliron/commonlog"

	"latte/internal/errors"
	"latte/internal/ir"
	"latte/internal/parser"
	"latte/internal/semantic"
)

// The driver reads a Latte program from stdin. With no arguments it checks
// the program and pretty-prints the simplified AST; with `c` it emits LLVM
// IR, optionally skipping the SSA optimizer when `noopts` follows. Any
// compiler error prints `ERROR` and the message to stderr and exits 1.
func main() {
	if v := os.Getenv("LATC_VERBOSE"); v != "" {
		if verbosity, err := strconv.Atoi(v); err == nil {
			commonlog.Configure(verbosity, nil)
		}
	}

	emit := len(os.Args) > 1 && os.Args[1] == "c"
	noopts := len(os.Args) > 2 && os.Args[2] == "noopts"

	source, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read input: %s\n", err)
		os.Exit(1)
	}

	reporter := errors.NewReporter(os.Stderr)

	program, perr := parser.ParseSource("stdin", string(source))
	if perr != nil {
		reporter.ReportError(perr)
		os.Exit(1)
	}

	if cerr := semantic.NewAnalyzer().Check(program); cerr != nil {
		reporter.ReportError(cerr)
		os.Exit(1)
	}

	if !emit {
		reporter.ReportOK()
		fmt.Println(program)
		return
	}

	module := ir.Translate(program)
	if !noopts {
		ir.Optimize(module)
	}
	fmt.Println(ir.Print(module))
}
