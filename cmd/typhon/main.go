// Package main is the entrypoint to the typhon model checker. It loads YAML
// model files, resolves them against the core package and reports the
// diagnostics found. An interactive mode allows querying the resolved model.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/tanema/typhon/src/conf"
	"github.com/tanema/typhon/src/loader"
	"github.com/tanema/typhon/src/resolve"
	"github.com/tanema/typhon/src/types"
)

var (
	showVersion bool
	interactive bool
	debug       bool
)

func init() {
	flag.BoolVar(&showVersion, "v", false, "show version information")
	flag.BoolVar(&interactive, "i", false, "enter interactive mode after loading the models")
	flag.BoolVar(&debug, "d", false, "log resolution steps to stderr")
}

func main() {
	flag.Usage = printUsage
	flag.Parse()

	var logger *slog.Logger
	if debug {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	prog := types.NewProgram(logger)

	if showVersion {
		printVersion()
	}
	args := flag.Args()
	if len(args) == 0 {
		if !showVersion {
			runREPL(prog, prog.Core)
		}
		return
	}

	pkgs := []*types.Package{}
	for _, path := range args {
		loaded, err := loader.LoadFile(prog, path)
		checkErr(err)
		pkgs = append(pkgs, loaded...)
	}
	for _, pkg := range pkgs {
		resolve.Package(pkg)
	}
	for _, err := range prog.Errors.Errors() {
		fmt.Fprintln(os.Stderr, err)
	}

	if interactive {
		var lookup types.MemberAccess = prog.Core
		if len(pkgs) > 0 {
			lookup = pkgs[0]
		}
		runREPL(prog, lookup)
	} else if prog.Errors.HasErrors() {
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Fprintf(os.Stderr, "%v\n", conf.FullVersion())
}

func printUsage() {
	printVersion()
	fmt.Fprint(os.Stderr, "\nUsage: typhon [options] [model.yaml ...]\n")
	flag.PrintDefaults()
}

func checkErr(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func runREPL(prog *types.Program, lookup types.MemberAccess) {
	printVersion()
	fmt.Fprint(os.Stderr, "Query with A, A <: B or A | B. Press ctrl-c to quit.\n")
	checkErr(repl(prog, lookup))
}
