// regtokens generates register block packages and the register capability
// struct from .regs specifications.
package main

import (
	"fmt"
	"os"

	"github.com/mash-protocol/regtokens/cmd/regtokens/commands"
	"github.com/mash-protocol/regtokens/pkg/version"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitCommandError)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var exitCode int
	switch cmd {
	case "generate", "gen":
		exitCode = commands.RunGenerate(args, os.Stdout, os.Stderr)
	case "check":
		exitCode = commands.RunCheck(args, os.Stdout, os.Stderr)
	case "watch":
		exitCode = commands.RunWatch(args, os.Stdout, os.Stderr)
	case "export":
		exitCode = commands.RunExport(args, os.Stdout, os.Stderr)
	case "names":
		exitCode = commands.RunNames(args, os.Stdout, os.Stderr)
	case "help", "-h", "--help":
		printUsage()
		exitCode = exitSuccess
	case "version", "--version":
		fmt.Printf("%s (format %s)\n", version.Generator, version.Current)
		exitCode = exitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		exitCode = exitCommandError
	}

	os.Exit(exitCode)
}

func printUsage() {
	fmt.Println(`regtokens - register capability generator

Usage:
  regtokens <command> [options]

Commands:
  generate   Generate block packages and the capability struct
  check      Verify generated files are up to date
  watch      Regenerate when the manifest or a specification changes
  export     Write a link artifact for one layer
  names      Show the names derived for a block and register

Options:
  -h, --help     Show this help message
  --version      Show version information

Examples:
  regtokens generate -m regtokens.yaml
  regtokens check
  regtokens export -spec chip.regs -scope example.com/mcu
  regtokens names GPIOA ODR

For command-specific help, run:
  regtokens <command> --help`)
}
