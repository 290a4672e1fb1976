package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mash-protocol/regtokens/pkg/link"
	"github.com/mash-protocol/regtokens/pkg/specparse"
)

// ExportOptions configures the export command.
type ExportOptions struct {
	Spec   string
	Scope  string
	Output string
}

// RunExport writes the link artifact of one layer.
func RunExport(args []string, stdout, stderr io.Writer) int {
	opts, err := parseExportArgs(args)
	if err != nil {
		if err == flag.ErrHelp {
			printExportUsage(stdout)
			return exitSuccess
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		printExportUsage(stderr)
		return exitCommandError
	}

	spec, err := specparse.ParseFile(opts.Spec)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitValidation
	}
	l := link.Export(spec, opts.Scope)
	if err := link.Write(opts.Output, l); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	fmt.Fprintf(stdout, "Exported %s (%d fields) to %s\n", l.Generator, len(l.Fields), opts.Output)
	return exitSuccess
}

func parseExportArgs(args []string) (ExportOptions, error) {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	opts := ExportOptions{}

	fs.StringVar(&opts.Spec, "spec", "", "Specification file")
	fs.StringVar(&opts.Scope, "scope", "", "Import path the layer is declared at")
	fs.StringVar(&opts.Output, "o", "", "Output file (default: spec name with .rtl)")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.Spec == "" || opts.Scope == "" {
		return opts, errors.New("-spec and -scope are required")
	}
	if opts.Output == "" {
		opts.Output = strings.TrimSuffix(opts.Spec, filepath.Ext(opts.Spec)) + link.Ext
	}
	return opts, nil
}

func printExportUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: regtokens export -spec <file.regs> -scope <import path> [-o <file.rtl>]

Writes a link artifact so the layer can be chained from other builds.

Examples:
  regtokens export -spec chip.regs -scope example.com/mcu`)
}
