package commands

import (
	"flag"
	"fmt"
	"io"

	"github.com/mash-protocol/regtokens/pkg/generate"
)

// GenerateOptions configures the generate and check commands.
type GenerateOptions struct {
	Manifest string
	Verbose  bool
}

// RunGenerate runs the generate command.
func RunGenerate(args []string, stdout, stderr io.Writer) int {
	opts, err := parseGenerateArgs("generate", args)
	if err != nil {
		if err == flag.ErrHelp {
			printGenerateUsage(stdout)
			return exitSuccess
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	logger := newLogger(stderr, opts.Verbose)
	plan, err := loadPlan(opts.Manifest, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	res, err := generate.Run(plan, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if err := generate.Write(res.Files, logger); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	removed, err := generate.Prune(res.Files, res.Root, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	c := res.Capability
	fmt.Fprintf(stdout, "Generated %d files: %s with %d fields (chain %s)\n",
		len(res.Files), c.Struct.Name, len(c.Fields), c.ChainID)
	if len(removed) > 0 {
		fmt.Fprintf(stdout, "Removed %d orphaned files\n", len(removed))
	}
	return exitSuccess
}

// RunCheck runs the check command. It exits with the validation code when
// any generated file is missing, out of date or orphaned.
func RunCheck(args []string, stdout, stderr io.Writer) int {
	opts, err := parseGenerateArgs("check", args)
	if err != nil {
		if err == flag.ErrHelp {
			printCheckUsage(stdout)
			return exitSuccess
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	logger := newLogger(stderr, opts.Verbose)
	plan, err := loadPlan(opts.Manifest, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	res, err := generate.Run(plan, nil)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	result, err := generate.Check(res.Files, res.Root, nil)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	if result.UpToDate {
		fmt.Fprintf(stdout, "OK: %d generated files are up to date\n", len(res.Files))
		return exitSuccess
	}
	if len(result.Stale) > 0 {
		fmt.Fprintf(stdout, "STALE: %d of %d generated files differ\n", len(result.Stale), len(res.Files))
		for _, path := range result.Stale {
			fmt.Fprintf(stdout, "  %s\n", path)
		}
	}
	if len(result.Orphaned) > 0 {
		fmt.Fprintf(stdout, "ORPHANED: %d generated files are no longer produced\n", len(result.Orphaned))
		for _, path := range result.Orphaned {
			fmt.Fprintf(stdout, "  %s\n", path)
		}
	}
	fmt.Fprintln(stdout, "Run 'regtokens generate' to update them.")
	return exitValidation
}

func parseGenerateArgs(name string, args []string) (GenerateOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := GenerateOptions{}
	manifestFlags(fs, &opts.Manifest, &opts.Verbose)

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, nil
}

func printGenerateUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: regtokens generate [options]

Options:
  -m, --manifest  Manifest file (default regtokens.yaml)
  -v, --verbose   Log every generation step

Examples:
  regtokens generate
  regtokens generate -m board/regtokens.yaml -v`)
}

func printCheckUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: regtokens check [options]

Regenerates in memory and compares with the files on disk.
Exits with status 2 when any file is missing or differs, or when a
generated file under the output directory is no longer produced.

Options:
  -m, --manifest  Manifest file (default regtokens.yaml)
  -v, --verbose   Log every step`)
}
