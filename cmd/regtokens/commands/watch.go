package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mash-protocol/regtokens/pkg/generate"
	"github.com/mash-protocol/regtokens/pkg/log"
	"github.com/mash-protocol/regtokens/pkg/manifest"
)

// WatchOptions configures the watch command.
type WatchOptions struct {
	GenerateOptions
	Debounce time.Duration
}

// RunWatch generates once and then regenerates whenever the manifest or
// a layer source changes, until interrupted.
func RunWatch(args []string, stdout, stderr io.Writer) int {
	opts, err := parseWatchArgs(args)
	if err != nil {
		if err == flag.ErrHelp {
			printWatchUsage(stdout)
			return exitSuccess
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runWatch(ctx, opts, stdout, stderr)
}

func runWatch(ctx context.Context, opts WatchOptions, stdout, stderr io.Writer) int {
	logger := newLogger(stderr, opts.Verbose)

	plan, err := regenerate(opts.Manifest, logger, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	inputs := generate.Inputs(opts.Manifest, plan)
	w, err := generate.NewWatcher(inputs, opts.Debounce, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer w.Close()

	fmt.Fprintf(stdout, "Watching %d files, press Ctrl+C to stop\n", len(inputs))
	if err := w.Run(ctx, func() error {
		_, err := regenerate(opts.Manifest, logger, stdout)
		return err
	}); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	return exitSuccess
}

// regenerate reloads the manifest, writes every generated file and
// removes the orphaned ones.
func regenerate(path string, logger log.Logger, stdout io.Writer) (*manifest.Plan, error) {
	plan, err := loadPlan(path, logger)
	if err != nil {
		return nil, err
	}
	res, err := generate.Run(plan, logger)
	if err != nil {
		return nil, err
	}
	if err := generate.Write(res.Files, logger); err != nil {
		return nil, err
	}
	if _, err := generate.Prune(res.Files, res.Root, logger); err != nil {
		return nil, err
	}
	fmt.Fprintf(stdout, "Generated %d files: %s with %d fields\n",
		len(res.Files), res.Capability.Struct.Name, len(res.Capability.Fields))
	return plan, nil
}

func parseWatchArgs(args []string) (WatchOptions, error) {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := WatchOptions{}
	manifestFlags(fs, &opts.Manifest, &opts.Verbose)
	fs.DurationVar(&opts.Debounce, "debounce", generate.DefaultDebounce, "Quiet period before regenerating")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, nil
}

func printWatchUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: regtokens watch [options]

Generates, then regenerates whenever the manifest or a layer source
changes. Layers added to the manifest are picked up on restart.

Options:
  -m, --manifest  Manifest file (default regtokens.yaml)
  -v, --verbose   Log every generation step
  --debounce      Quiet period before regenerating (default 200ms)`)
}
