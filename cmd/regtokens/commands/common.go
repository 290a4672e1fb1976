// Package commands implements the regtokens subcommands.
package commands

import (
	"flag"
	"io"
	"log/slog"

	"github.com/mash-protocol/regtokens/pkg/log"
	"github.com/mash-protocol/regtokens/pkg/manifest"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
	exitValidation   = 2
)

// DefaultManifest is the manifest file used when -manifest is not given.
const DefaultManifest = "regtokens.yaml"

func newLogger(w io.Writer, verbose bool) log.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return log.NewSlogAdapter(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func loadPlan(path string, logger log.Logger) (*manifest.Plan, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	return manifest.Resolve(m, logger)
}

// manifestFlags registers the flags shared by generate and check.
func manifestFlags(fs *flag.FlagSet, path *string, verbose *bool) {
	fs.StringVar(path, "manifest", DefaultManifest, "Path to the manifest file")
	fs.StringVar(path, "m", DefaultManifest, "Path to the manifest file (shorthand)")
	fs.BoolVar(verbose, "verbose", false, "Log every generation step")
	fs.BoolVar(verbose, "v", false, "Log every generation step (shorthand)")
	fs.Usage = func() {}
}
