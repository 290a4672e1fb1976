// Package generate turns a resolved plan into formatted files on disk and
// checks existing files against a fresh generation.
package generate

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/mash-protocol/regtokens/pkg/compose"
	"github.com/mash-protocol/regtokens/pkg/emit"
	"github.com/mash-protocol/regtokens/pkg/log"
	"github.com/mash-protocol/regtokens/pkg/manifest"
)

// File is a generated file and its destination.
type File struct {
	// Path is the destination on disk.
	Path       string
	ImportPath string
	// Source is the unformatted generator output.
	Source []byte
}

// Result is the output of one generation run.
type Result struct {
	// Root is the output directory of the manifest.
	Root       string
	Files      []File
	Capability *compose.Capability
}

// Run emits the block packages of every specification layer of plan and
// the capability struct. Link layers are built elsewhere and are not
// emitted again.
func Run(plan *manifest.Plan, logger log.Logger) (*Result, error) {
	logger = log.Or(logger)
	m := plan.Manifest
	res := &Result{Root: m.OutputDir()}

	add := func(f *emit.File) error {
		dest, ok := m.FilePath(f.ImportPath, f.Name)
		if !ok {
			return fmt.Errorf("package %s is outside module %s", f.ImportPath, m.Module)
		}
		res.Files = append(res.Files, File{Path: dest, ImportPath: f.ImportPath, Source: f.Source})
		return nil
	}

	for _, l := range plan.Layers {
		if l.Spec == nil {
			continue
		}
		files, err := emit.Layer(l.Spec, l.Scope, logger)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if err := add(f); err != nil {
				return nil, fmt.Errorf("layer %s: %w", l.Name(), err)
			}
		}
	}

	if len(plan.Chain) == 0 {
		return nil, errors.New("plan has no chain")
	}
	c, err := plan.Chain[0].Gen.Invoke(plan.Invocation)
	if err != nil {
		return nil, err
	}
	if err := add(c.File); err != nil {
		return nil, fmt.Errorf("capability %s: %w", c.Struct.Name, err)
	}
	res.Capability = c
	return res, nil
}

var formatOptions = &imports.Options{
	Comments:   true,
	TabIndent:  true,
	TabWidth:   8,
	FormatOnly: true,
}

// Format returns the gofmt-formatted source of f.
func Format(f File) ([]byte, error) {
	out, err := imports.Process(f.Path, f.Source, formatOptions)
	if err != nil {
		return nil, fmt.Errorf("goimports %s: %w", filepath.Base(f.Path), err)
	}
	return out, nil
}

// Write formats and writes every file, creating directories as needed.
// A file that fails to format is written unformatted next to its
// destination with a .broken suffix.
func Write(files []File, logger log.Logger) error {
	logger = log.Or(logger)
	for _, f := range files {
		if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
			return err
		}
		formatted, err := Format(f)
		if err != nil {
			_ = os.WriteFile(f.Path+".broken", f.Source, 0o644)
			return err
		}
		if err := os.WriteFile(f.Path, formatted, 0o644); err != nil {
			return err
		}
		logger.Log(log.Event{Kind: log.KindFileWritten, File: f.Path, Count: len(formatted)})
	}
	return nil
}

// CheckResult lists generated files that differ from the files on disk.
type CheckResult struct {
	UpToDate bool
	// Stale holds the destination paths of files that are missing or
	// differ.
	Stale []string
	// Orphaned holds generated files under the output root that the run
	// no longer produces.
	Orphaned []string
}

// Check compares the formatted files with the files on disk and lists
// the orphaned files under root.
func Check(files []File, root string, logger log.Logger) (*CheckResult, error) {
	logger = log.Or(logger)
	res := &CheckResult{}
	for _, f := range files {
		want, err := Format(f)
		if err != nil {
			return nil, err
		}
		have, err := os.ReadFile(f.Path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", f.Path, err)
		}
		if err == nil && bytes.Equal(have, want) {
			continue
		}
		res.Stale = append(res.Stale, f.Path)
		logger.Log(log.Event{Kind: log.KindFileStale, File: f.Path})
	}

	orphaned, err := Orphans(files, root)
	if err != nil {
		return nil, err
	}
	for _, path := range orphaned {
		logger.Log(log.Event{Kind: log.KindFileOrphaned, File: path})
	}
	res.Orphaned = orphaned
	res.UpToDate = len(res.Stale) == 0 && len(res.Orphaned) == 0
	return res, nil
}

// Orphans returns the generated files under root that are not among
// files, in lexical order. A file counts as generated when its name ends
// in _gen.go and its first line is Header. A missing root has no orphans.
func Orphans(files []File, root string) ([]string, error) {
	produced := make(map[string]bool, len(files))
	for _, f := range files {
		produced[filepath.Clean(f.Path)] = true
	}

	var orphans []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), "_gen.go") || produced[filepath.Clean(path)] {
			return nil
		}
		generated, err := hasHeader(path)
		if err != nil {
			return err
		}
		if generated {
			orphans = append(orphans, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	return orphans, nil
}

// Prune removes the orphaned files under root and returns their paths.
func Prune(files []File, root string, logger log.Logger) ([]string, error) {
	logger = log.Or(logger)
	orphans, err := Orphans(files, root)
	if err != nil {
		return nil, err
	}
	for _, path := range orphans {
		if err := os.Remove(path); err != nil {
			return nil, err
		}
		logger.Log(log.Event{Kind: log.KindFileRemoved, File: path})
	}
	return orphans, nil
}

func hasHeader(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	return strings.TrimRight(line, "\r\n") == emit.Header, nil
}
