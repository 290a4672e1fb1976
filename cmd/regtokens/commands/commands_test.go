package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mash-protocol/regtokens/pkg/link"
)

const exampleDir = "../../../examples/board"

// copyExample copies the board example into a temporary directory and
// returns the manifest path.
func copyExample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"regtokens.yaml", "chip.regs", "board.regs"} {
		data, err := os.ReadFile(filepath.Join(exampleDir, name))
		if err != nil {
			t.Fatalf("reading example: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatalf("writing example: %v", err)
		}
	}
	return filepath.Join(dir, "regtokens.yaml")
}

func TestRunGenerate_Example(t *testing.T) {
	manifest := copyExample(t)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := RunGenerate([]string{"-m", manifest}, stdout, stderr)
	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d\nstderr: %s", exitSuccess, exitCode, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Generated 4 files: Regs with 5 fields") {
		t.Errorf("unexpected output: %s", stdout.String())
	}
	if !strings.Contains(stderr.String(), "kind=FILE_WRITTEN") {
		t.Errorf("expected file events in stderr, got: %s", stderr.String())
	}

	gen := filepath.Join(filepath.Dir(manifest), "gen")
	src, err := os.ReadFile(filepath.Join(gen, "device", "regs_gen.go"))
	if err != nil {
		t.Fatalf("capability file not written: %v", err)
	}
	for _, want := range []string{
		"// Regs owns every register token of the board.",
		"func TakeRegs() Regs {",
		"RccAhb1enr",
		"Tim2Arr",
	} {
		if !strings.Contains(string(src), want) {
			t.Errorf("capability file missing %q", want)
		}
	}
	if strings.Contains(string(src), "GpioaIdr") {
		t.Error("excluded register became a capability field")
	}

	if _, err := os.Stat(filepath.Join(gen, "internal", "chip", "rcc", "rcc_gen.go")); err != nil {
		t.Errorf("private block not placed under internal: %v", err)
	}
	if _, err := os.Stat(filepath.Join(gen, "periph", "tim2", "tim2_gen.go")); err != nil {
		t.Errorf("crate path not applied: %v", err)
	}
}

func TestRunGenerate_Verbose(t *testing.T) {
	manifest := copyExample(t)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	if code := RunGenerate([]string{"-v", "-m", manifest}, stdout, stderr); code != exitSuccess {
		t.Fatalf("expected exit code %d, got %d\nstderr: %s", exitSuccess, code, stderr.String())
	}
	for _, want := range []string{"kind=LAYER_PARSED", "kind=FIELD_SKIPPED", "kind=FIELDS_FORWARDED", "kind=STRUCT_EMITTED"} {
		if !strings.Contains(stderr.String(), want) {
			t.Errorf("expected %s in verbose log", want)
		}
	}
}

func TestRunGenerate_MissingManifest(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := RunGenerate([]string{"-m", filepath.Join(t.TempDir(), "none.yaml")}, stdout, stderr)
	if exitCode != exitCommandError {
		t.Errorf("expected exit code %d, got %d", exitCommandError, exitCode)
	}
	if !strings.Contains(stderr.String(), "failed to read file") {
		t.Errorf("unexpected stderr: %s", stderr.String())
	}
}

func TestRunGenerate_UnexpectedArgs(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	if code := RunGenerate([]string{"extra"}, stdout, stderr); code != exitCommandError {
		t.Errorf("expected exit code %d, got %d", exitCommandError, code)
	}
}

func TestRunGenerate_Help(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	if code := RunGenerate([]string{"-h"}, stdout, stderr); code != exitSuccess {
		t.Errorf("expected exit code %d, got %d", exitSuccess, code)
	}
	if !strings.Contains(stdout.String(), "Usage: regtokens generate") {
		t.Errorf("expected usage, got: %s", stdout.String())
	}
}

func TestRunCheck(t *testing.T) {
	manifest := copyExample(t)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	if code := RunCheck([]string{"-m", manifest}, stdout, stderr); code != exitValidation {
		t.Errorf("expected exit code %d before generation, got %d", exitValidation, code)
	}
	if !strings.Contains(stdout.String(), "STALE: 4 of 4") {
		t.Errorf("unexpected output: %s", stdout.String())
	}

	if code := RunGenerate([]string{"-m", manifest}, &bytes.Buffer{}, stderr); code != exitSuccess {
		t.Fatalf("generate failed: %s", stderr.String())
	}

	stdout.Reset()
	if code := RunCheck([]string{"-m", manifest}, stdout, stderr); code != exitSuccess {
		t.Errorf("expected exit code %d after generation, got %d\n%s", exitSuccess, code, stdout.String())
	}
	if !strings.Contains(stdout.String(), "OK: 4 generated files are up to date") {
		t.Errorf("unexpected output: %s", stdout.String())
	}

	// Editing the specification makes the output stale.
	chip := filepath.Join(filepath.Dir(manifest), "chip.regs")
	data, _ := os.ReadFile(chip)
	if err := os.WriteFile(chip, []byte(strings.Replace(string(data), "cr;", "cr;\n    cfgr;", 1)), 0o644); err != nil {
		t.Fatal(err)
	}
	stdout.Reset()
	if code := RunCheck([]string{"-m", manifest}, stdout, stderr); code != exitValidation {
		t.Errorf("expected exit code %d after edit, got %d", exitValidation, code)
	}
	if !strings.Contains(stdout.String(), "regs_gen.go") || !strings.Contains(stdout.String(), "rcc_gen.go") {
		t.Errorf("expected both changed files listed, got: %s", stdout.String())
	}
}

func TestRunCheck_OrphanedBlock(t *testing.T) {
	manifest := copyExample(t)
	stderr := &bytes.Buffer{}
	if code := RunGenerate([]string{"-m", manifest}, &bytes.Buffer{}, stderr); code != exitSuccess {
		t.Fatalf("generate failed: %s", stderr.String())
	}

	// Renaming a block leaves its old package behind.
	board := filepath.Join(filepath.Dir(manifest), "board.regs")
	data, _ := os.ReadFile(board)
	if err := os.WriteFile(board, []byte(strings.Replace(string(data), "tim2", "tim3", 1)), 0o644); err != nil {
		t.Fatal(err)
	}
	old := filepath.Join(filepath.Dir(manifest), "gen", "periph", "tim2", "tim2_gen.go")

	stdout := &bytes.Buffer{}
	if code := RunCheck([]string{"-m", manifest}, stdout, stderr); code != exitValidation {
		t.Errorf("expected exit code %d, got %d", exitValidation, code)
	}
	if !strings.Contains(stdout.String(), "ORPHANED: 1 generated files are no longer produced") ||
		!strings.Contains(stdout.String(), old) {
		t.Errorf("expected the old block listed as orphaned, got: %s", stdout.String())
	}

	stdout.Reset()
	if code := RunGenerate([]string{"-m", manifest}, stdout, stderr); code != exitSuccess {
		t.Fatalf("generate failed: %s", stderr.String())
	}
	if !strings.Contains(stdout.String(), "Removed 1 orphaned files") {
		t.Errorf("unexpected output: %s", stdout.String())
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Errorf("orphaned file not removed: %v", err)
	}
	if code := RunCheck([]string{"-m", manifest}, &bytes.Buffer{}, stderr); code != exitSuccess {
		t.Errorf("expected a clean check after pruning, got %d", code)
	}
}

func TestRunExport(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "chip.rtl")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	code := RunExport([]string{"-spec", filepath.Join(exampleDir, "chip.regs"), "-scope", "example.com/mcu", "-o", out}, stdout, stderr)
	if code != exitSuccess {
		t.Fatalf("expected exit code %d, got %d\nstderr: %s", exitSuccess, code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Exported chip_regs (3 fields)") {
		t.Errorf("unexpected output: %s", stdout.String())
	}

	l, err := link.Read(out)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	if l.Generator != "chip_regs" || l.Scope != "example.com/mcu" || !l.Public {
		t.Errorf("unexpected artifact: %+v", l)
	}
}

func TestRunExport_MissingFlags(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	if code := RunExport([]string{"-spec", "chip.regs"}, stdout, stderr); code != exitCommandError {
		t.Errorf("expected exit code %d, got %d", exitCommandError, code)
	}
	if !strings.Contains(stderr.String(), "-spec and -scope are required") {
		t.Errorf("unexpected stderr: %s", stderr.String())
	}
}

func TestRunExport_SyntaxError(t *testing.T) {
	spec := filepath.Join(t.TempDir(), "bad.regs")
	if err := os.WriteFile(spec, []byte("pub macro m regs;"), 0o644); err != nil {
		t.Fatal(err)
	}
	stderr := &bytes.Buffer{}
	if code := RunExport([]string{"-spec", spec, "-scope", "x"}, &bytes.Buffer{}, stderr); code != exitValidation {
		t.Errorf("expected exit code %d, got %d", exitValidation, code)
	}
	if !strings.Contains(stderr.String(), "bad.regs:1:13") {
		t.Errorf("expected positioned error, got: %s", stderr.String())
	}
}

func TestParseExportArgs_DefaultOutput(t *testing.T) {
	opts, err := parseExportArgs([]string{"-spec", "layers/chip.regs", "-scope", "x"})
	if err != nil {
		t.Fatal(err)
	}
	if opts.Output != "layers/chip.rtl" {
		t.Errorf("expected layers/chip.rtl, got %s", opts.Output)
	}
}

func TestRunNames(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	if code := RunNames([]string{"GPIOA", "Type"}, stdout, stderr); code != exitSuccess {
		t.Fatalf("expected exit code %d, got %d", exitSuccess, code)
	}
	want := "package: gpioa\nlong:    gpioa_type\nshort:   type_\ntype:    Type\nvalue:   TypeValue\nfield:   GpioaType\n"
	if stdout.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", stdout.String(), want)
	}

	if code := RunNames([]string{"GPIOA"}, stdout, stderr); code != exitCommandError {
		t.Errorf("expected exit code %d, got %d", exitCommandError, code)
	}
}

func TestRunWatch_GeneratesBeforeWatching(t *testing.T) {
	manifest := copyExample(t)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opts := WatchOptions{GenerateOptions: GenerateOptions{Manifest: manifest}}
	if code := runWatch(ctx, opts, stdout, stderr); code != exitSuccess {
		t.Fatalf("expected exit code %d, got %d\nstderr: %s", exitSuccess, code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Generated 4 files: Regs with 5 fields") {
		t.Errorf("unexpected output: %s", stdout.String())
	}
	if !strings.Contains(stdout.String(), "Watching 3 files") {
		t.Errorf("expected manifest and both specifications watched, got: %s", stdout.String())
	}
}

func TestParseWatchArgs(t *testing.T) {
	opts, err := parseWatchArgs([]string{"-debounce", "1s", "-m", "x.yaml"})
	if err != nil {
		t.Fatal(err)
	}
	if opts.Debounce != time.Second || opts.Manifest != "x.yaml" {
		t.Errorf("unexpected options: %+v", opts)
	}
}
