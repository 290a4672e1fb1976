// Package emit renders the Go package of a register block. Each block
// package re-exports the register implementation under the names derived
// by specparse.Names:
//
//	// Odr is the odr register of block gpioa.
//	type Odr[T token.Tag] = regs.GpioaOdrReg[T]
//
//	// OdrValue is the value binding of Odr.
//	var OdrValue = regs.GpioaOdr
//
//	// odr is the short name of OdrValue.
//	var odr = OdrValue
//
// Excluded registers are emitted the same way; exclusion only affects the
// capability struct.
package emit

import (
	"fmt"
	"path"
	"strings"

	"github.com/mash-protocol/regtokens/pkg/log"
	"github.com/mash-protocol/regtokens/pkg/specparse"
)

// File is one generated Go source file.
type File struct {
	// ImportPath is the package the file belongs to.
	ImportPath string
	// Name is the file name inside the package directory.
	Name   string
	Source []byte
}

// Path returns the file's slash-separated path relative to the root of
// its import path.
func (f *File) Path() string {
	return path.Join(f.ImportPath, f.Name)
}

// Options locate a block package.
type Options struct {
	// Root is the import path of the register implementation package.
	Root string
	// ImportPath is the import path of the generated block package.
	ImportPath string
}

// Block renders the package file for b.
func Block(b specparse.Block, opts Options) (*File, error) {
	if opts.Root == "" {
		return nil, fmt.Errorf("block %s: empty register root", b.Ident)
	}
	if opts.ImportPath == "" {
		return nil, fmt.Errorf("block %s: empty import path", b.Ident)
	}

	pkg := specparse.PackageName(b.Ident)
	data := blockData{
		Header:  Header,
		Package: pkg,
		Doc: WithSummary(
			fmt.Sprintf("Package %s re-exports the %s register block of %s.", pkg, b.Ident, opts.Root),
			b.Attrs),
	}

	shorts := make([]string, 0, len(b.Regs))
	types := make(map[string]bool, 2*len(b.Regs))
	for _, r := range b.Regs {
		names := specparse.Names(b.Ident, r.Ident)
		shorts = append(shorts, names.Short)
		types[names.Type] = true
		types[specparse.ValueName(names.Type)] = true
	}
	im := NewImports(shorts...)
	data.RootAlias = im.Add(opts.Root)
	data.TokenAlias = im.Add(TokenImport)
	data.Imports = im.List()
	data.Param = uniqueName("T", types)

	for _, r := range b.Regs {
		names := specparse.Names(b.Ident, r.Ident)
		typeDoc := WithSummary(fmt.Sprintf("%s is the %s register of block %s.", names.Type, r.Ident, b.Ident), r.Attrs)
		if r.Excluded {
			typeDoc = append(typeDoc, "", "Excluded from the capability struct.")
		}
		value := specparse.ValueName(names.Type)
		data.Regs = append(data.Regs, regData{
			TypeDoc:  typeDoc,
			ValueDoc: []string{fmt.Sprintf("%s is the value binding of %s.", value, names.Type)},
			ShortDoc: []string{fmt.Sprintf("%s is the short name of %s.", names.Short, value)},
			Type:     names.Type,
			Value:    value,
			Short:    names.Short,
			Impl:     specparse.FieldName(names.Long),
		})
	}

	var sb strings.Builder
	renderTemplate(&sb, "block", data)
	return &File{
		ImportPath: opts.ImportPath,
		Name:       pkg + "_gen.go",
		Source:     []byte(sb.String()),
	}, nil
}

// Layer renders every block package of spec. Blocks are placed relative
// to scope, the import path of the layer.
func Layer(spec *specparse.Specification, scope string, logger log.Logger) ([]*File, error) {
	logger = log.Or(logger)
	root := RootImport(scope, spec.Root)

	files := make([]*File, 0, len(spec.Blocks))
	for _, b := range spec.Blocks {
		f, err := Block(b, Options{Root: root, ImportPath: BlockImport(scope, spec.Crate, b)})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", spec.Next, err)
		}
		logger.Log(log.Event{
			Kind:  log.KindBlockEmitted,
			Layer: spec.Next,
			Block: b.Ident,
			File:  f.Path(),
			Count: len(b.Regs),
		})
		files = append(files, f)
	}
	return files, nil
}
