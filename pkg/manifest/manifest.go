// Package manifest loads the YAML description of a capability build and
// resolves it into a linked chain of layers.
//
//	version: "1.0"
//	module: example.com/board
//	output: gen
//	layers:
//	  - spec: chip.regs
//	    scope: example.com/board/chip
//	links:
//	  - vendor/soc.rtl
//	capability:
//	  generator: board
//	  package: example.com/board/device
//	  struct: {name: Regs, pub: true}
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mash-protocol/regtokens/pkg/version"
)

// Manifest is the parsed manifest file.
type Manifest struct {
	Version    string     `yaml:"version"`
	Module     string     `yaml:"module"`
	Output     string     `yaml:"output"`
	Layers     []Layer    `yaml:"layers"`
	Links      []string   `yaml:"links"`
	Capability Capability `yaml:"capability"`

	// Dir is the directory relative paths are resolved against.
	Dir string `yaml:"-"`
}

// Layer names one specification file and the import path it is declared at.
type Layer struct {
	Spec  string `yaml:"spec"`
	Scope string `yaml:"scope"`
}

// Capability is the invocation of the outermost generator.
type Capability struct {
	Generator string  `yaml:"generator"`
	Package   string  `yaml:"package"`
	Struct    Struct  `yaml:"struct"`
	Fields    []Field `yaml:"fields"`
	Ctors     []Ctor  `yaml:"ctors"`
}

// Struct is the requested struct signature.
type Struct struct {
	Name  string   `yaml:"name"`
	Pub   bool     `yaml:"pub"`
	Doc   []string `yaml:"doc"`
	Attrs []string `yaml:"attrs"`
}

// Field is a consumer supplied capability field.
type Field struct {
	Name   string   `yaml:"name"`
	Import string   `yaml:"import"`
	Type   string   `yaml:"type"`
	Tagged bool     `yaml:"tagged"`
	Doc    []string `yaml:"doc"`
}

// Ctor constructs the consumer supplied field of the same name.
type Ctor struct {
	Field   string   `yaml:"field"`
	Expr    string   `yaml:"expr"`
	Imports []string `yaml:"imports"`
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Message: "failed to read file", Cause: err}
	}

	m, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{File: path, Message: err.Error()}
	}
	m.Dir = filepath.Dir(path)
	return m, nil
}

// Parse decodes and validates manifest YAML. Unknown keys are rejected.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, &LoadError{Message: "failed to parse YAML", Cause: err}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks required keys and the format version.
func (m *Manifest) Validate() error {
	if err := version.Check(m.Version); err != nil {
		return &LoadError{Message: "unsupported manifest", Cause: err}
	}
	if m.Module == "" {
		return &LoadError{Message: "module is required"}
	}
	if len(m.Layers) == 0 && len(m.Links) == 0 {
		return &LoadError{Message: "at least one layer or link is required"}
	}
	for i, l := range m.Layers {
		if l.Spec == "" || l.Scope == "" {
			return &LoadError{Message: fmt.Sprintf("layer %d: spec and scope are required", i)}
		}
		if _, ok := m.Rel(l.Scope); !ok {
			return &LoadError{Message: fmt.Sprintf("layer %s: scope %s is outside module %s", l.Spec, l.Scope, m.Module)}
		}
	}
	c := m.Capability
	if c.Generator == "" || c.Package == "" || c.Struct.Name == "" {
		return &LoadError{Message: "capability generator, package and struct name are required"}
	}
	if _, ok := m.Rel(c.Package); !ok {
		return &LoadError{Message: fmt.Sprintf("capability package %s is outside module %s", c.Package, m.Module)}
	}
	return nil
}

// Rel returns importPath relative to the module, and whether it is inside
// the module at all.
func (m *Manifest) Rel(importPath string) (string, bool) {
	if importPath == m.Module {
		return "", true
	}
	rel, ok := strings.CutPrefix(importPath, m.Module+"/")
	return rel, ok
}

// OutputDir returns the directory every generated package is placed under.
func (m *Manifest) OutputDir() string {
	return filepath.Join(m.Dir, m.Output)
}

// PackageDir returns the directory a package of the module is generated
// into.
func (m *Manifest) PackageDir(importPath string) (string, bool) {
	rel, ok := m.Rel(importPath)
	if !ok {
		return "", false
	}
	return filepath.Join(m.OutputDir(), filepath.FromSlash(rel)), true
}

// FilePath returns the on-disk path of a generated file given by its
// slash-separated import path and file name.
func (m *Manifest) FilePath(importPath, name string) (string, bool) {
	dir, ok := m.PackageDir(importPath)
	if !ok {
		return "", false
	}
	return filepath.Join(dir, path.Base(name)), true
}

// resolvePath resolves a manifest relative file name.
func (m *Manifest) resolvePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(m.Dir, filepath.FromSlash(name))
}
