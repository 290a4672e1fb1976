// Package specparse parses register block specifications (.regs files)
// and derives the canonical Go names used by the emitters.
//
// A specification declares the generator a layer exposes, the optional
// predecessor it forwards to, the register implementation package and the
// blocks of registers:
//
//	/// Board level registers.
//	pub macro board_regs;
//	use macro chip_regs;
//	example.com/chip/regs;
//	crate;
//
//	pub mod gpioa {
//	    odr;
//	    !idr;
//	}
package specparse

import (
	"fmt"
	"strconv"
	"strings"
)

// Pos is a position in a specification source.
type Pos struct {
	Line int
	Col  int
}

// String returns "line:col".
func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Attribute is the raw content of a #[...] group, or a /// doc line
// represented as doc = "...".
type Attribute struct {
	Text string
	Pos  Pos
}

// Doc returns the documentation text if the attribute is a doc attribute.
func (a Attribute) Doc() (string, bool) {
	name, value, ok := a.keyValue()
	if !ok || name != "doc" {
		return "", false
	}
	return value, true
}

// Deprecated reports whether the attribute is a deprecation marker and
// returns its note, if any.
func (a Attribute) Deprecated() (string, bool) {
	if strings.TrimSpace(a.Text) == "deprecated" {
		return "", true
	}
	name, value, ok := a.keyValue()
	if !ok || name != "deprecated" {
		return "", false
	}
	return value, true
}

func (a Attribute) keyValue() (name, value string, ok bool) {
	name, raw, found := strings.Cut(a.Text, "=")
	if !found {
		return "", "", false
	}
	value, err := strconv.Unquote(strings.TrimSpace(raw))
	if err != nil {
		return "", "", false
	}
	return strings.TrimSpace(name), value, true
}

// VisKind classifies a visibility qualifier.
type VisKind uint8

const (
	// VisInherited is the absence of a qualifier.
	VisInherited VisKind = iota
	// VisPublic is a bare pub.
	VisPublic
	// VisCrate is pub(crate).
	VisCrate
	// VisSuper is pub(super).
	VisSuper
	// VisSelf is pub(self).
	VisSelf
	// VisIn is pub(in path).
	VisIn
)

// Visibility is a parsed visibility qualifier.
type Visibility struct {
	Kind VisKind
	// Path is set for VisIn.
	Path string
}

// IsPublic reports whether the qualifier is a bare pub.
func (v Visibility) IsPublic() bool {
	return v.Kind == VisPublic
}

// String returns the qualifier as written in the grammar.
func (v Visibility) String() string {
	switch v.Kind {
	case VisPublic:
		return "pub"
	case VisCrate:
		return "pub(crate)"
	case VisSuper:
		return "pub(super)"
	case VisSelf:
		return "pub(self)"
	case VisIn:
		return "pub(in " + v.Path + ")"
	default:
		return ""
	}
}

// Specification is the parsed form of one .regs file.
type Specification struct {
	// File is the name the source was parsed under.
	File string

	Attrs []Attribute
	Vis   Visibility
	// Next is the name of the generator this layer exposes.
	Next string
	// Prev is the predecessor generator, empty for a terminal layer.
	Prev string
	// Root is the import path of the register implementation package.
	Root string
	// Crate is the optional path, relative to the layer scope, under which
	// block packages are placed.
	Crate  string
	Blocks []Block
}

// Terminal reports whether the layer emits the capability struct itself.
func (s *Specification) Terminal() bool {
	return s.Prev == ""
}

// Block is a register block. Each block becomes one Go package.
type Block struct {
	Attrs []Attribute
	Vis   Visibility
	Ident string
	Regs  []Register
	Pos   Pos
}

// Register is a single register entry of a block.
type Register struct {
	Attrs []Attribute
	Ident string
	// Excluded registers are re-exported but never become capability fields.
	Excluded bool
	Pos      Pos
}
