// Package compose assembles the capability struct across a chain of
// register layers.
//
// Every layer exposes a Generator under its declared name. Invoking a
// layer that has a predecessor forwards the layer's own fields, followed
// by the fields it received, to the predecessor. The terminal layer, which
// has no predecessor, renders the struct. For a chain L3 -> L2 -> L1
// invoked at L3 the field order is therefore L1, L2, L3, then any
// consumer supplied fields.
package compose

import (
	"fmt"
	"go/token"

	"github.com/mash-protocol/regtokens/pkg/specparse"
)

// TypeRef names a type declared in another package.
type TypeRef struct {
	// Import is the import path of the declaring package.
	Import string
	// Name is the type name inside that package.
	Name string
	// Tagged types are instantiated with the strict token tag.
	Tagged bool
}

// Field is one field of the capability struct.
type Field struct {
	Attrs []specparse.Attribute
	// Long is the snake-case field name, used as the reg struct tag.
	Long string
	Type TypeRef
	// Layer is the generator that contributed the field.
	Layer string
}

// Ctor constructs the field of the same name.
type Ctor struct {
	Field string
	// Expr is a Go expression producing the field value. When empty the
	// field is built with token.Take of its type.
	Expr string
	// Imports are the packages Expr refers to, by their package name.
	Imports []string
}

// Accumulator is an ordered group of fields with matching constructors.
type Accumulator struct {
	Fields []Field
	Ctors  []Ctor
}

// Add appends a field and its constructor.
func (a *Accumulator) Add(f Field, c Ctor) {
	a.Fields = append(a.Fields, f)
	a.Ctors = append(a.Ctors, c)
}

// Len returns the number of fields.
func (a Accumulator) Len() int {
	return len(a.Fields)
}

// Merge returns a new group holding a's entries followed by other's.
func (a Accumulator) Merge(other Accumulator) Accumulator {
	out := Accumulator{
		Fields: make([]Field, 0, len(a.Fields)+len(other.Fields)),
		Ctors:  make([]Ctor, 0, len(a.Ctors)+len(other.Ctors)),
	}
	out.Fields = append(append(out.Fields, a.Fields...), other.Fields...)
	out.Ctors = append(append(out.Ctors, a.Ctors...), other.Ctors...)
	return out
}

// StructSig is the signature of the struct a consumer asks for.
type StructSig struct {
	Attrs []specparse.Attribute
	// Public selects an exported struct and constructor.
	Public bool
	Name   string
	// Package is the import path the struct is generated into.
	Package string
}

// Invocation is a request to a generator.
type Invocation struct {
	Struct StructSig
	// Group is the continuation group. A nil group is the start form.
	Group *Accumulator
	// From is the import path of the invoking package or layer.
	From string
}

// Shape classifies an invocation.
type Shape uint8

const (
	// ShapeStart carries a struct signature only.
	ShapeStart Shape = iota + 1
	// ShapeContinuation carries a signature and an accumulated group.
	ShapeContinuation
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case ShapeStart:
		return "start"
	case ShapeContinuation:
		return "continuation"
	default:
		return "unknown"
	}
}

// Shape reports which of the accepted forms inv has. Any other form
// yields an error wrapping ErrAmbiguousChainForm.
func (inv Invocation) Shape() (Shape, error) {
	name := inv.Struct.Name
	if !token.IsIdentifier(name) || specparse.IsReserved(name) {
		return 0, fmt.Errorf("%w: invalid struct name %q", ErrAmbiguousChainForm, name)
	}
	if inv.Struct.Package == "" {
		return 0, fmt.Errorf("%w: struct %s has no package", ErrAmbiguousChainForm, name)
	}
	if inv.Group == nil {
		return ShapeStart, nil
	}

	g := inv.Group
	if len(g.Fields) != len(g.Ctors) {
		return 0, fmt.Errorf("%w: %d fields but %d constructors", ErrAmbiguousChainForm, len(g.Fields), len(g.Ctors))
	}
	for i, f := range g.Fields {
		if !token.IsIdentifier(f.Long) || f.Type.Name == "" {
			return 0, fmt.Errorf("%w: field %d is malformed", ErrAmbiguousChainForm, i)
		}
		if c := g.Ctors[i]; c.Field != f.Long {
			return 0, fmt.Errorf("%w: constructor %d builds %q, expected %q", ErrAmbiguousChainForm, i, c.Field, f.Long)
		}
	}
	return ShapeContinuation, nil
}
