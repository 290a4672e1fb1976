// Package link reads and writes link artifacts (.rtl files). An artifact
// records the generator of a layer built elsewhere, so the layer can take
// part in a capability chain without its specification source.
package link

import (
	"errors"
	"fmt"
	"os"

	"github.com/mash-protocol/regtokens/pkg/compose"
	"github.com/mash-protocol/regtokens/pkg/log"
	"github.com/mash-protocol/regtokens/pkg/specparse"
	"github.com/mash-protocol/regtokens/pkg/version"
)

// Ext is the file extension of link artifacts.
const Ext = ".rtl"

// ErrVersion is returned for artifacts written by an incompatible
// generator version.
var ErrVersion = errors.New("incompatible link artifact version")

// Link is the serialized generator of one layer.
type Link struct {
	Version   string  `cbor:"1,keyasint"`
	Generator string  `cbor:"2,keyasint"`
	Prev      string  `cbor:"3,keyasint,omitempty"`
	Scope     string  `cbor:"4,keyasint"`
	Public    bool    `cbor:"5,keyasint,omitempty"`
	Fields    []Field `cbor:"6,keyasint,omitempty"`
	// Attrs are the attributes of the generator declaration.
	Attrs []string `cbor:"7,keyasint,omitempty"`
}

// Field is one contributed capability field and its constructor.
type Field struct {
	Long    string   `cbor:"1,keyasint"`
	Import  string   `cbor:"2,keyasint,omitempty"`
	Type    string   `cbor:"3,keyasint"`
	Tagged  bool     `cbor:"4,keyasint,omitempty"`
	Attrs   []string `cbor:"5,keyasint,omitempty"`
	Expr    string   `cbor:"6,keyasint,omitempty"`
	Imports []string `cbor:"7,keyasint,omitempty"`
}

// Export records the generator of spec declared at scope.
func Export(spec *specparse.Specification, scope string) *Link {
	l := &Link{
		Version:   version.Current,
		Generator: spec.Next,
		Prev:      spec.Prev,
		Scope:     scope,
		Public:    spec.Vis.IsPublic(),
	}
	for _, a := range spec.Attrs {
		l.Attrs = append(l.Attrs, a.Text)
	}
	acc := compose.Accumulate(spec, scope, nil)
	for i, f := range acc.Fields {
		c := acc.Ctors[i]
		lf := Field{
			Long:    f.Long,
			Import:  f.Type.Import,
			Type:    f.Type.Name,
			Tagged:  f.Type.Tagged,
			Expr:    c.Expr,
			Imports: c.Imports,
		}
		for _, a := range f.Attrs {
			lf.Attrs = append(lf.Attrs, a.Text)
		}
		l.Fields = append(l.Fields, lf)
	}
	return l
}

// Validate checks the artifact for required content.
func (l *Link) Validate() error {
	if l.Generator == "" {
		return errors.New("missing generator name")
	}
	if l.Scope == "" {
		return fmt.Errorf("generator %s: missing scope", l.Generator)
	}
	for i, f := range l.Fields {
		if f.Long == "" || f.Type == "" {
			return fmt.Errorf("generator %s: field %d is incomplete", l.Generator, i)
		}
	}
	return nil
}

// Own returns the fields the layer contributes.
func (l *Link) Own() compose.Accumulator {
	var acc compose.Accumulator
	for _, f := range l.Fields {
		var attrs []specparse.Attribute
		for _, text := range f.Attrs {
			attrs = append(attrs, specparse.Attribute{Text: text})
		}
		acc.Add(
			compose.Field{
				Attrs: attrs,
				Long:  f.Long,
				Type:  compose.TypeRef{Import: f.Import, Name: f.Type, Tagged: f.Tagged},
				Layer: l.Generator,
			},
			compose.Ctor{Field: f.Long, Expr: f.Expr, Imports: f.Imports},
		)
	}
	return acc
}

// Layer returns the chain layer described by the artifact.
func (l *Link) Layer(logger log.Logger) *compose.Layer {
	var attrs []specparse.Attribute
	for _, text := range l.Attrs {
		attrs = append(attrs, specparse.Attribute{Text: text})
	}
	return compose.NewLayerFrom(compose.LayerConfig{
		Attrs:  attrs,
		Name:   l.Generator,
		Prev:   l.Prev,
		Scope:  l.Scope,
		Public: l.Public,
		Own:    l.Own(),
		Logger: logger,
	})
}

// Encode serializes the artifact.
func Encode(l *Link) ([]byte, error) {
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("invalid link: %w", err)
	}
	return encMode.Marshal(l)
}

// Decode parses an artifact and checks its version.
func Decode(data []byte) (*Link, error) {
	var l Link
	if err := decMode.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to decode link: %w", err)
	}
	if err := version.Check(l.Version); err != nil || l.Version == "" {
		return nil, fmt.Errorf("%w: %q", ErrVersion, l.Version)
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("invalid link: %w", err)
	}
	return &l, nil
}

// Write encodes l to path.
func Write(path string, l *Link) error {
	data, err := Encode(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Read decodes the artifact at path.
func Read(path string) (*Link, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	l, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}
