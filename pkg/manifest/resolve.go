package manifest

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/mash-protocol/regtokens/pkg/compose"
	"github.com/mash-protocol/regtokens/pkg/link"
	"github.com/mash-protocol/regtokens/pkg/log"
	"github.com/mash-protocol/regtokens/pkg/specparse"
)

// Plan is a resolved manifest: every layer parsed and linked to its
// predecessor, and the invocation of the capability generator.
type Plan struct {
	Manifest *Manifest
	// Layers holds specification layers first, in manifest order, then
	// link layers.
	Layers []*ResolvedLayer
	// Chain is the invoked generator followed by its predecessors, ending
	// with the terminal layer.
	Chain []*ResolvedLayer
	// Invocation is the request sent to the first layer of Chain.
	Invocation compose.Invocation
}

// ResolvedLayer is one layer of a plan.
type ResolvedLayer struct {
	// Spec is set for layers parsed from a specification file.
	Spec *specparse.Specification
	// Link is set for layers loaded from an artifact.
	Link  *link.Link
	Scope string
	Gen   *compose.Layer
	// Source is the specification or artifact file.
	Source string
}

// Name returns the generator name of the layer.
func (l *ResolvedLayer) Name() string {
	return l.Gen.Name()
}

// Resolve parses every layer and link of m and links the chain.
func Resolve(m *Manifest, logger log.Logger) (*Plan, error) {
	logger = log.Or(logger)
	plan := &Plan{Manifest: m}

	for _, entry := range m.Layers {
		file := m.resolvePath(entry.Spec)
		spec, err := specparse.ParseFile(file)
		if err != nil {
			return nil, err
		}
		logger.Log(log.Event{Kind: log.KindLayerParsed, Layer: spec.Next, File: file, Count: len(spec.Blocks)})
		plan.Layers = append(plan.Layers, &ResolvedLayer{
			Spec:   spec,
			Scope:  entry.Scope,
			Gen:    compose.NewLayer(spec, entry.Scope, logger),
			Source: file,
		})
	}
	for _, name := range m.Links {
		file := m.resolvePath(name)
		l, err := link.Read(file)
		if err != nil {
			return nil, fmt.Errorf("loading link: %w", err)
		}
		logger.Log(log.Event{Kind: log.KindLayerParsed, Layer: l.Generator, File: file, Count: len(l.Fields)})
		plan.Layers = append(plan.Layers, &ResolvedLayer{
			Link:   l,
			Scope:  l.Scope,
			Gen:    l.Layer(logger),
			Source: file,
		})
	}

	byName := make(map[string]*ResolvedLayer, len(plan.Layers))
	var terminals []string
	for _, l := range plan.Layers {
		if first, dup := byName[l.Name()]; dup {
			return nil, fmt.Errorf("%w %s: declared by %s and %s", ErrDuplicateGenerator, l.Name(), first.Source, l.Source)
		}
		byName[l.Name()] = l
		if l.Gen.Terminal() {
			terminals = append(terminals, l.Name())
		}
	}

	// singularity: one terminal layer per build
	switch len(terminals) {
	case 0:
		return nil, ErrNoTerminal
	case 1:
	default:
		return nil, &MultipleTerminalError{Generators: terminals}
	}

	for _, l := range plan.Layers {
		if err := checkCycle(l, byName); err != nil {
			return nil, err
		}
	}
	for _, l := range plan.Layers {
		if l.Gen.Terminal() {
			continue
		}
		pred, ok := byName[l.Gen.Prev()]
		if !ok {
			return nil, fmt.Errorf("%w %s: used by %s", ErrUnknownGenerator, l.Gen.Prev(), l.Name())
		}
		if err := l.Gen.Link(pred.Gen); err != nil {
			return nil, err
		}
	}

	entry, ok := byName[m.Capability.Generator]
	if !ok {
		return nil, fmt.Errorf("%w %s: invoked by capability %s", ErrUnknownGenerator, m.Capability.Generator, m.Capability.Struct.Name)
	}
	for l := entry; l != nil; l = byName[l.Gen.Prev()] {
		plan.Chain = append(plan.Chain, l)
		if l.Gen.Terminal() {
			break
		}
	}

	inv, err := m.Capability.Invocation()
	if err != nil {
		return nil, err
	}
	plan.Invocation = inv
	return plan, nil
}

// checkCycle follows the predecessors of start and reports a revisit.
func checkCycle(start *ResolvedLayer, byName map[string]*ResolvedLayer) error {
	path := []string{start.Name()}
	for l := start; !l.Gen.Terminal(); {
		next, ok := byName[l.Gen.Prev()]
		if !ok {
			return nil
		}
		if slices.Contains(path, next.Name()) {
			return fmt.Errorf("%w: %v", ErrCycle, append(path, next.Name()))
		}
		path = append(path, next.Name())
		l = next
	}
	return nil
}

// Invocation converts the capability section into a generator invocation.
// Without fields and ctors it is the start form.
func (c Capability) Invocation() (compose.Invocation, error) {
	sig := compose.StructSig{
		Attrs:   attrs(c.Struct.Doc, c.Struct.Attrs),
		Public:  c.Struct.Pub,
		Name:    c.Struct.Name,
		Package: c.Package,
	}
	inv := compose.Invocation{Struct: sig, From: c.Package}
	if len(c.Fields) == 0 && len(c.Ctors) == 0 {
		return inv, nil
	}

	group := &compose.Accumulator{}
	for _, f := range c.Fields {
		group.Fields = append(group.Fields, compose.Field{
			Attrs: attrs(f.Doc, nil),
			Long:  f.Name,
			Type:  compose.TypeRef{Import: f.Import, Name: f.Type, Tagged: f.Tagged},
			Layer: "capability " + c.Struct.Name,
		})
	}
	for _, ct := range c.Ctors {
		group.Ctors = append(group.Ctors, compose.Ctor{Field: ct.Field, Expr: ct.Expr, Imports: ct.Imports})
	}
	inv.Group = group
	if _, err := inv.Shape(); err != nil {
		return compose.Invocation{}, fmt.Errorf("capability %s: %w", c.Struct.Name, err)
	}
	return inv, nil
}

func attrs(doc, raw []string) []specparse.Attribute {
	var out []specparse.Attribute
	for _, d := range doc {
		out = append(out, specparse.Attribute{Text: "doc = " + strconv.Quote(d)})
	}
	for _, r := range raw {
		out = append(out, specparse.Attribute{Text: r})
	}
	return out
}
