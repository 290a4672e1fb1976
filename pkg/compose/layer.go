package compose

import (
	"fmt"
	"strings"

	"github.com/mash-protocol/regtokens/pkg/log"
	"github.com/mash-protocol/regtokens/pkg/specparse"
)

// Generator is a named, invocable step of a capability chain.
type Generator interface {
	// Name is the generator name the layer declares.
	Name() string
	// Public reports whether the generator may be used outside its scope.
	Public() bool
	// Scope is the import path of the declaring layer.
	Scope() string
	// Invoke runs the generator. It returns the capability rendered by the
	// terminal layer of the chain.
	Invoke(inv Invocation) (*Capability, error)
}

// LayerConfig describes a layer without its specification source.
type LayerConfig struct {
	// Attrs are the attributes of the generator declaration.
	Attrs  []specparse.Attribute
	Name   string
	Prev   string
	Scope  string
	Public bool
	Own    Accumulator
	Logger log.Logger
}

// Layer is the generator of one specification.
type Layer struct {
	attrs  []specparse.Attribute
	name   string
	prev   string
	scope  string
	public bool
	own    Accumulator

	pred Generator
	log  log.Logger
}

// NewLayer builds the generator for a parsed specification declared at
// scope.
func NewLayer(spec *specparse.Specification, scope string, logger log.Logger) *Layer {
	return NewLayerFrom(LayerConfig{
		Attrs:  spec.Attrs,
		Name:   spec.Next,
		Prev:   spec.Prev,
		Scope:  scope,
		Public: spec.Vis.IsPublic(),
		Own:    Accumulate(spec, scope, logger),
		Logger: logger,
	})
}

// NewLayerFrom builds a layer from its parts. It is used for layers
// loaded from link artifacts.
func NewLayerFrom(cfg LayerConfig) *Layer {
	return &Layer{
		attrs:  cfg.Attrs,
		name:   cfg.Name,
		prev:   cfg.Prev,
		scope:  cfg.Scope,
		public: cfg.Public,
		own:    cfg.Own,
		log:    log.Or(cfg.Logger),
	}
}

// Name returns the generator name.
func (l *Layer) Name() string { return l.name }

// Public reports whether the generator is pub.
func (l *Layer) Public() bool { return l.public }

// Scope returns the import path of the layer.
func (l *Layer) Scope() string { return l.scope }

// Attrs returns the attributes of the generator declaration.
func (l *Layer) Attrs() []specparse.Attribute { return l.attrs }

// Prev returns the predecessor generator name, empty for a terminal layer.
func (l *Layer) Prev() string { return l.prev }

// Terminal reports whether the layer renders the capability struct.
func (l *Layer) Terminal() bool { return l.prev == "" }

// Own returns the fields contributed by the layer itself.
func (l *Layer) Own() Accumulator {
	return Accumulator{}.Merge(l.own)
}

// Link connects the layer to its predecessor.
func (l *Layer) Link(pred Generator) error {
	if l.Terminal() {
		return fmt.Errorf("layer %s is terminal and takes no predecessor", l.name)
	}
	if pred.Name() != l.prev {
		return fmt.Errorf("layer %s uses %s, cannot link %s", l.name, l.prev, pred.Name())
	}
	if !pred.Public() && !within(l.scope, pred.Scope()) {
		return fmt.Errorf("%w: %s (declared in %s) used by %s in %s",
			ErrPrivateGenerator, pred.Name(), pred.Scope(), l.name, l.scope)
	}
	l.pred = pred
	return nil
}

// Invoke merges the layer's own fields in front of the invocation group
// and either forwards the result to the predecessor or, for the terminal
// layer, renders the capability.
func (l *Layer) Invoke(inv Invocation) (*Capability, error) {
	shape, err := inv.Shape()
	if err != nil {
		return nil, fmt.Errorf("invoking %s: %w", l.name, err)
	}
	if !l.public && !within(inv.From, l.scope) {
		return nil, fmt.Errorf("%w: %s (declared in %s) invoked from %s",
			ErrPrivateGenerator, l.name, l.scope, inv.From)
	}

	var group Accumulator
	if shape == ShapeContinuation {
		group = *inv.Group
	}
	merged := l.own.Merge(group)

	if l.Terminal() {
		c, err := Render(inv.Struct, merged, l.name, l.attrs)
		if err != nil {
			return nil, err
		}
		l.log.Log(log.Event{Kind: log.KindStructEmitted, Layer: l.name, File: c.File.Path(), Count: len(c.Fields)})
		return c, nil
	}

	if l.pred == nil {
		return nil, fmt.Errorf("%w: %s uses %s", ErrUnlinked, l.name, l.prev)
	}
	l.log.Log(log.Event{Kind: log.KindFieldsForwarded, Layer: l.name, Count: merged.Len()})
	return l.pred.Invoke(Invocation{Struct: inv.Struct, Group: &merged, From: l.scope})
}

// within reports whether from is scope or a package below it.
func within(from, scope string) bool {
	return from == scope || strings.HasPrefix(from, scope+"/")
}

var _ Generator = (*Layer)(nil)
