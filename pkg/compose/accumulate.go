package compose

import (
	"github.com/mash-protocol/regtokens/pkg/emit"
	"github.com/mash-protocol/regtokens/pkg/log"
	"github.com/mash-protocol/regtokens/pkg/specparse"
)

// Accumulate collects the fields a layer contributes: one per
// non-excluded register, blocks then registers in declaration order.
func Accumulate(spec *specparse.Specification, scope string, logger log.Logger) Accumulator {
	logger = log.Or(logger)

	var acc Accumulator
	for _, b := range spec.Blocks {
		pkg := emit.BlockImport(scope, spec.Crate, b)
		for _, r := range b.Regs {
			names := specparse.Names(b.Ident, r.Ident)
			ev := log.Event{Layer: spec.Next, Block: b.Ident, Register: r.Ident, Field: names.Long}
			if r.Excluded {
				ev.Kind = log.KindFieldSkipped
				logger.Log(ev)
				continue
			}
			acc.Add(
				Field{
					Attrs: r.Attrs,
					Long:  names.Long,
					Type:  TypeRef{Import: pkg, Name: names.Type, Tagged: true},
					Layer: spec.Next,
				},
				Ctor{Field: names.Long},
			)
			ev.Kind = log.KindFieldAdded
			logger.Log(ev)
		}
	}
	return acc
}
