package fabrik

import (
	"context"

	"github.com/fabrikgo/fabrik/internal/ctxlog"
)

// BuildContext carries the state of one in-progress build: the strategy in
// effect, the caller's overrides, and the attribute values resolved so far.
// Dynamic generators receive it and may read earlier attributes or build
// associated instances through it. A build context lives for exactly one
// build; association sub-builds get their own.
type BuildContext struct {
	ctx       context.Context
	env       *Env
	factory   *Factory
	strategy  Strategy
	overrides Options
	resolved  map[string]any
}

// Context returns the caller's context.Context.
func (bc *BuildContext) Context() context.Context { return bc.ctx }

// FactoryName returns the name of the factory being built.
func (bc *BuildContext) FactoryName() string { return bc.factory.Name() }

// Strategy returns the strategy driving this build. Association sub-builds
// inherit it unchanged.
func (bc *BuildContext) Strategy() Strategy { return bc.strategy }

// Get returns the resolved value of an attribute declared earlier in the
// factory body, or nil when it has not been resolved yet. Attributes resolve
// in declaration order, so a generator can only see what was declared before
// it.
func (bc *BuildContext) Get(name string) any {
	return bc.resolved[name]
}

// Lookup is Get with an explicit presence flag, for attributes whose resolved
// value may legitimately be nil.
func (bc *BuildContext) Lookup(name string) (any, bool) {
	v, ok := bc.resolved[name]
	return v, ok
}

// BuildAssociation builds factoryName as the association attrName of the
// current instance, under the current strategy. opts act as attribute
// overrides for the sub-build.
func (bc *BuildContext) BuildAssociation(factoryName, attrName string, opts Options) (any, error) {
	logger := ctxlog.FromContext(bc.ctx)
	logger.Debug("building association",
		"factory", bc.factory.Name(),
		"association", attrName,
		"target", factoryName,
		"strategy", bc.strategy.Name(),
	)
	return bc.env.run(bc.ctx, factoryName, bc.strategy, opts)
}
