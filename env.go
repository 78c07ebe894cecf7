package fabrik

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/fabrikgo/fabrik/internal/ctxlog"
)

// Env owns a registry and the strategy wiring for one process or test run.
// Most callers use the package-level default environment; tests that need
// isolation create their own.
type Env struct {
	registry *Registry
	logger   *slog.Logger
	saver    Saver
	stubIDs  *Sequence
}

// Option configures an Env.
type Option func(*Env)

// WithLogger sets the logger used for definition-time events.
func WithLogger(l *slog.Logger) Option {
	return func(e *Env) { e.logger = l }
}

// WithSaver sets the persistence collaborator the create strategy calls. With
// no saver configured, create falls back to the instance's own
// Save(context.Context) error method when it has one.
func WithSaver(s Saver) Option {
	return func(e *Env) { e.saver = s }
}

// WithRegistry replaces the environment's registry, letting several
// environments share definitions.
func WithRegistry(r *Registry) Option {
	return func(e *Env) { e.registry = r }
}

// New returns an environment with an empty registry.
func New(opts ...Option) *Env {
	e := &Env{
		registry: NewRegistry(),
		logger:   slog.Default(),
		stubIDs:  NewSequence(DefaultSequenceStart, nil),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the environment's registry.
func (e *Env) Registry() *Registry { return e.registry }

// Define runs body against a fresh proxy and registers the resulting
// factory. prototype fixes the instance type; nil yields map[string]any
// instances. The body's declarations are recorded, never evaluated.
func (e *Env) Define(name string, prototype any, body func(*Proxy)) error {
	def := NewDefinition()
	if body != nil {
		body(NewProxy(name, def, e.registry))
	}
	f := NewFactory(name, prototype, def)
	if err := e.registry.Register(f); err != nil {
		return err
	}
	e.logger.Debug("factory defined", "factory", name, "attributes", def.Len())
	return nil
}

// DefineSequence registers a global sequence in the environment's registry.
func (e *Env) DefineSequence(name string, start int64, fn SequenceFunc) (*Sequence, error) {
	return e.registry.DefineSequence(name, start, fn)
}

// Build materializes an in-memory instance of the named factory. overrides
// replace declared attributes verbatim; an overridden dynamic attribute's
// generator never runs.
func (e *Env) Build(ctx context.Context, name string, overrides Options) (any, error) {
	return e.run(ctx, name, buildStrategy{}, overrides)
}

// Create builds an instance and persists it through the configured Saver (or
// the instance's own Save method), running after-build then after-create
// hooks.
func (e *Env) Create(ctx context.Context, name string, overrides Options) (any, error) {
	return e.run(ctx, name, createStrategy{saver: e.saver}, overrides)
}

// Stub builds an instance without persistence, faking an ID where the
// instance has a settable zero int ID field, and runs after-stub hooks.
func (e *Env) Stub(ctx context.Context, name string, overrides Options) (any, error) {
	return e.run(ctx, name, stubStrategy{ids: e.stubIDs}, overrides)
}

// run is the build engine: resolve every attribute in declaration order
// against one build context, materialize the instance, then hand it to the
// strategy.
func (e *Env) run(ctx context.Context, name string, s Strategy, overrides Options) (any, error) {
	f, err := e.registry.Lookup(name)
	if err != nil {
		return nil, err
	}
	logger := ctxlog.FromContext(ctx)
	logger.Debug("building instance", "factory", name, "strategy", s.Name())

	bc := &BuildContext{
		ctx:       ctx,
		env:       e,
		factory:   f,
		strategy:  s,
		overrides: overrides,
		resolved:  make(map[string]any),
	}

	var order []string
	seen := make(map[string]bool)
	for _, attr := range f.Definition().Attributes() {
		an := attr.Name()
		var v any
		if ov, ok := overrides[an]; ok {
			// An override replaces resolution outright; in particular a
			// dynamic attribute's generator must not run.
			v = ov
		} else {
			v, err = attr.Resolve(bc)
			if err != nil {
				return nil, fmt.Errorf("fabrik: resolving %q.%q: %w", name, an, err)
			}
		}
		// Same-named declarations resolve in order; the later value wins.
		bc.resolved[an] = v
		if !seen[an] {
			seen[an] = true
			order = append(order, an)
		}
	}

	// Overrides naming no declared attribute still land on the instance,
	// after the declared ones, in a stable order.
	var extras []string
	for ov := range overrides {
		if !seen[ov] {
			extras = append(extras, ov)
		}
	}
	sort.Strings(extras)
	for _, ov := range extras {
		bc.resolved[ov] = overrides[ov]
		order = append(order, ov)
	}

	values := make(map[string]any, len(bc.resolved))
	assignable := order[:0:len(order)]
	for _, an := range order {
		if bc.resolved[an] == NoValue {
			continue
		}
		values[an] = bc.resolved[an]
		assignable = append(assignable, an)
	}

	instance, err := newInstance(f, values, assignable)
	if err != nil {
		return nil, err
	}
	return s.Finalize(bc, instance)
}
