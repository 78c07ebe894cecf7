package fabrik

// NoValue marks an attribute declared without an explicit value. It is
// distinct from a declared nil: a static attribute holding nil assigns nil to
// the instance, one holding NoValue is recorded but never assigned.
var NoValue noValue

type noValue struct{}

// Options is the configuration bag accepted by association declarations and
// by per-build overrides. Keys are attribute names; the reserved "factory"
// key of an association selects the target factory and is consumed at
// definition time.
type Options map[string]any

// Generator is a deferred attribute computation. The build engine invokes it
// exactly once per built instance, against the in-progress build context,
// unless the caller overrides the attribute for that instance. Errors
// propagate unchanged to whoever drives the build.
type Generator func(bc *BuildContext) (any, error)

// Attribute is one named value-producing rule within a factory definition.
// Attributes describe values; they are only evaluated when the build engine
// resolves them against a build context.
type Attribute interface {
	// Name returns the declaration key of the attribute.
	Name() string
	// Resolve produces the attribute's value for one build.
	Resolve(bc *BuildContext) (any, error)
}

// StaticAttribute holds a value fixed at definition time.
type StaticAttribute struct {
	name  string
	value any
}

// NewStatic returns a static attribute. value may be NoValue when the
// declaration supplied neither a value nor a generator.
func NewStatic(name string, value any) *StaticAttribute {
	return &StaticAttribute{name: name, value: value}
}

// Name implements Attribute.
func (a *StaticAttribute) Name() string { return a.name }

// Value returns the stored value without resolving.
func (a *StaticAttribute) Value() any { return a.value }

// Resolve returns the stored value unchanged. It never fails.
func (a *StaticAttribute) Resolve(*BuildContext) (any, error) {
	return a.value, nil
}

// DynamicAttribute defers its value to a generator run at build time.
type DynamicAttribute struct {
	name string
	gen  Generator
}

// NewDynamic returns a dynamic attribute computed by gen.
func NewDynamic(name string, gen Generator) *DynamicAttribute {
	return &DynamicAttribute{name: name, gen: gen}
}

// Name implements Attribute.
func (a *DynamicAttribute) Name() string { return a.name }

// Resolve invokes the generator with the build context. Generator failures
// are not caught here.
func (a *DynamicAttribute) Resolve(bc *BuildContext) (any, error) {
	return a.gen(bc)
}

// AssociationAttribute resolves by building another factory under the same
// strategy as the parent build.
type AssociationAttribute struct {
	name    string
	factory string
	options Options
}

// NewAssociation returns an association attribute. The "factory" key of opts,
// when present, names the target factory and is stripped from the forwarded
// options; otherwise the target defaults to the attribute name itself.
// Target-name validity is not checked here; an unknown factory surfaces as a
// registry lookup error at build time.
func NewAssociation(name string, opts Options) *AssociationAttribute {
	target := name
	forwarded := make(Options, len(opts))
	for k, v := range opts {
		if k == "factory" {
			if s, ok := v.(string); ok {
				target = s
			}
			continue
		}
		forwarded[k] = v
	}
	return &AssociationAttribute{name: name, factory: target, options: forwarded}
}

// Name implements Attribute.
func (a *AssociationAttribute) Name() string { return a.name }

// FactoryName returns the name of the factory the association builds.
func (a *AssociationAttribute) FactoryName() string { return a.factory }

// ForwardedOptions returns the options passed into the sub-build, with the
// consumed "factory" key already removed.
func (a *AssociationAttribute) ForwardedOptions() Options {
	out := make(Options, len(a.options))
	for k, v := range a.options {
		out[k] = v
	}
	return out
}

// Resolve delegates to the build context: build the target factory as an
// association of the current instance, under the current strategy.
func (a *AssociationAttribute) Resolve(bc *BuildContext) (any, error) {
	return bc.BuildAssociation(a.factory, a.name, a.options)
}
