package fabrik

// Hook names a lifecycle phase. Callbacks registered for a hook run after the
// corresponding build phase completes, in registration order.
type Hook string

const (
	// AfterBuild runs once an instance has been populated in memory.
	AfterBuild Hook = "after_build"
	// AfterCreate runs once an instance has been persisted.
	AfterCreate Hook = "after_create"
	// AfterStub runs once a stubbed instance has been populated.
	AfterStub Hook = "after_stub"
)

// Callback is a lifecycle hook invoked with the finished instance. An error
// aborts the remaining callbacks of the same hook and fails the build.
type Callback func(bc *BuildContext, instance any) error

// Definition accumulates a factory's attributes, lifecycle callbacks and
// aliases in declaration order. It is populated through a Proxy while the
// factory body runs and read by the build engine afterwards; it performs no
// evaluation of its own.
//
// Attribute names are not deduplicated here. Declaring the same name twice
// appends both entries; the build engine resolves them in order, so the later
// declaration's value wins on the built instance.
type Definition struct {
	attributes []Attribute
	callbacks  map[Hook][]Callback
	aliases    []string
}

// NewDefinition returns an empty definition.
func NewDefinition() *Definition {
	return &Definition{callbacks: make(map[Hook][]Callback)}
}

// AppendAttribute records attr after all previously declared attributes.
func (d *Definition) AppendAttribute(attr Attribute) {
	d.attributes = append(d.attributes, attr)
}

// AppendCallback records cb at the end of the hook's callback list.
func (d *Definition) AppendCallback(hook Hook, cb Callback) {
	d.callbacks[hook] = append(d.callbacks[hook], cb)
}

// RecordAlias records an additional lookup name for the owning factory. The
// registry registers aliases when the factory itself is registered; no
// attribute is added.
func (d *Definition) RecordAlias(name string) {
	d.aliases = append(d.aliases, name)
}

// Attributes returns the declared attributes in declaration order.
func (d *Definition) Attributes() []Attribute {
	out := make([]Attribute, len(d.attributes))
	copy(out, d.attributes)
	return out
}

// Callbacks returns the hook's callbacks in registration order.
func (d *Definition) Callbacks(hook Hook) []Callback {
	cbs := d.callbacks[hook]
	out := make([]Callback, len(cbs))
	copy(out, cbs)
	return out
}

// Aliases returns the recorded aliases in declaration order.
func (d *Definition) Aliases() []string {
	out := make([]string, len(d.aliases))
	copy(out, d.aliases)
	return out
}

// Len returns the number of declared attributes.
func (d *Definition) Len() int { return len(d.attributes) }
