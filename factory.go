package fabrik

import "reflect"

// Factory pairs a name with the definition describing how to populate an
// instance. The instance type comes from a prototype value supplied at
// definition time; a nil prototype yields map[string]any instances, which is
// what definitions loaded from files use.
type Factory struct {
	name string
	typ  reflect.Type
	def  *Definition
}

// NewFactory returns a factory producing instances of prototype's type.
// Pointer prototypes are unwrapped; Build always returns a pointer to a fresh
// value of the underlying struct type.
func NewFactory(name string, prototype any, def *Definition) *Factory {
	var typ reflect.Type
	if prototype != nil {
		typ = reflect.TypeOf(prototype)
		for typ.Kind() == reflect.Pointer {
			typ = typ.Elem()
		}
	}
	return &Factory{name: name, typ: typ, def: def}
}

// Name returns the factory's registered name.
func (f *Factory) Name() string { return f.name }

// Type returns the instance type, or nil for map-backed factories.
func (f *Factory) Type() reflect.Type { return f.typ }

// Definition returns the accumulated factory definition.
func (f *Factory) Definition() *Definition { return f.def }
