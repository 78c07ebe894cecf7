package fabrik

import (
	"fmt"
	"reflect"
	"strings"
)

// newInstance materializes a factory instance from resolved attribute values.
// order lists the attribute names in resolution order and must only contain
// keys present in values. Struct-backed factories return a pointer to a fresh
// value; map-backed factories return a map copy.
func newInstance(f *Factory, values map[string]any, order []string) (any, error) {
	if f.Type() == nil {
		m := make(map[string]any, len(values))
		for k, v := range values {
			m[k] = v
		}
		return m, nil
	}

	ptr := reflect.New(f.Type())
	elem := ptr.Elem()
	idx := fieldIndex(f.Type())
	for _, name := range order {
		field, ok := idx.lookup(name)
		if !ok {
			return nil, fmt.Errorf("fabrik: factory %q: no field on %s for attribute %q", f.Name(), f.Type(), name)
		}
		if err := setField(elem.FieldByIndex(field.Index), values[name]); err != nil {
			return nil, fmt.Errorf("fabrik: factory %q: attribute %q: %w", f.Name(), name, err)
		}
	}
	return ptr.Interface(), nil
}

// fields maps attribute names to struct fields, honoring `fabrik` tags first
// and a normalized field-name match second.
type fields struct {
	byTag  map[string]reflect.StructField
	byName map[string]reflect.StructField
}

func (fs fields) lookup(name string) (reflect.StructField, bool) {
	if f, ok := fs.byTag[name]; ok {
		return f, true
	}
	f, ok := fs.byName[normalizeAttr(name)]
	return f, ok
}

func fieldIndex(t reflect.Type) fields {
	fs := fields{
		byTag:  make(map[string]reflect.StructField),
		byName: make(map[string]reflect.StructField),
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("fabrik")
		tagName := strings.Split(tag, ",")[0]
		if tagName == "-" {
			continue
		}
		if tagName != "" {
			fs.byTag[tagName] = field
			continue
		}
		fs.byName[normalizeAttr(field.Name)] = field
	}
	return fs
}

// normalizeAttr folds case and underscores so the attribute "created_at"
// matches the field CreatedAt without a tag.
func normalizeAttr(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", "")
}

// setField assigns v to field, converting between numeric kinds. A nil value
// leaves the field at its zero value.
func setField(field reflect.Value, v any) error {
	if v == nil {
		return nil
	}
	val := reflect.ValueOf(v)
	switch {
	case val.Type().AssignableTo(field.Type()):
		field.Set(val)
	case isNumericKind(val.Kind()) && isNumericKind(field.Kind()) && val.Type().ConvertibleTo(field.Type()):
		field.Set(val.Convert(field.Type()))
	default:
		return fmt.Errorf("cannot assign %s to field of type %s", val.Type(), field.Type())
	}
	return nil
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
