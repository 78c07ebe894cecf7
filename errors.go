package fabrik

import (
	"errors"
	"fmt"
)

var (
	// ErrFactoryNotFound is returned by registry lookups for unknown names.
	ErrFactoryNotFound = errors.New("fabrik: factory not found")
	// ErrDuplicateFactory is returned when a factory or alias name is
	// registered twice.
	ErrDuplicateFactory = errors.New("fabrik: factory already registered")
	// ErrDuplicateSequence is returned when a global sequence name is
	// registered twice.
	ErrDuplicateSequence = errors.New("fabrik: sequence already registered")
)

// AttributeDefinitionError reports an invalid attribute declaration inside a
// factory body. It is raised synchronously at definition time; the owning
// definition is left unmodified.
type AttributeDefinitionError struct {
	Factory   string
	Attribute string
	Reason    string
}

// Error implements the error interface.
func (e *AttributeDefinitionError) Error() string {
	if e.Factory == "" {
		return fmt.Sprintf("fabrik: attribute %q: %s", e.Attribute, e.Reason)
	}
	return fmt.Sprintf("fabrik: factory %q: attribute %q: %s", e.Factory, e.Attribute, e.Reason)
}
