package fabrik

import (
	"fmt"
	"log/slog"
	"sync"
)

// Registry stores factories and global sequences by name. Aliases share the
// factory's entry. A registry is safe for concurrent use; the usual lifecycle
// is one per process or test run, cleared between runs via Reset by whatever
// harness owns it.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]*Factory
	sequences map[string]*Sequence
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]*Factory),
		sequences: make(map[string]*Sequence),
	}
}

// Register adds f under its name and every alias recorded on its definition.
// Name collisions, including alias collisions, leave the registry unchanged.
func (r *Registry) Register(f *Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := append([]string{f.Name()}, f.Definition().Aliases()...)
	for _, name := range names {
		if _, exists := r.factories[name]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateFactory, name)
		}
	}
	for _, name := range names {
		r.factories[name] = f
	}
	slog.Debug("registered factory", "factory", f.Name(), "aliases", f.Definition().Aliases(), "attributes", f.Definition().Len())
	return nil
}

// RegisterAlias adds an additional lookup name for an already registered
// factory.
func (r *Registry) RegisterAlias(f *Factory, alias string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[alias]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateFactory, alias)
	}
	r.factories[alias] = f
	return nil
}

// Lookup returns the factory registered under name or one of its aliases.
func (r *Registry) Lookup(name string) (*Factory, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFactoryNotFound, name)
	}
	return f, nil
}

// DefineSequence registers a global sequence under name. Global sequences are
// shared across factories: every unqualified declaration of name draws from
// the same counter.
func (r *Registry) DefineSequence(name string, start int64, fn SequenceFunc) (*Sequence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sequences[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateSequence, name)
	}
	seq := NewSequence(start, fn)
	r.sequences[name] = seq
	slog.Debug("registered sequence", "sequence", name, "start", start)
	return seq, nil
}

// Sequence returns the global sequence registered under name. It is the
// read-only lookup the proxy consults while disambiguating declarations.
func (r *Registry) Sequence(name string) (*Sequence, bool) {
	r.mu.RLock()
	seq, ok := r.sequences[name]
	r.mu.RUnlock()
	return seq, ok
}

// Reset removes every factory and sequence. Meant for test harnesses that
// rebuild definitions between runs; nothing calls it implicitly.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.factories = make(map[string]*Factory)
	r.sequences = make(map[string]*Sequence)
	r.mu.Unlock()
}
