package fabrik

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserFactory(t *testing.T, aliases ...string) *Factory {
	t.Helper()
	def := NewDefinition()
	p := NewProxy("user", def, nil)
	p.Set("name", "Billy Idol")
	for _, a := range aliases {
		p.AliasedAs(a)
	}
	return NewFactory("user", nil, def)
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	f := newUserFactory(t, "author")

	require.NoError(t, r.Register(f))

	got, err := r.Lookup("user")
	require.NoError(t, err)
	assert.Same(t, f, got)

	got, err = r.Lookup("author")
	require.NoError(t, err)
	assert.Same(t, f, got, "aliases share the factory entry")
}

func TestRegistry_DuplicateFactory(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newUserFactory(t)))

	err := r.Register(newUserFactory(t))
	require.ErrorIs(t, err, ErrDuplicateFactory)
}

func TestRegistry_AliasCollisionLeavesRegistryUnchanged(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newUserFactory(t)))

	def := NewDefinition()
	p := NewProxy("writer", def, nil)
	p.AliasedAs("user") // collides with the registered name
	err := r.Register(NewFactory("writer", nil, def))
	require.ErrorIs(t, err, ErrDuplicateFactory)

	_, err = r.Lookup("writer")
	require.ErrorIs(t, err, ErrFactoryNotFound)
}

func TestRegistry_LookupUnknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Lookup("ghost")
	require.ErrorIs(t, err, ErrFactoryNotFound)
	assert.Contains(t, err.Error(), `"ghost"`)
}

func TestRegistry_Sequences(t *testing.T) {
	r := NewRegistry()

	seq, err := r.DefineSequence("email", 1, nil)
	require.NoError(t, err)
	require.NotNil(t, seq)

	_, err = r.DefineSequence("email", 1, nil)
	require.ErrorIs(t, err, ErrDuplicateSequence)

	got, ok := r.Sequence("email")
	require.True(t, ok)
	assert.Same(t, seq, got)

	_, ok = r.Sequence("missing")
	assert.False(t, ok)
}

func TestRegistry_Reset(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newUserFactory(t)))
	_, err := r.DefineSequence("email", 1, nil)
	require.NoError(t, err)

	r.Reset()

	_, err = r.Lookup("user")
	require.ErrorIs(t, err, ErrFactoryNotFound)
	_, ok := r.Sequence("email")
	assert.False(t, ok)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	const workers = 16

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("factory-%d", i)
			def := NewDefinition()
			NewProxy(name, def, r).Set("idx", i)
			if err := r.Register(NewFactory(name, nil, def)); err != nil {
				t.Error(err)
				return
			}
			if _, err := r.DefineSequence(fmt.Sprintf("seq-%d", i), 1, nil); err != nil {
				t.Error(err)
				return
			}

			for j := 0; j < 50; j++ {
				if _, err := r.Lookup(name); err != nil {
					t.Error(err)
					return
				}
				if _, ok := r.Sequence(fmt.Sprintf("seq-%d", i)); !ok {
					t.Errorf("sequence seq-%d missing", i)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		_, err := r.Lookup(fmt.Sprintf("factory-%d", i))
		require.NoError(t, err)
	}
}
