package fabrik

import (
	"context"
	"fmt"
	"sync/atomic"
)

// defaultEnv is the process-wide environment, swapped atomically so readers
// never observe a partially configured snapshot.
var defaultEnv atomic.Pointer[Env]

func init() {
	defaultEnv.Store(New())
}

// Default returns the process-wide environment.
func Default() *Env {
	return defaultEnv.Load()
}

// SetDefault replaces the process-wide environment. Nil is ignored.
func SetDefault(e *Env) {
	if e == nil {
		return
	}
	defaultEnv.Store(e)
}

// Define registers a factory in the default environment. It panics on
// registry errors: definitions normally run at package init time, where an
// error return would be discarded.
func Define(name string, prototype any, body func(*Proxy)) {
	if err := Default().Define(name, prototype, body); err != nil {
		panic(err)
	}
}

// DefineSequence registers a global sequence in the default environment,
// panicking on duplicate names.
func DefineSequence(name string, start int64, fn SequenceFunc) *Sequence {
	seq, err := Default().DefineSequence(name, start, fn)
	if err != nil {
		panic(err)
	}
	return seq
}

// Build materializes an instance of the named factory from the default
// environment.
func Build(ctx context.Context, name string, overrides Options) (any, error) {
	return Default().Build(ctx, name, overrides)
}

// Create builds and persists an instance from the default environment.
func Create(ctx context.Context, name string, overrides Options) (any, error) {
	return Default().Create(ctx, name, overrides)
}

// Stub builds a stubbed instance from the default environment.
func Stub(ctx context.Context, name string, overrides Options) (any, error) {
	return Default().Stub(ctx, name, overrides)
}

// Reset clears the default environment's registry. Test harnesses call it
// between runs; nothing calls it implicitly.
func Reset() {
	Default().Registry().Reset()
}

// BuildAs builds name from the default environment and asserts the result to
// T.
func BuildAs[T any](ctx context.Context, name string, overrides Options) (T, error) {
	return as[T](Build(ctx, name, overrides))
}

// CreateAs creates name from the default environment and asserts the result
// to T.
func CreateAs[T any](ctx context.Context, name string, overrides Options) (T, error) {
	return as[T](Create(ctx, name, overrides))
}

// StubAs stubs name from the default environment and asserts the result to T.
func StubAs[T any](ctx context.Context, name string, overrides Options) (T, error) {
	return as[T](Stub(ctx, name, overrides))
}

func as[T any](v any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("fabrik: instance is %T, not %T", v, zero)
	}
	return t, nil
}
