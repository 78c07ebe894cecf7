package fabrik

import (
	"context"
	"fmt"
	"reflect"
)

// Strategy is the policy applied to a fully populated instance: run the
// matching lifecycle hooks and, for create, persist. The engine propagates
// the parent build's strategy unchanged into association sub-builds.
type Strategy interface {
	// Name identifies the strategy in logs and tests.
	Name() string
	// Finalize receives the populated instance and returns the value handed
	// back to the caller.
	Finalize(bc *BuildContext, instance any) (any, error)
}

// Saver persists instances on behalf of the create strategy.
type Saver interface {
	Save(ctx context.Context, factory string, instance any) error
}

// saveable is recognized on instances when the environment has no Saver
// configured.
type saveable interface {
	Save(ctx context.Context) error
}

type buildStrategy struct{}

func (buildStrategy) Name() string { return "build" }

func (buildStrategy) Finalize(bc *BuildContext, instance any) (any, error) {
	if err := runCallbacks(bc, AfterBuild, instance); err != nil {
		return nil, err
	}
	return instance, nil
}

type createStrategy struct {
	saver Saver
}

func (createStrategy) Name() string { return "create" }

func (s createStrategy) Finalize(bc *BuildContext, instance any) (any, error) {
	if err := runCallbacks(bc, AfterBuild, instance); err != nil {
		return nil, err
	}
	if err := s.persist(bc, instance); err != nil {
		return nil, fmt.Errorf("fabrik: persisting %q: %w", bc.FactoryName(), err)
	}
	if err := runCallbacks(bc, AfterCreate, instance); err != nil {
		return nil, err
	}
	return instance, nil
}

func (s createStrategy) persist(bc *BuildContext, instance any) error {
	if s.saver != nil {
		return s.saver.Save(bc.Context(), bc.FactoryName(), instance)
	}
	if sv, ok := instance.(saveable); ok {
		return sv.Save(bc.Context())
	}
	return nil
}

type stubStrategy struct {
	ids *Sequence
}

func (stubStrategy) Name() string { return "stub" }

func (s stubStrategy) Finalize(bc *BuildContext, instance any) (any, error) {
	s.assignStubID(instance)
	if err := runCallbacks(bc, AfterStub, instance); err != nil {
		return nil, err
	}
	return instance, nil
}

// assignStubID fakes persistence: a zero int-kind ID field gets the next
// value from the environment's stub counter. Instances without such a field
// are left alone.
func (s stubStrategy) assignStubID(instance any) {
	v := reflect.ValueOf(instance)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return
	}
	field := v.Elem().FieldByName("ID")
	if !field.IsValid() || !field.CanSet() || !field.CanInt() || field.Int() != 0 {
		return
	}
	if n, ok := s.ids.Next().(int64); ok {
		field.SetInt(n)
	}
}

// runCallbacks invokes the hook's callbacks in registration order. The first
// error aborts the rest and fails the build.
func runCallbacks(bc *BuildContext, hook Hook, instance any) error {
	for i, cb := range bc.factory.Definition().Callbacks(hook) {
		if err := cb(bc, instance); err != nil {
			return fmt.Errorf("fabrik: %s callback %d for factory %q: %w", hook, i, bc.FactoryName(), err)
		}
	}
	return nil
}
