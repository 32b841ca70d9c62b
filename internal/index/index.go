// Package index implements the translatable index: the registry mapping
// record classes to their translatable fields, locale configuration and
// carrier mode. Registration happens once at startup; lookups are read-only
// and safe for concurrent units of work.
package index

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/quillworks/traduit/pkg/types"
)

// Registry holds one ClassSpec per registered record type. The carrier mode
// for a class is decided once, at registration, instead of being re-probed
// per call.
type Registry struct {
	mu      sync.RWMutex
	classes map[reflect.Type]types.ClassSpec
	modes   map[reflect.Type]types.CarrierMode
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		classes: make(map[reflect.Type]types.ClassSpec),
		modes:   make(map[reflect.Type]types.CarrierMode),
	}
}

// Register records the translatable spec for the class of sample. The
// carrier mode is fixed here: an explicit spec.Mode wins, otherwise the
// type is probed structurally: a PointerCarrier routes to pointer mode,
// anything else to field-value mode.
func (r *Registry) Register(sample any, spec types.ClassSpec) error {
	key := classOf(sample)
	if key == nil {
		return fmt.Errorf("index: cannot register nil sample")
	}

	mode := types.ModeFieldValue
	if spec.Mode != nil {
		mode = *spec.Mode
	} else if _, ok := sample.(types.PointerCarrier); ok {
		mode = types.ModePointer
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[key] = spec
	r.modes[key] = mode
	return nil
}

// SpecFor returns the ClassSpec for the class of instance, or
// ErrClassNotRegistered.
func (r *Registry) SpecFor(instance any) (types.ClassSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.classes[classOf(instance)]
	if !ok {
		return types.ClassSpec{}, fmt.Errorf("index: %T: %w", instance, types.ErrClassNotRegistered)
	}
	return spec, nil
}

// FieldsFor returns the ordered translatable field names for the class of
// instance.
func (r *Registry) FieldsFor(instance any) ([]string, error) {
	spec, err := r.SpecFor(instance)
	if err != nil {
		return nil, err
	}
	return spec.FieldNames(), nil
}

// ModeFor returns the cached carrier mode for the class of instance.
func (r *Registry) ModeFor(instance any) (types.CarrierMode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mode, ok := r.modes[classOf(instance)]
	if !ok {
		return types.ModeFieldValue, fmt.Errorf("index: %T: %w", instance, types.ErrClassNotRegistered)
	}
	return mode, nil
}

// Registered reports whether the class of instance has a spec.
func (r *Registry) Registered(instance any) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.classes[classOf(instance)]
	return ok
}

// classOf reduces an instance to its class key, unwrapping pointers so that
// *Record and Record register and look up identically.
func classOf(instance any) reflect.Type {
	t := reflect.TypeOf(instance)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
