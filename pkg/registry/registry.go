// Package registry provides the two identity registries used by the codec.
//
// A [Registry] is the symbolic registry: a bijection between stable names and
// long-lived shared entities (prototype objects, registered types, funcs).
// It is built once during setup, then frozen and shared read-only by every
// serialize and deserialize call.
//
// A [Session] is the per-call identity registry: it assigns dense indexes to
// the objects met during one serialize call, so that aliases and cycles are
// encoded as references to a single record.
//
// Both registries compare entities by identity ([KeyOf]), never by value.
package registry

import (
	"slices"
	"sync/atomic"

	"github.com/matzehuels/objgraph/pkg/errors"
)

// Registry is a bidirectional name/entity mapping. Bindings are permanent.
//
// Registration is single-threaded setup: call [Registry.Freeze] once it is
// done, after which lookups are safe from any number of goroutines and any
// further registration fails.
type Registry struct {
	byName map[string]any
	byKey  map[Key]string
	frozen atomic.Bool
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byName: make(map[string]any),
		byKey:  make(map[Key]string),
	}
}

// Register binds name to entity. It fails if the name is empty, uses the
// reserved prefix or is already bound, if the entity is already bound under
// any name, or if the entity has no identity.
func (r *Registry) Register(name string, entity any) error {
	return r.register(name, entity, false)
}

// RegisterBuiltin is Register without the reserved-prefix check. It is meant
// for entities the codec itself ships with.
func (r *Registry) RegisterBuiltin(name string, entity any) error {
	return r.register(name, entity, true)
}

func (r *Registry) register(name string, entity any, reserved bool) error {
	if r.frozen.Load() {
		return errors.New(errors.ErrCodeRegistryFrozen, "cannot register %q: registry is frozen", name)
	}
	if err := errors.ValidateName(name, reserved); err != nil {
		return err
	}
	key, ok := KeyOf(entity)
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "cannot register %q: %T has no identity", name, entity)
	}
	if existing, ok := r.byKey[key]; ok {
		return errors.New(errors.ErrCodeNameConflict, "entity %s is already registered under %q", key, existing)
	}
	if _, ok := r.byName[name]; ok {
		return errors.New(errors.ErrCodeNameConflict, "name %q is taken", name)
	}
	r.byName[name] = entity
	r.byKey[key] = name
	return nil
}

// Resolve returns the entity bound to name.
func (r *Registry) Resolve(name string) (any, error) {
	v, ok := r.byName[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnresolvedName, "global ref %q not found", name)
	}
	return v, nil
}

// NameOf returns the name entity is bound under. Unbound entities, which are
// local to the graph being encoded, report false.
func (r *Registry) NameOf(entity any) (string, bool) {
	key, ok := KeyOf(entity)
	if !ok {
		return "", false
	}
	name, ok := r.byKey[key]
	return name, ok
}

// NameOfKey is NameOf for a precomputed identity.
func (r *Registry) NameOfKey(key Key) (string, bool) {
	name, ok := r.byKey[key]
	return name, ok
}

// Names returns all bound names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of bindings.
func (r *Registry) Len() int { return len(r.byName) }

// Freeze ends the setup phase. It is idempotent.
func (r *Registry) Freeze() { r.frozen.Store(true) }

// Frozen reports whether [Registry.Freeze] has been called.
func (r *Registry) Frozen() bool { return r.frozen.Load() }
