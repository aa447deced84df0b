package codec

import (
	"reflect"

	"github.com/matzehuels/objgraph/pkg/envelope"
	"github.com/matzehuels/objgraph/pkg/errors"
	"github.com/matzehuels/objgraph/pkg/object"
)

// Reserved names of the built-in entities.
const (
	NameObject = "_Object"
	NameArray  = "_Array"
	NameMap    = "_Map"
	NameSet    = "_Set"
)

type builtin struct {
	name   string
	entity any
	codec  Codec
}

func builtins() []builtin {
	return []builtin{
		{NameObject, object.DefaultPrototype, ObjectCodec{}},
		{NameArray, reflect.TypeFor[*object.Array](), arrayCodec},
		{NameMap, reflect.TypeFor[*object.Map](), mapCodec},
		{NameSet, reflect.TypeFor[*object.Set](), setCodec},
	}
}

var arrayCodec = NewTyped(
	func(a *object.Array, recurse Recurse) ([]envelope.Ref, error) {
		refs := make([]envelope.Ref, 0, a.Len())
		for _, v := range a.All() {
			ref, err := recurse(v)
			if err != nil {
				return nil, err
			}
			refs = append(refs, ref)
		}
		return refs, nil
	},
	func(any) (*object.Array, error) { return object.NewArray(), nil },
	func(a *object.Array, refs []envelope.Ref, deref Deref) error {
		for _, ref := range refs {
			v, err := deref(ref)
			if err != nil {
				return err
			}
			a.Push(v)
		}
		return nil
	},
)

var mapCodec = NewTyped(
	func(m *object.Map, recurse Recurse) ([][]envelope.Ref, error) {
		pairs := make([][]envelope.Ref, 0, m.Len())
		for k, v := range m.All() {
			kr, err := recurse(k)
			if err != nil {
				return nil, err
			}
			vr, err := recurse(v)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, []envelope.Ref{kr, vr})
		}
		return pairs, nil
	},
	func(any) (*object.Map, error) { return object.NewMap(), nil },
	func(m *object.Map, pairs [][]envelope.Ref, deref Deref) error {
		for j, p := range pairs {
			if len(p) != 2 {
				return errors.New(errors.ErrCodeMalformedRecord, "map entry %d has %d elements, want 2", j, len(p))
			}
			k, err := deref(p[0])
			if err != nil {
				return err
			}
			if !hashable(k) {
				return errors.New(errors.ErrCodeMalformedRecord, "map key %d of type %T is not hashable", j, k)
			}
			v, err := deref(p[1])
			if err != nil {
				return err
			}
			m.Set(k, v)
		}
		return nil
	},
)

var setCodec = NewTyped(
	func(s *object.Set, recurse Recurse) ([]envelope.Ref, error) {
		refs := make([]envelope.Ref, 0, s.Len())
		for v := range s.All() {
			ref, err := recurse(v)
			if err != nil {
				return nil, err
			}
			refs = append(refs, ref)
		}
		return refs, nil
	},
	func(any) (*object.Set, error) { return object.NewSet(), nil },
	func(s *object.Set, refs []envelope.Ref, deref Deref) error {
		for j, ref := range refs {
			v, err := deref(ref)
			if err != nil {
				return err
			}
			if !hashable(v) {
				return errors.New(errors.ErrCodeMalformedRecord, "set member %d of type %T is not hashable", j, v)
			}
			s.Add(v)
		}
		return nil
	},
)

// hashable reports whether v can be used as a Map key or Set member.
func hashable(v any) bool {
	return v == nil || reflect.TypeOf(v).Comparable()
}
