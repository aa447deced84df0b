package codec

import (
	"encoding/json"

	"github.com/matzehuels/objgraph/pkg/errors"
	"github.com/matzehuels/objgraph/pkg/object"
)

// ObjectCodec is the default property-bag codec for *object.Object.
//
// Encode emits every own string-keyed data property in insertion order.
// Objects with symbol-keyed or accessor properties cannot be represented
// and need a custom codec.
type ObjectCodec struct{}

func (ObjectCodec) Encode(v any, recurse Recurse) (any, error) {
	o, ok := v.(*object.Object)
	if !ok {
		return nil, errors.New(errors.ErrCodeMalformedObject, "default codec cannot encode %T; register a codec for its type", v)
	}
	if syms := o.Symbols(); len(syms) > 0 {
		return nil, errors.New(errors.ErrCodeMalformedObject, "symbol-keyed property %s needs a custom codec", syms[0])
	}

	props := make(Properties, 0, o.Len())
	for _, key := range o.Keys() {
		p, _ := o.Own(key)
		if p.IsAccessor() {
			return nil, errors.New(errors.ErrCodeMalformedObject, "accessor property %q needs a custom codec", key)
		}
		ref, err := recurse(p.Value)
		if err != nil {
			return nil, err
		}
		props = append(props, PropertyEntry{Key: key, Value: ref, Attributes: p.Attributes})
	}
	return props, nil
}

func (ObjectCodec) Initialize(typ any) (any, error) {
	switch t := typ.(type) {
	case nil:
		return object.NewWithPrototype(nil), nil
	case *object.Object:
		return object.NewWithPrototype(t), nil
	}
	return nil, errors.New(errors.ErrCodeMalformedRecord, "default codec cannot instantiate type %T", typ)
}

func (ObjectCodec) Decode(skeleton any, payload json.RawMessage, deref Deref) error {
	o, ok := skeleton.(*object.Object)
	if !ok {
		return errors.New(errors.ErrCodeMalformedRecord, "default codec cannot decode into %T", skeleton)
	}
	props, err := ParseProperties(payload)
	if err != nil {
		return err
	}
	for _, e := range props {
		v, err := deref(e.Value)
		if err != nil {
			return err
		}
		if err := o.Define(e.Key, v, e.Attributes); err != nil {
			return errors.Wrap(errors.ErrCodeMalformedRecord, err, "property %q", e.Key)
		}
	}
	return nil
}
