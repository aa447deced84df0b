package codec

import (
	"encoding/json"
	"reflect"

	"github.com/matzehuels/objgraph/pkg/envelope"
	"github.com/matzehuels/objgraph/pkg/errors"
)

// Recurse encodes a child value within the current serialize call and
// returns its reference. Codecs must use it for every nested value so that
// identity and depth accounting stay with the caller's session.
type Recurse func(v any) (envelope.Ref, error)

// Deref resolves a reference within the current deserialize call. Local
// references resolve to skeletons that may not be populated yet.
type Deref func(r envelope.Ref) (any, error)

// Codec serializes the values of one type identity.
//
// Encode returns a JSON-marshalable payload for v. Initialize returns an
// empty instance for the given type identity (an ancestor object, a
// reflect.Type, or nil for no ancestor). Decode fills a skeleton returned by
// Initialize from its payload.
type Codec interface {
	Encode(v any, recurse Recurse) (any, error)
	Initialize(typ any) (any, error)
	Decode(skeleton any, payload json.RawMessage, deref Deref) error
}

// Funcs adapts three plain functions to [Codec].
type Funcs struct {
	EncodeFn     func(v any, recurse Recurse) (any, error)
	InitializeFn func(typ any) (any, error)
	DecodeFn     func(skeleton any, payload json.RawMessage, deref Deref) error
}

func (f Funcs) Encode(v any, recurse Recurse) (any, error) { return f.EncodeFn(v, recurse) }
func (f Funcs) Initialize(typ any) (any, error)            { return f.InitializeFn(typ) }
func (f Funcs) Decode(skeleton any, payload json.RawMessage, deref Deref) error {
	return f.DecodeFn(skeleton, payload, deref)
}

// typed is the Codec built by NewTyped.
type typed[T, P any] struct {
	encode     func(T, Recurse) (P, error)
	initialize func(typ any) (T, error)
	decode     func(T, P, Deref) error
}

// NewTyped builds a Codec for values of type T with payload type P. The
// payload is marshalled to JSON by the engine and unmarshalled into a P
// before decode is called.
func NewTyped[T, P any](
	encode func(v T, recurse Recurse) (P, error),
	initialize func(typ any) (T, error),
	decode func(skeleton T, payload P, deref Deref) error,
) Codec {
	return typed[T, P]{encode: encode, initialize: initialize, decode: decode}
}

func (c typed[T, P]) Encode(v any, recurse Recurse) (any, error) {
	t, ok := v.(T)
	if !ok {
		return nil, errors.New(errors.ErrCodeMalformedObject, "codec for %s cannot encode %T", typeName[T](), v)
	}
	return c.encode(t, recurse)
}

func (c typed[T, P]) Initialize(typ any) (any, error) {
	return c.initialize(typ)
}

func (c typed[T, P]) Decode(skeleton any, payload json.RawMessage, deref Deref) error {
	t, ok := skeleton.(T)
	if !ok {
		return errors.New(errors.ErrCodeMalformedRecord, "codec for %s cannot decode into %T", typeName[T](), skeleton)
	}
	var p P
	if err := json.Unmarshal(payload, &p); err != nil {
		return errors.Wrap(errors.ErrCodeMalformedRecord, err, "payload for %s", typeName[T]())
	}
	return c.decode(t, p, deref)
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
