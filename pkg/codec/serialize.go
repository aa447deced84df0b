package codec

import (
	"encoding/json"
	"math"
	"math/big"
	"reflect"

	"github.com/matzehuels/objgraph/pkg/envelope"
	"github.com/matzehuels/objgraph/pkg/errors"
	"github.com/matzehuels/objgraph/pkg/object"
	"github.com/matzehuels/objgraph/pkg/registry"
)

// DefaultMaxDepth is the default recursion budget of [Serialize]. It bounds
// nesting depth, not the number of objects.
const DefaultMaxDepth = 20

// maxSafeInteger is the largest integer every float64 consumer reads back
// exactly.
const maxSafeInteger = 1 << 53

// Serialize encodes the graph reachable from root.
//
// Entities bound in reg are referenced by name. Every other composite value
// gets one record, in first-encounter order, encoded by the codec dispatch
// selects for its type identity. maxDepth bounds the recursion depth; a value
// nested deeper fails with TOO_DEEP.
func Serialize(root any, reg *registry.Registry, dispatch *Dispatch, maxDepth int) (*envelope.Envelope, error) {
	e := &encoder{
		reg:      reg,
		dispatch: dispatch,
		session:  registry.NewSession(),
		maxDepth: maxDepth,
	}
	ref, err := e.encode(root, maxDepth)
	if err != nil {
		return nil, err
	}
	return &envelope.Envelope{Records: e.records, Root: ref}, nil
}

type encoder struct {
	reg      *registry.Registry
	dispatch *Dispatch
	session  *registry.Session
	records  []envelope.Record
	maxDepth int
}

func (e *encoder) encode(v any, depth int) (envelope.Ref, error) {
	if depth <= 0 {
		return envelope.Ref{}, errors.New(errors.ErrCodeTooDeep, "graph exceeds depth %d at %T", e.maxDepth, v)
	}

	switch x := v.(type) {
	case nil:
		return envelope.NullRef(), nil
	case object.UndefinedType:
		return envelope.Ref{}, nil
	case *object.Symbol, *big.Int, *big.Float, *big.Rat:
		return envelope.Ref{}, errors.New(errors.ErrCodeUnsupportedType, "%T has no portable representation", v)
	case reflect.Type:
		if name, ok := e.reg.NameOf(x); ok {
			return envelope.NamedRef(name), nil
		}
		return envelope.Ref{}, errors.New(errors.ErrCodeUnsupportedType, "type %s is not registered", x)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return envelope.StringRef(rv.String()), nil
	case reflect.Bool:
		return envelope.BoolRef(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n > maxSafeInteger || n < -maxSafeInteger {
			return envelope.Ref{}, errors.New(errors.ErrCodeUnsupportedType, "integer %d exceeds 2^53", n)
		}
		return envelope.NumberRef(float64(n)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := rv.Uint()
		if n > maxSafeInteger {
			return envelope.Ref{}, errors.New(errors.ErrCodeUnsupportedType, "integer %d exceeds 2^53", n)
		}
		return envelope.NumberRef(float64(n)), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return envelope.Ref{}, errors.New(errors.ErrCodeUnsupportedType, "non-finite number %v", f)
		}
		return envelope.NumberRef(f), nil
	case reflect.Func:
		if rv.IsNil() {
			return envelope.NullRef(), nil
		}
		if name, ok := e.reg.NameOf(v); ok {
			return envelope.NamedRef(name), nil
		}
		return envelope.Ref{}, errors.New(errors.ErrCodeUnregisteredCallable, "func %s is not registered", rv.Type())
	case reflect.Pointer, reflect.Map:
		if rv.IsNil() {
			return envelope.NullRef(), nil
		}
		return e.encodeComposite(v, depth)
	}
	return envelope.Ref{}, errors.New(errors.ErrCodeUnsupportedType, "%s has no portable representation", rv.Type())
}

func (e *encoder) encodeComposite(v any, depth int) (envelope.Ref, error) {
	if name, ok := e.reg.NameOf(v); ok {
		return envelope.NamedRef(name), nil
	}
	if i, ok := e.session.Index(v); ok {
		return envelope.LocalRef(i), nil
	}

	// Reserve the slot before recursing so cycles resolve to this index.
	i := e.session.Intern(v)
	e.records = append(e.records, envelope.Record{})

	var (
		rec envelope.Record
		typ any
	)
	if o, ok := v.(*object.Object); ok {
		switch p := o.Prototype(); p {
		case object.DefaultPrototype:
			typ = p
		case nil:
			rec.Ancestry = envelope.AncestryNone
		default:
			ref, err := e.encode(p, depth-1)
			if err != nil {
				return envelope.Ref{}, err
			}
			rec, typ = envelope.DerivedRecord(nil, ref), p
		}
	} else {
		t := reflect.TypeOf(v)
		name, ok := e.reg.NameOf(t)
		if !ok {
			return envelope.Ref{}, errors.New(errors.ErrCodeUnsupportedType, "type %s is not registered", t)
		}
		rec, typ = envelope.DerivedRecord(nil, envelope.NamedRef(name)), t
	}

	payload, err := e.dispatch.Find(typ).Encode(v, func(child any) (envelope.Ref, error) {
		return e.encode(child, depth-1)
	})
	if err != nil {
		return envelope.Ref{}, err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return envelope.Ref{}, errors.Wrap(errors.ErrCodeMalformedObject, err, "payload of %T", v)
	}
	rec.Payload = data
	e.records[i] = rec
	return envelope.LocalRef(i), nil
}
