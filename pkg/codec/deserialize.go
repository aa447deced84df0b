package codec

import (
	"reflect"

	"github.com/matzehuels/objgraph/pkg/envelope"
	"github.com/matzehuels/objgraph/pkg/errors"
	"github.com/matzehuels/objgraph/pkg/object"
	"github.com/matzehuels/objgraph/pkg/registry"
)

type buildState uint8

const (
	unbuilt buildState = iota
	inProgress
	built
)

// Deserialize rebuilds the graph described by env and returns its root.
//
// Named references resolve through reg. Every record gets a skeleton before
// any payload is decoded, so local references may point forward or back.
// Ancestry among records must be acyclic.
func Deserialize(env *envelope.Envelope, reg *registry.Registry, dispatch *Dispatch) (any, error) {
	d := &decoder{
		env:       env,
		reg:       reg,
		dispatch:  dispatch,
		skeletons: make([]any, len(env.Records)),
		codecs:    make([]Codec, len(env.Records)),
		state:     make([]buildState, len(env.Records)),
	}

	for i := range env.Records {
		if err := d.build(i); err != nil {
			return nil, err
		}
	}
	for i, r := range env.Records {
		if err := d.codecs[i].Decode(d.skeletons[i], r.Payload, d.deref); err != nil {
			return nil, errors.Wrap(codeOr(err, errors.ErrCodeMalformedRecord), err, "record %d", i)
		}
	}
	return d.deref(env.Root)
}

type decoder struct {
	env       *envelope.Envelope
	reg       *registry.Registry
	dispatch  *Dispatch
	skeletons []any
	codecs    []Codec
	state     []buildState
}

// build creates the skeleton of record i after the skeleton of its local
// ancestor, if any.
func (d *decoder) build(i int) error {
	switch d.state[i] {
	case built:
		return nil
	case inProgress:
		return errors.New(errors.ErrCodeCircularAncestry, "record %d is its own ancestor", i)
	}
	d.state[i] = inProgress

	r := d.env.Records[i]
	var typ any
	switch r.Ancestry {
	case envelope.AncestryDefault:
		typ = object.DefaultPrototype
	case envelope.AncestryNone:
	case envelope.AncestryRef:
		switch r.Ancestor.Kind() {
		case envelope.KindNamed:
			name, _ := r.Ancestor.Name()
			entity, err := d.reg.Resolve(name)
			if err != nil {
				return errors.Wrap(errors.ErrCodeUnresolvedName, err, "record %d ancestor", i)
			}
			typ = entity
		case envelope.KindLocal:
			idx, _ := r.Ancestor.Index()
			if idx >= len(d.skeletons) {
				return errors.New(errors.ErrCodeOutOfRange, "record %d: ancestor ref %d out of range [0, %d)", i, idx, len(d.skeletons))
			}
			if err := d.build(idx); err != nil {
				return err
			}
			typ = d.skeletons[idx]
		default:
			return errors.New(errors.ErrCodeMalformedRecord, "record %d: ancestor %s is not a named or local reference", i, r.Ancestor)
		}
	default:
		return errors.New(errors.ErrCodeMalformedRecord, "record %d: unknown ancestry %d", i, r.Ancestry)
	}

	c := d.dispatch.Find(typ)
	skeleton, err := c.Initialize(typ)
	if err != nil {
		return errors.Wrap(codeOr(err, errors.ErrCodeMalformedRecord), err, "record %d", i)
	}
	if isNil(skeleton) {
		return errors.New(errors.ErrCodeMalformedRecord, "record %d: codec returned no instance", i)
	}
	d.skeletons[i], d.codecs[i], d.state[i] = skeleton, c, built
	return nil
}

func (d *decoder) deref(r envelope.Ref) (any, error) {
	switch r.Kind() {
	case envelope.KindAbsent:
		return object.Undefined, nil
	case envelope.KindNamed:
		name, _ := r.Name()
		return d.reg.Resolve(name)
	case envelope.KindLocal:
		i, _ := r.Index()
		if i >= len(d.skeletons) {
			return nil, errors.New(errors.ErrCodeOutOfRange, "local ref %d out of range [0, %d)", i, len(d.skeletons))
		}
		if d.state[i] != built {
			return nil, errors.New(errors.ErrCodeNotYetBuilt, "local ref %d has no instance yet", i)
		}
		return d.skeletons[i], nil
	}
	v, _ := r.Primitive()
	return v, nil
}

func codeOr(err error, fallback errors.Code) errors.Code {
	if code := errors.GetCode(err); code != "" {
		return code
	}
	return fallback
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Interface, reflect.Slice, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
