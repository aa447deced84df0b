package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/matzehuels/objgraph/pkg/errors"
	"github.com/matzehuels/objgraph/pkg/object"
)

// TagName is the struct tag read by [NewStructCodec].
const TagName = "objgraph"

type structField struct {
	name  string
	index int
	typ   reflect.Type
}

// StructCodec encodes pointers to structs by reflection. Its payload is a
// [Properties] object with one entry per field.
type StructCodec struct {
	typ    reflect.Type
	fields []structField
	byName map[string]int
}

// NewStructCodec builds a codec for t, which must be a pointer to a struct.
//
// Exported fields are encoded under their name, or under the name given by
// an `objgraph:"name"` tag; `objgraph:"-"` skips a field. Field kinds other
// than bool, numbers, string, interface, pointer, map and func are rejected.
func NewStructCodec(t reflect.Type) (*StructCodec, error) {
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return nil, errors.New(errors.ErrCodeInvalidInput, "struct codec needs a pointer to a struct, got %v", t)
	}

	c := &StructCodec{typ: t, byName: make(map[string]int)}
	st := t.Elem()
	for i := range st.NumField() {
		f := st.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup(TagName); ok {
			tag, _, _ = strings.Cut(tag, ",")
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		if !supportedField(f.Type) {
			return nil, errors.New(errors.ErrCodeMalformedObject, "%s.%s: field kind %s is not supported", st, f.Name, f.Type.Kind())
		}
		if _, dup := c.byName[name]; dup {
			return nil, errors.New(errors.ErrCodeMalformedObject, "%s: duplicate field name %q", st, name)
		}
		c.byName[name] = len(c.fields)
		c.fields = append(c.fields, structField{name: name, index: i, typ: f.Type})
	}
	return c, nil
}

func supportedField(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Pointer, reflect.Map, reflect.Func:
		return true
	}
	return false
}

// Type returns the pointer type the codec serves.
func (c *StructCodec) Type() reflect.Type { return c.typ }

func (c *StructCodec) Encode(v any, recurse Recurse) (any, error) {
	rv := reflect.ValueOf(v)
	if rv.Type() != c.typ {
		return nil, errors.New(errors.ErrCodeMalformedObject, "codec for %s cannot encode %T", c.typ, v)
	}
	sv := rv.Elem()
	props := make(Properties, 0, len(c.fields))
	for _, f := range c.fields {
		ref, err := recurse(sv.Field(f.index).Interface())
		if err != nil {
			return nil, err
		}
		props = append(props, PropertyEntry{Key: f.name, Value: ref, Attributes: object.DefaultAttributes})
	}
	return props, nil
}

func (c *StructCodec) Initialize(any) (any, error) {
	return reflect.New(c.typ.Elem()).Interface(), nil
}

func (c *StructCodec) Decode(skeleton any, payload json.RawMessage, deref Deref) error {
	rv := reflect.ValueOf(skeleton)
	if rv.Type() != c.typ {
		return errors.New(errors.ErrCodeMalformedRecord, "codec for %s cannot decode into %T", c.typ, skeleton)
	}
	props, err := ParseProperties(payload)
	if err != nil {
		return err
	}
	sv := rv.Elem()
	for _, e := range props {
		i, ok := c.byName[e.Key]
		if !ok {
			return errors.New(errors.ErrCodeMalformedRecord, "%s has no field %q", c.typ.Elem(), e.Key)
		}
		v, err := deref(e.Value)
		if err != nil {
			return err
		}
		f := c.fields[i]
		if err := assign(sv.Field(f.index), v); err != nil {
			return errors.Wrap(errors.ErrCodeMalformedRecord, err, "%s.%s", c.typ.Elem(), f.name)
		}
	}
	return nil
}

// assign stores a decoded value into a field, converting numbers and named
// primitive kinds.
func assign(field reflect.Value, v any) error {
	if v == nil || object.IsUndefined(v) {
		field.SetZero()
		return nil
	}
	ft := field.Type()

	switch ft.Kind() {
	case reflect.Bool:
		b, ok := v.(bool)
		if !ok {
			return mismatch(ft, v)
		}
		field.SetBool(b)
		return nil
	case reflect.String:
		s, ok := v.(string)
		if !ok {
			return mismatch(ft, v)
		}
		field.SetString(s)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) || math.Abs(f) > maxSafeInteger || field.OverflowInt(int64(f)) {
			return mismatch(ft, v)
		}
		field.SetInt(int64(f))
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f, ok := v.(float64)
		if !ok || f < 0 || f != math.Trunc(f) || f > maxSafeInteger || field.OverflowUint(uint64(f)) {
			return mismatch(ft, v)
		}
		field.SetUint(uint64(f))
		return nil
	case reflect.Float32, reflect.Float64:
		f, ok := v.(float64)
		if !ok || field.OverflowFloat(f) {
			return mismatch(ft, v)
		}
		field.SetFloat(f)
		return nil
	}

	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(ft) {
		return mismatch(ft, v)
	}
	field.Set(rv)
	return nil
}

func mismatch(ft reflect.Type, v any) error {
	return fmt.Errorf("cannot assign %T to %s", v, ft)
}
