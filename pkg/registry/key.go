package registry

import (
	"fmt"
	"reflect"
)

type keyKind uint8

const (
	keyValue keyKind = iota + 1
	keyType
)

// Key is the identity of an entity: the Go type plus address for pointers,
// maps, funcs and chans, or the type itself for reflect.Type tokens.
//
// Func identity is the code pointer, so closures created from the same
// function literal share one Key. Pointers to distinct zero-size values may
// share an address and therefore a Key.
type Key struct {
	kind keyKind
	typ  reflect.Type
	addr uintptr
}

// KeyOf returns the identity of v. Values without identity (nil, primitives,
// structs, slices, nil pointers) report false.
func KeyOf(v any) (Key, bool) {
	if v == nil {
		return Key{}, false
	}
	if t, ok := v.(reflect.Type); ok {
		return Key{kind: keyType, typ: t}, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		if rv.IsNil() {
			return Key{}, false
		}
		return Key{kind: keyValue, typ: rv.Type(), addr: rv.Pointer()}, true
	}
	return Key{}, false
}

// IsType reports whether the key identifies a reflect.Type token.
func (k Key) IsType() bool { return k.kind == keyType }

// Type returns the Go type of the keyed entity (or the token itself).
func (k Key) Type() reflect.Type { return k.typ }

// String returns a debug representation of the key.
func (k Key) String() string {
	switch k.kind {
	case keyType:
		return "type " + k.typ.String()
	case keyValue:
		return fmt.Sprintf("%s@%#x", k.typ, k.addr)
	}
	return "<none>"
}
