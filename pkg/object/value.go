package object

import "reflect"

// UndefinedType is the type of [Undefined].
type UndefinedType struct{}

// Undefined is the absent value. It is distinct from nil, which encodes as null.
var Undefined = UndefinedType{}

// String returns "undefined".
func (UndefinedType) String() string { return "undefined" }

// IsUndefined reports whether v is [Undefined].
func IsUndefined(v any) bool {
	_, ok := v.(UndefinedType)
	return ok
}

// Symbol is a unique identifier. Two symbols are equal only if they are the
// same pointer, whatever their descriptions.
type Symbol struct {
	description string
}

// NewSymbol creates a new, unique symbol.
func NewSymbol(description string) *Symbol {
	return &Symbol{description: description}
}

// Description returns the description given to [NewSymbol].
func (s *Symbol) Description() string { return s.description }

// String returns the symbol in "Symbol(description)" form.
func (s *Symbol) String() string { return "Symbol(" + s.description + ")" }

// NormalizeKey maps numeric keys onto float64 so that keys survive a
// round trip through the envelope, where every number decodes as float64.
// Non-numeric keys are returned unchanged.
func NormalizeKey(k any) any {
	switch k.(type) {
	case nil, string, bool, float64:
		return k
	}
	rv := reflect.ValueOf(k)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return k
}
