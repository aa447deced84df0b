package object

import (
	"slices"

	"github.com/matzehuels/objgraph/pkg/errors"
)

// Attributes are the mutability flags of a property.
type Attributes struct {
	Writable     bool
	Enumerable   bool
	Configurable bool
}

// DefaultAttributes is the attribute set of plainly assigned properties.
var DefaultAttributes = Attributes{Writable: true, Enumerable: true, Configurable: true}

// Property is a single own property of an [Object].
//
// A data property holds Value. An accessor property has a Getter and/or a
// Setter, both called with the object the property was read from or
// assigned on; its Value and Writable fields are ignored.
type Property struct {
	Value  any
	Getter func(receiver *Object) any
	Setter func(receiver *Object, v any)
	Attributes
}

// IsAccessor reports whether p is an accessor property.
func (p Property) IsAccessor() bool {
	return p.Getter != nil || p.Setter != nil
}

// Object is a property bag with an explicit ancestor.
//
// Own string keys keep insertion order.
type Object struct {
	proto   *Object
	keys    []string
	props   map[string]*Property
	symbols []*Symbol
	symvals map[*Symbol]any
}

// DefaultPrototype is the universal default ancestor. Objects created with
// [New] inherit from it; it has no ancestor itself.
var DefaultPrototype = &Object{}

// New creates an empty object whose ancestor is [DefaultPrototype].
func New() *Object {
	return &Object{proto: DefaultPrototype}
}

// NewWithPrototype creates an empty object with the given ancestor.
// A nil proto creates an object with no ancestor at all.
func NewWithPrototype(proto *Object) *Object {
	return &Object{proto: proto}
}

// Prototype returns the ancestor of o, or nil if it has none.
func (o *Object) Prototype() *Object {
	return o.proto
}

// SetPrototype replaces the ancestor of o. It fails if the new chain would
// lead back to o.
func (o *Object) SetPrototype(proto *Object) error {
	for p := proto; p != nil; p = p.proto {
		if p == o {
			return errors.New(errors.ErrCodeCircularAncestry, "prototype chain would cycle through the object")
		}
	}
	o.proto = proto
	return nil
}

// Define creates or redefines an own data property. Redefining a
// non-configurable property fails.
func (o *Object) Define(key string, value any, attrs Attributes) error {
	return o.define(key, &Property{Value: value, Attributes: attrs})
}

// DefineAccessor creates or redefines an own accessor property. Either
// function may be nil, but not both.
func (o *Object) DefineAccessor(key string, get func(*Object) any, set func(*Object, any), attrs Attributes) error {
	if get == nil && set == nil {
		return errors.New(errors.ErrCodeInvalidInput, "accessor %q needs a getter or a setter", key)
	}
	return o.define(key, &Property{Getter: get, Setter: set, Attributes: attrs})
}

func (o *Object) define(key string, p *Property) error {
	if existing, ok := o.props[key]; ok {
		if !existing.Configurable {
			return errors.New(errors.ErrCodeInvalidInput, "property %q is not configurable", key)
		}
		o.props[key] = p
		return nil
	}
	if o.props == nil {
		o.props = make(map[string]*Property)
	}
	o.props[key] = p
	o.keys = append(o.keys, key)
	return nil
}

// Set assigns v to key the way a plain assignment would: an own or
// inherited setter is invoked, a non-writable own or inherited data
// property blocks the assignment, and otherwise an own data property with
// [DefaultAttributes] is created or updated. It reports whether the
// assignment took effect.
func (o *Object) Set(key string, v any) bool {
	if p, ok := o.props[key]; ok {
		switch {
		case p.IsAccessor():
			if p.Setter == nil {
				return false
			}
			p.Setter(o, v)
			return true
		case !p.Writable:
			return false
		}
		p.Value = v
		return true
	}

	for a := o.proto; a != nil; a = a.proto {
		p, ok := a.props[key]
		if !ok {
			continue
		}
		if p.IsAccessor() {
			if p.Setter == nil {
				return false
			}
			p.Setter(o, v)
			return true
		}
		if !p.Writable {
			return false
		}
		break
	}

	_ = o.define(key, &Property{Value: v, Attributes: DefaultAttributes})
	return true
}

// Get reads key from o or, failing that, from its ancestors. Getters run
// with o as the receiver. Missing keys yield [Undefined] and false.
func (o *Object) Get(key string) (any, bool) {
	for a := o; a != nil; a = a.proto {
		p, ok := a.props[key]
		if !ok {
			continue
		}
		if p.IsAccessor() {
			if p.Getter == nil {
				return Undefined, true
			}
			return p.Getter(o), true
		}
		return p.Value, true
	}
	return Undefined, false
}

// Own returns the own property stored under key.
func (o *Object) Own(key string) (Property, bool) {
	p, ok := o.props[key]
	if !ok {
		return Property{}, false
	}
	return *p, true
}

// Has reports whether key is present on o or any of its ancestors.
func (o *Object) Has(key string) bool {
	for a := o; a != nil; a = a.proto {
		if _, ok := a.props[key]; ok {
			return true
		}
	}
	return false
}

// Keys returns the own string keys of o in insertion order, including
// non-enumerable ones.
func (o *Object) Keys() []string {
	return slices.Clone(o.keys)
}

// Len returns the number of own string-keyed properties.
func (o *Object) Len() int {
	return len(o.keys)
}

// Delete removes an own property. Non-configurable properties are kept
// and Delete reports false.
func (o *Object) Delete(key string) bool {
	p, ok := o.props[key]
	if !ok {
		return true
	}
	if !p.Configurable {
		return false
	}
	delete(o.props, key)
	o.keys = slices.DeleteFunc(o.keys, func(k string) bool { return k == key })
	return true
}

// SetSymbol stores a symbol-keyed property.
func (o *Object) SetSymbol(s *Symbol, v any) {
	if o.symvals == nil {
		o.symvals = make(map[*Symbol]any)
	}
	if _, ok := o.symvals[s]; !ok {
		o.symbols = append(o.symbols, s)
	}
	o.symvals[s] = v
}

// Symbol reads a symbol-keyed own property.
func (o *Object) Symbol(s *Symbol) (any, bool) {
	v, ok := o.symvals[s]
	if !ok {
		return Undefined, false
	}
	return v, true
}

// Symbols returns the own symbol keys of o in insertion order.
func (o *Object) Symbols() []*Symbol {
	return slices.Clone(o.symbols)
}
