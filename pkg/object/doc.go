// Package object provides the dynamic object model that objgraph snapshots.
//
// Go values have no runtime prototype chain, so the graphs objgraph encodes
// are built from a small set of explicit types:
//
//   - [Object]: a property bag with an explicit ancestor ([Object.Prototype])
//   - [Array]: an ordered element list
//   - [Map]: an insertion-ordered, identity-keyed map
//   - [Set]: an insertion-ordered, identity-keyed set
//
// Any other pointer or map type can take part in a graph too, as long as its
// type is registered with a codec (see package codec).
//
// # Ancestry
//
// Every [Object] has an ancestor: [DefaultPrototype] (the universal default,
// what [New] uses), another *Object, or nil for "no ancestor":
//
//	base := object.NewWithPrototype(nil)
//	child := object.NewWithPrototype(base)
//	base.Set("greeting", "hi")
//	v, _ := child.Get("greeting") // "hi", found on the ancestor
//
// # Properties
//
// Properties carry [Attributes] (writable, enumerable, configurable). Data
// properties hold a value; accessor properties hold a getter and/or setter
// and are evaluated against the receiving object. Symbol-keyed properties
// are supported for in-process use but have no portable representation.
//
// # Absent Values
//
// [Undefined] is the absent value, distinct from nil (null). Reading a
// missing property or an array hole yields Undefined.
//
// # Concurrency
//
// None of the types in this package are safe for concurrent mutation.
package object
