// Package envelope defines the portable representation of one serialized
// object graph and its JSON wire format.
//
// # Wire Format
//
// An envelope is a two-element array of the object-record table and the root
// reference:
//
//	[[records...], root]
//
// Each record holds a codec payload and, optionally, the reference of the
// record's ancestor (its type identity):
//
//	[payload]            default ancestor
//	[payload, null]      no ancestor
//	[payload, ["Vec2"]]  named ancestor
//	[payload, [3]]       local ancestor (record 3)
//
// A reference anywhere else is one of:
//
//	[]        absent (undefined)
//	null      null
//	"s" 1 true  bare primitive
//	["name"]  named reference into the symbolic registry
//	[index]   local reference into this envelope's record table
//
// Named and local references share a layout; JSON keeps them apart by the
// element type (string versus integer).
//
// # Reading and Writing
//
// Use [Parse] or [Read] to decode and [Envelope.Write] or [Envelope.ExportFile]
// to encode. Decoding checks the shape of every record and reference but not
// the consistency of local indexes; call [Envelope.Validate] for that.
//
// An Envelope is plain data. It is not safe for concurrent mutation but may be
// read from any number of goroutines.
package envelope
