// Package codec converts object graphs to envelopes and back.
//
// # Overview
//
// [Serialize] walks a graph depth-first and emits one record per composite
// value, in first-encounter order. Aliased values are emitted once and
// referenced by index afterwards, so shared sub-objects and cycles survive
// the round trip. Entities bound in the symbolic registry (prototypes,
// registered types, funcs) are never encoded; they are referenced by name.
//
// [Deserialize] rebuilds the graph in two phases. The first phase creates a
// skeleton for every record, resolving ancestry so each skeleton has the right
// type before any content exists. The second phase asks each record's codec to
// populate its skeleton. Because every skeleton exists before any payload is
// decoded, forward references and self references resolve trivially.
//
// # Codecs
//
// A [Codec] is the encode/initialize/decode triple for one type identity.
// [Dispatch] selects it and falls back to [ObjectCodec], which encodes
// *object.Object property bags. Containers from package object and
// pointer-to-struct types registered without a codec are covered by built-in
// codecs.
//
// # Serializer
//
// [Serializer] bundles a registry, a dispatch table and a depth budget:
//
//	s := codec.New()
//	if err := s.Register("Vec2", vec2Proto, vec2Codec); err != nil {
//	    return err
//	}
//	data, err := s.Marshal(graph)
//
// Registration is setup. The first Serialize or Deserialize freezes the
// registry; from then on a Serializer is safe for concurrent use.
package codec
