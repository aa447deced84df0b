// Package pkg holds the objgraph libraries.
//
// # Overview
//
// objgraph turns in-memory object graphs (shared references, cycles, custom
// ancestry and registered native types) into a portable JSON envelope and
// rebuilds equivalent graphs from it. The libraries fall into three groups:
//
//  1. Model and codec: [object], [registry], [envelope], [codec]
//  2. Persistence: [store], [snapshot]
//  3. Surfaces: [render], [server], [config], [observability]
//
// # Architecture
//
//	object graph
//	     ↓
//	[codec] Serializer (registry lookup, per-type codec dispatch)
//	     ↓
//	[envelope] [records, root]  →  [render] DOT/SVG
//	     ↓
//	[snapshot] Runner  →  [store] memory, file, Redis, MongoDB
//	     ↓
//	[server] HTTP API
//
// # Quick Start
//
//	s := codec.New()
//	root := object.New()
//	root.Set("self", root)
//
//	data, _ := s.Marshal(root)   // [[[{"self":[[0]]}]],[0]]
//	back, _ := s.Unmarshal(data)
//
// Named entities (prototypes, functions, native types) must be registered
// before the first Serialize or Deserialize call; the registry freezes on
// first use.
//
// [object]: github.com/matzehuels/objgraph/pkg/object
// [registry]: github.com/matzehuels/objgraph/pkg/registry
// [envelope]: github.com/matzehuels/objgraph/pkg/envelope
// [codec]: github.com/matzehuels/objgraph/pkg/codec
// [store]: github.com/matzehuels/objgraph/pkg/store
// [snapshot]: github.com/matzehuels/objgraph/pkg/snapshot
// [render]: github.com/matzehuels/objgraph/pkg/render
// [server]: github.com/matzehuels/objgraph/pkg/server
// [config]: github.com/matzehuels/objgraph/pkg/config
// [observability]: github.com/matzehuels/objgraph/pkg/observability
package pkg
