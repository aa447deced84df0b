// Package render visualizes envelopes as node-link diagrams.
//
// # Overview
//
// [Build] walks an envelope's record table without decoding it and produces a
// [Graph]: one node per record, one node per registry name the envelope
// mentions, and edges for ancestry, object properties and collection members.
// The graph can then be emitted as Graphviz DOT and rendered in-process:
//
//	g, err := render.Build(env)
//	dot := render.ToDOT(g, render.Options{Detailed: true})
//	svg, err := render.RenderSVG(ctx, dot)
//
// # Payload Interpretation
//
// Records whose ancestor is one of the built-in collection names are read as
// their collection payloads. Every other record is read as an object
// property map if its payload has that shape; payloads written by custom
// codecs that do not are shown as opaque nodes with no outgoing edges.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert SVG output with the external rsvg-convert tool
// from librsvg.
package render
