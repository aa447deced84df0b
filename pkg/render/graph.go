package render

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/matzehuels/objgraph/pkg/codec"
	"github.com/matzehuels/objgraph/pkg/envelope"
	"github.com/matzehuels/objgraph/pkg/errors"
)

// NodeKind distinguishes record nodes from registry name nodes.
type NodeKind uint8

const (
	NodeRecord NodeKind = iota
	NodeNamed
)

// EdgeKind classifies how two nodes are related.
type EdgeKind uint8

const (
	EdgeAncestor EdgeKind = iota
	EdgeProperty
	EdgeElement
	EdgeKey
	EdgeValue
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeAncestor:
		return "ancestor"
	case EdgeProperty:
		return "property"
	case EdgeElement:
		return "element"
	case EdgeKey:
		return "key"
	case EdgeValue:
		return "value"
	}
	return "unknown"
}

// Field is a primitive member of a record, shown in detailed labels.
type Field struct {
	Name  string
	Value string
}

// Node is a record or a named entity.
type Node struct {
	ID   string
	Kind NodeKind
	// Index is the record index, or -1 for named nodes.
	Index int
	// Type is the ancestor name for records with a named ancestor, "object"
	// for the default ancestor, "orphan" for none and "derived" for a local
	// ancestor. For named nodes it is the registry name.
	Type   string
	Fields []Field
	Opaque bool
}

// Edge connects two nodes.
type Edge struct {
	From  string
	To    string
	Kind  EdgeKind
	Label string
}

// Graph is the node-link view of an envelope.
type Graph struct {
	Nodes []Node
	Edges []Edge
	// Root is the ID of the root node, or empty if the root is a primitive.
	Root string
	// RootValue is the root ref as written on the wire.
	RootValue string
}

// Build converts env into a graph. It fails if env does not validate.
func Build(env *envelope.Envelope) (*Graph, error) {
	if env == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "envelope is nil")
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}

	b := &builder{g: &Graph{}, named: make(map[string]bool)}
	for i := range env.Records {
		b.g.Nodes = append(b.g.Nodes, Node{ID: recordID(i), Kind: NodeRecord, Index: i})
	}
	for i, rec := range env.Records {
		if err := b.record(i, rec); err != nil {
			return nil, err
		}
	}

	b.g.RootValue = env.Root.String()
	b.g.Root = b.target(env.Root)
	return b.g, nil
}

type builder struct {
	g     *Graph
	named map[string]bool
}

func recordID(i int) string { return "r" + strconv.Itoa(i) }

func namedID(name string) string { return "n:" + name }

// target returns the node ID for an identity ref, creating named nodes on
// first use. Primitive refs have no node.
func (b *builder) target(r envelope.Ref) string {
	if i, ok := r.Index(); ok {
		return recordID(i)
	}
	name, ok := r.Name()
	if !ok {
		return ""
	}
	id := namedID(name)
	if !b.named[name] {
		b.named[name] = true
		b.g.Nodes = append(b.g.Nodes, Node{ID: id, Kind: NodeNamed, Index: -1, Type: name})
	}
	return id
}

func (b *builder) link(from int, to envelope.Ref, kind EdgeKind, label string) bool {
	id := b.target(to)
	if id == "" {
		return false
	}
	b.g.Edges = append(b.g.Edges, Edge{From: recordID(from), To: id, Kind: kind, Label: label})
	return true
}

func (b *builder) field(i int, name string, r envelope.Ref) {
	n := &b.g.Nodes[i]
	n.Fields = append(n.Fields, Field{Name: name, Value: r.String()})
}

func (b *builder) member(i int, r envelope.Ref, kind EdgeKind, label string) {
	if !b.link(i, r, kind, label) {
		b.field(i, label, r)
	}
}

func (b *builder) record(i int, rec envelope.Record) error {
	ancestor := ""
	switch rec.Ancestry {
	case envelope.AncestryDefault:
		b.g.Nodes[i].Type = "object"
	case envelope.AncestryNone:
		b.g.Nodes[i].Type = "orphan"
	case envelope.AncestryRef:
		if name, ok := rec.Ancestor.Name(); ok {
			ancestor = name
			b.g.Nodes[i].Type = name
		} else {
			b.g.Nodes[i].Type = "derived"
		}
		b.link(i, rec.Ancestor, EdgeAncestor, "")
	}

	switch ancestor {
	case codec.NameArray:
		return b.elements(i, rec.Payload, true)
	case codec.NameSet:
		return b.elements(i, rec.Payload, false)
	case codec.NameMap:
		return b.entries(i, rec.Payload)
	}

	props, err := codec.ParseProperties(rec.Payload)
	if err != nil {
		b.g.Nodes[i].Opaque = true
		return nil
	}
	for _, p := range props {
		b.member(i, p.Value, EdgeProperty, p.Key)
	}
	return nil
}

func (b *builder) elements(i int, payload json.RawMessage, indexed bool) error {
	var refs []envelope.Ref
	if err := json.Unmarshal(payload, &refs); err != nil {
		return errors.Wrap(errors.ErrCodeMalformedRecord, err, "record %d", i)
	}
	for j, r := range refs {
		label := ""
		if indexed {
			if r.Kind() == envelope.KindAbsent {
				continue
			}
			label = fmt.Sprintf("[%d]", j)
		}
		if !b.link(i, r, EdgeElement, label) {
			b.field(i, fmt.Sprintf("[%d]", j), r)
		}
	}
	return nil
}

func (b *builder) entries(i int, payload json.RawMessage) error {
	var pairs [][]envelope.Ref
	if err := json.Unmarshal(payload, &pairs); err != nil {
		return errors.Wrap(errors.ErrCodeMalformedRecord, err, "record %d", i)
	}
	for j, p := range pairs {
		if len(p) != 2 {
			return errors.New(errors.ErrCodeMalformedRecord, "record %d: entry %d has %d elements", i, j, len(p))
		}
		b.member(i, p[0], EdgeKey, fmt.Sprintf("key %d", j))
		b.member(i, p[1], EdgeValue, fmt.Sprintf("value %d", j))
	}
	return nil
}
