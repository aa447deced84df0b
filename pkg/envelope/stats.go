package envelope

import (
	"slices"
)

// Stats summarizes an envelope.
type Stats struct {
	Records         int      `json:"records"`
	DefaultAncestry int      `json:"default_ancestry"`
	NoAncestry      int      `json:"no_ancestry"`
	NamedAncestry   int      `json:"named_ancestry"`
	LocalAncestry   int      `json:"local_ancestry"`
	PayloadBytes    int      `json:"payload_bytes"`
	Root            string   `json:"root"`
	RootKind        string   `json:"root_kind"`
	Names           []string `json:"names"`
}

// Stats reports record counts by ancestry, total payload size, and the sorted
// set of registry names used by ancestors and the root.
func (e *Envelope) Stats() Stats {
	s := Stats{
		Records:  len(e.Records),
		Root:     e.Root.String(),
		RootKind: e.Root.Kind().String(),
		Names:    []string{},
	}
	seen := make(map[string]bool)
	addName := func(r Ref) {
		if name, ok := r.Name(); ok && !seen[name] {
			seen[name] = true
			s.Names = append(s.Names, name)
		}
	}

	for _, r := range e.Records {
		s.PayloadBytes += len(r.Payload)
		switch r.Ancestry {
		case AncestryDefault:
			s.DefaultAncestry++
		case AncestryNone:
			s.NoAncestry++
		case AncestryRef:
			if r.Ancestor.Kind() == KindNamed {
				s.NamedAncestry++
				addName(r.Ancestor)
			} else {
				s.LocalAncestry++
			}
		}
	}
	addName(e.Root)
	slices.Sort(s.Names)
	return s
}
