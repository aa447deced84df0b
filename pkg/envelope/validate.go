package envelope

import (
	"github.com/matzehuels/objgraph/pkg/errors"
)

// Validate checks the structural consistency of the envelope without a
// registry: every local ancestor and a local root must point inside the record
// table, and local ancestry must be acyclic. Named references are not
// resolved and payloads are not inspected.
func (e *Envelope) Validate() error {
	n := len(e.Records)
	for i, r := range e.Records {
		if r.Ancestry != AncestryRef {
			continue
		}
		if idx, ok := r.Ancestor.Index(); ok && idx >= n {
			return errors.New(errors.ErrCodeOutOfRange, "record %d: ancestor ref %d out of range [0, %d)", i, idx, n)
		}
	}
	if idx, ok := e.Root.Index(); ok && idx >= n {
		return errors.New(errors.ErrCodeOutOfRange, "root ref %d out of range [0, %d)", idx, n)
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]uint8, n)
	for start := range e.Records {
		i := start
		var path []int
		for state[i] == unvisited {
			state[i] = visiting
			path = append(path, i)
			next, ok := e.Records[i].localAncestor()
			if !ok {
				break
			}
			if state[next] == visiting {
				return errors.New(errors.ErrCodeCircularAncestry, "record %d: ancestry cycle through record %d", start, next)
			}
			i = next
		}
		for _, p := range path {
			state[p] = done
		}
	}
	return nil
}

func (r Record) localAncestor() (int, bool) {
	if r.Ancestry != AncestryRef {
		return 0, false
	}
	return r.Ancestor.Index()
}
