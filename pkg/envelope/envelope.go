package envelope

import (
	"bytes"
	"encoding/json"

	"github.com/matzehuels/objgraph/pkg/errors"
)

// Envelope is the portable representation of one serialized graph.
type Envelope struct {
	Records []Record
	Root    Ref
}

// Len returns the number of records.
func (e *Envelope) Len() int { return len(e.Records) }

// Record returns record i, failing with OUT_OF_RANGE.
func (e *Envelope) Record(i int) (Record, error) {
	if i < 0 || i >= len(e.Records) {
		return Record{}, errors.New(errors.ErrCodeOutOfRange, "local ref %d out of range [0, %d)", i, len(e.Records))
	}
	return e.Records[i], nil
}

// MarshalJSON implements json.Marshaler.
func (e *Envelope) MarshalJSON() ([]byte, error) {
	records := e.Records
	if records == nil {
		records = []Record{}
	}
	return json.Marshal([2]any{records, e.Root})
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return errors.Wrap(errors.ErrCodeMalformedRecord, err, "envelope is not an array")
	}
	if len(parts) != 2 {
		return errors.New(errors.ErrCodeMalformedRecord, "envelope has %d elements, want 2", len(parts))
	}

	head := bytes.TrimSpace(parts[0])
	if len(head) == 0 || head[0] != '[' {
		return errors.New(errors.ErrCodeMalformedRecord, "record table is not an array")
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(head, &raw); err != nil {
		return errors.Wrap(errors.ErrCodeMalformedRecord, err, "record table")
	}
	records := make([]Record, len(raw))
	for i, r := range raw {
		if err := records[i].UnmarshalJSON(r); err != nil {
			return errors.Wrap(errors.ErrCodeMalformedRecord, err, "record %d", i)
		}
	}

	root, err := parseRef(parts[1])
	if err != nil {
		return errors.Wrap(errors.ErrCodeMalformedRecord, err, "root")
	}
	e.Records, e.Root = records, root
	return nil
}
