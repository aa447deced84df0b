package envelope

import (
	"bytes"
	"encoding/json"

	"github.com/matzehuels/objgraph/pkg/errors"
)

// Ancestry says how a record's ancestor is encoded.
type Ancestry uint8

const (
	// AncestryDefault means the universal default ancestor; the ancestor
	// slot is omitted on the wire.
	AncestryDefault Ancestry = iota
	// AncestryNone means the object has no ancestor (null on the wire).
	AncestryNone
	// AncestryRef means the ancestor is a named or local reference.
	AncestryRef
)

func (a Ancestry) String() string {
	switch a {
	case AncestryDefault:
		return "default"
	case AncestryNone:
		return "none"
	case AncestryRef:
		return "ref"
	}
	return "unknown"
}

// Record is one entry of the object-record table.
type Record struct {
	// Payload is the codec-specific encoding of the object's content.
	Payload json.RawMessage
	// Ancestry selects how Ancestor is interpreted.
	Ancestry Ancestry
	// Ancestor is a named or local reference when Ancestry is AncestryRef.
	Ancestor Ref
}

// DefaultRecord returns a record with the default ancestor.
func DefaultRecord(payload json.RawMessage) Record {
	return Record{Payload: payload}
}

// OrphanRecord returns a record with no ancestor.
func OrphanRecord(payload json.RawMessage) Record {
	return Record{Payload: payload, Ancestry: AncestryNone}
}

// DerivedRecord returns a record whose ancestor is the given named or local
// reference.
func DerivedRecord(payload json.RawMessage, ancestor Ref) Record {
	return Record{Payload: payload, Ancestry: AncestryRef, Ancestor: ancestor}
}

// MarshalJSON implements json.Marshaler.
func (r Record) MarshalJSON() ([]byte, error) {
	payload := r.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	buf.Write(payload)
	switch r.Ancestry {
	case AncestryDefault:
	case AncestryNone:
		buf.WriteString(",null")
	case AncestryRef:
		if !r.Ancestor.IsIdentity() {
			return nil, errors.New(errors.ErrCodeMalformedRecord, "ancestor %s is not a named or local reference", r.Ancestor)
		}
		ref, err := r.Ancestor.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(ref)
	default:
		return nil, errors.New(errors.ErrCodeMalformedRecord, "unknown ancestry %d", r.Ancestry)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Record) UnmarshalJSON(data []byte) error {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return errors.Wrap(errors.ErrCodeMalformedRecord, err, "record is not an array")
	}
	switch len(elems) {
	case 1:
		*r = DefaultRecord(clone(elems[0]))
		return nil
	case 2:
	default:
		return errors.New(errors.ErrCodeMalformedRecord, "record has %d elements, want 1 or 2", len(elems))
	}

	payload := clone(elems[0])
	if string(bytes.TrimSpace(elems[1])) == "null" {
		*r = OrphanRecord(payload)
		return nil
	}
	ancestor, err := parseRef(elems[1])
	if err != nil {
		return err
	}
	if !ancestor.IsIdentity() {
		return errors.New(errors.ErrCodeMalformedRecord, "ancestor %s is not a named or local reference", ancestor)
	}
	*r = DerivedRecord(payload, ancestor)
	return nil
}

func clone(b json.RawMessage) json.RawMessage {
	return append(json.RawMessage(nil), bytes.TrimSpace(b)...)
}
