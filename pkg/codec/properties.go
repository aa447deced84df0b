package codec

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/matzehuels/objgraph/pkg/envelope"
	"github.com/matzehuels/objgraph/pkg/errors"
	"github.com/matzehuels/objgraph/pkg/object"
)

// PropertyEntry is one compressed property: a value reference plus its
// attributes.
type PropertyEntry struct {
	Key        string
	Value      envelope.Ref
	Attributes object.Attributes
}

// Properties is the payload of [ObjectCodec] and struct codecs: a JSON
// object mapping each key to [valueRef] or [valueRef, flags], in insertion
// order.
type Properties []PropertyEntry

// MarshalJSON implements json.Marshaler.
func (p Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		ref, err := e.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteString(":[")
		buf.Write(ref)
		if flags, ok := PackAttributes(e.Attributes); ok {
			buf.WriteByte(',')
			buf.WriteString(strconv.Itoa(int(flags)))
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler. Key order is preserved;
// duplicate keys are rejected.
func (p *Properties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return errors.Wrap(errors.ErrCodeMalformedRecord, err, "property payload")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New(errors.ErrCodeMalformedRecord, "property payload is not an object")
	}

	var out Properties
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return errors.Wrap(errors.ErrCodeMalformedRecord, err, "property key")
		}
		key := tok.(string)
		if seen[key] {
			return errors.New(errors.ErrCodeMalformedRecord, "duplicate property %q", key)
		}
		seen[key] = true

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return errors.Wrap(errors.ErrCodeMalformedRecord, err, "property %q", key)
		}
		entry, err := parseEntry(key, raw)
		if err != nil {
			return err
		}
		out = append(out, entry)
	}
	*p = out
	return nil
}

func parseEntry(key string, raw json.RawMessage) (PropertyEntry, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return PropertyEntry{}, errors.Wrap(errors.ErrCodeMalformedRecord, err, "property %q is not an array", key)
	}
	if len(elems) != 1 && len(elems) != 2 {
		return PropertyEntry{}, errors.New(errors.ErrCodeMalformedRecord, "property %q has %d elements, want 1 or 2", key, len(elems))
	}

	var ref envelope.Ref
	if err := ref.UnmarshalJSON(elems[0]); err != nil {
		return PropertyEntry{}, errors.Wrap(errors.ErrCodeMalformedRecord, err, "property %q", key)
	}

	var flags uint8
	present := len(elems) == 2
	if present {
		n, err := strconv.Atoi(string(bytes.TrimSpace(elems[1])))
		if err != nil || n < 0 || n > 255 {
			return PropertyEntry{}, errors.New(errors.ErrCodeMalformedRecord, "property %q: flags %s are not a byte", key, elems[1])
		}
		flags = uint8(n)
	}
	attrs, err := UnpackAttributes(flags, present)
	if err != nil {
		return PropertyEntry{}, errors.Wrap(errors.ErrCodeMalformedRecord, err, "property %q", key)
	}
	return PropertyEntry{Key: key, Value: ref, Attributes: attrs}, nil
}

// ParseProperties decodes a property payload.
func ParseProperties(payload json.RawMessage) (Properties, error) {
	var p Properties
	if err := p.UnmarshalJSON(payload); err != nil {
		return nil, err
	}
	return p, nil
}
