package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/matzehuels/objgraph/pkg/errors"
)

// Kind discriminates the variants of a [Ref].
type Kind uint8

const (
	KindAbsent Kind = iota
	KindNull
	KindString
	KindBool
	KindNumber
	KindNamed
	KindLocal
)

var kindNames = map[Kind]string{
	KindAbsent: "absent",
	KindNull:   "null",
	KindString: "string",
	KindBool:   "bool",
	KindNumber: "number",
	KindNamed:  "named",
	KindLocal:  "local",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Ref is a reference to a value: a primitive, a name in the symbolic
// registry, or an index into the envelope's record table. The zero Ref is
// absent.
type Ref struct {
	kind Kind
	str  string
	num  float64
	b    bool
	idx  int
}

// NullRef returns the null reference.
func NullRef() Ref { return Ref{kind: KindNull} }

// StringRef returns a string primitive.
func StringRef(s string) Ref { return Ref{kind: KindString, str: s} }

// BoolRef returns a boolean primitive.
func BoolRef(b bool) Ref { return Ref{kind: KindBool, b: b} }

// NumberRef returns a number primitive.
func NumberRef(f float64) Ref { return Ref{kind: KindNumber, num: f} }

// NamedRef returns a reference to a name in the symbolic registry.
func NamedRef(name string) Ref { return Ref{kind: KindNamed, str: name} }

// LocalRef returns a reference to record i. It panics on a negative index.
func LocalRef(i int) Ref {
	if i < 0 {
		panic(fmt.Sprintf("envelope: negative local index %d", i))
	}
	return Ref{kind: KindLocal, idx: i}
}

// Kind returns the variant of r.
func (r Ref) Kind() Kind { return r.kind }

// IsPrimitive reports whether r is a string, bool or number.
func (r Ref) IsPrimitive() bool {
	return r.kind == KindString || r.kind == KindBool || r.kind == KindNumber
}

// IsIdentity reports whether r is a named or local reference.
func (r Ref) IsIdentity() bool { return r.kind == KindNamed || r.kind == KindLocal }

// Name returns the registry name of a named reference.
func (r Ref) Name() (string, bool) { return r.str, r.kind == KindNamed }

// Index returns the record index of a local reference.
func (r Ref) Index() (int, bool) { return r.idx, r.kind == KindLocal }

// Primitive returns the Go value of a primitive reference (string, bool or
// float64), nil for null, and false for every other kind.
func (r Ref) Primitive() (any, bool) {
	switch r.kind {
	case KindNull:
		return nil, true
	case KindString:
		return r.str, true
	case KindBool:
		return r.b, true
	case KindNumber:
		return r.num, true
	}
	return nil, false
}

func (r Ref) String() string {
	switch r.kind {
	case KindAbsent:
		return "[]"
	case KindNull:
		return "null"
	case KindString, KindNamed:
		s := strconv.Quote(r.str)
		if r.kind == KindNamed {
			return "[" + s + "]"
		}
		return s
	case KindBool:
		return strconv.FormatBool(r.b)
	case KindNumber:
		return strconv.FormatFloat(r.num, 'g', -1, 64)
	case KindLocal:
		return "[" + strconv.Itoa(r.idx) + "]"
	}
	return r.kind.String()
}

// MarshalJSON implements json.Marshaler.
func (r Ref) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case KindAbsent:
		return []byte("[]"), nil
	case KindNull:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(r.str)
	case KindBool:
		return json.Marshal(r.b)
	case KindNumber:
		return json.Marshal(r.num)
	case KindNamed:
		return json.Marshal([1]string{r.str})
	case KindLocal:
		return []byte("[" + strconv.Itoa(r.idx) + "]"), nil
	}
	return nil, errors.New(errors.ErrCodeInternal, "marshal reference of %s", r.kind)
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Ref) UnmarshalJSON(data []byte) error {
	ref, err := parseRef(data)
	if err != nil {
		return err
	}
	*r = ref
	return nil
}

func parseRef(data []byte) (Ref, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Ref{}, errors.New(errors.ErrCodeMalformedRecord, "empty reference")
	}
	switch data[0] {
	case 'n':
		if string(data) != "null" {
			break
		}
		return NullRef(), nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return Ref{}, errors.Wrap(errors.ErrCodeMalformedRecord, err, "reference %s", data)
		}
		return BoolRef(b), nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return Ref{}, errors.Wrap(errors.ErrCodeMalformedRecord, err, "reference %s", data)
		}
		return StringRef(s), nil
	case '[':
		return parseIdentity(data)
	default:
		if data[0] == '-' || (data[0] >= '0' && data[0] <= '9') {
			f, err := strconv.ParseFloat(string(data), 64)
			if err != nil {
				return Ref{}, errors.Wrap(errors.ErrCodeMalformedRecord, err, "reference %s", data)
			}
			return NumberRef(f), nil
		}
	}
	return Ref{}, errors.New(errors.ErrCodeMalformedRecord, "reference %s is not a primitive, null or array", truncate(data))
}

func parseIdentity(data []byte) (Ref, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return Ref{}, errors.Wrap(errors.ErrCodeMalformedRecord, err, "reference %s", truncate(data))
	}
	switch len(elems) {
	case 0:
		return Ref{}, nil
	case 1:
	default:
		return Ref{}, errors.New(errors.ErrCodeMalformedRecord, "reference %s has %d elements, want at most 1", truncate(data), len(elems))
	}

	elem := bytes.TrimSpace(elems[0])
	if len(elem) > 0 && elem[0] == '"' {
		var name string
		if err := json.Unmarshal(elem, &name); err != nil {
			return Ref{}, errors.Wrap(errors.ErrCodeMalformedRecord, err, "named reference %s", elem)
		}
		return NamedRef(name), nil
	}
	idx, err := strconv.Atoi(string(elem))
	if err != nil || idx < 0 {
		return Ref{}, errors.New(errors.ErrCodeMalformedRecord, "local reference %s is not a non-negative integer", truncate(elem))
	}
	return LocalRef(idx), nil
}

func truncate(b []byte) string {
	const limit = 40
	if len(b) <= limit {
		return string(b)
	}
	return string(b[:limit]) + "..."
}
