package codec

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/matzehuels/objgraph/pkg/envelope"
	"github.com/matzehuels/objgraph/pkg/errors"
	"github.com/matzehuels/objgraph/pkg/object"
)

type celsius struct{ deg float64 }

func TestFuncsCodec(t *testing.T) {
	c := Funcs{
		EncodeFn: func(v any, _ Recurse) (any, error) {
			return v.(*celsius).deg, nil
		},
		InitializeFn: func(any) (any, error) { return &celsius{}, nil },
		DecodeFn: func(skeleton any, payload json.RawMessage, _ Deref) error {
			return json.Unmarshal(payload, &skeleton.(*celsius).deg)
		},
	}

	s := New()
	if err := RegisterTypeOf[*celsius](s, "Celsius", c); err != nil {
		t.Fatal(err)
	}
	got := roundTrip(t, s, &celsius{deg: 21.5}).(*celsius)
	if got.deg != 21.5 {
		t.Errorf("deg = %v, want 21.5", got.deg)
	}
}

func TestTypedCodecRejectsWrongTypes(t *testing.T) {
	c := NewTyped(
		func(a *object.Array, _ Recurse) (int, error) { return a.Len(), nil },
		func(any) (*object.Array, error) { return object.NewArray(), nil },
		func(*object.Array, int, Deref) error { return nil },
	)
	if _, err := c.Encode(object.New(), nil); !errors.Is(err, errors.ErrCodeMalformedObject) {
		t.Errorf("Encode(wrong type) error = %v", err)
	}
	if err := c.Decode(object.New(), json.RawMessage(`1`), nil); !errors.Is(err, errors.ErrCodeMalformedRecord) {
		t.Errorf("Decode(wrong skeleton) error = %v", err)
	}
	if err := c.Decode(object.NewArray(), json.RawMessage(`"x"`), nil); !errors.Is(err, errors.ErrCodeMalformedRecord) {
		t.Errorf("Decode(bad payload) error = %v", err)
	}
}

func TestDispatch(t *testing.T) {
	d := NewDispatch(ObjectCodec{})
	proto := object.New()
	typ := reflect.TypeFor[*object.Array]()

	if err := d.Attach(proto, arrayCodec); err != nil {
		t.Fatal(err)
	}
	if err := d.Attach(typ, arrayCodec); err != nil {
		t.Fatal(err)
	}
	if err := d.Attach(42, arrayCodec); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Attach(42) error = %v", err)
	}
	if err := d.Attach(object.New(), nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Attach(nil codec) error = %v", err)
	}

	if d.Find(proto) == nil || d.Find(typ) == nil {
		t.Fatal("attached codecs not found")
	}
	if _, ok := d.Find(nil).(ObjectCodec); !ok {
		t.Error("Find(nil) should fall back to ObjectCodec")
	}
	if _, ok := d.Find(object.New()).(ObjectCodec); !ok {
		t.Error("unknown identity should fall back to ObjectCodec")
	}
	if d.Len() != 2 {
		t.Errorf("Len() = %d, want 2", d.Len())
	}
}

func TestEngineWithoutFacade(t *testing.T) {
	s := New()
	o := object.New()
	o.Set("x", 1)

	env, err := Serialize(o, s.Registry(), s.Dispatch(), DefaultMaxDepth)
	if err != nil {
		t.Fatal(err)
	}
	if env.Root != envelope.LocalRef(0) {
		t.Errorf("root = %v", env.Root)
	}
	got, err := Deserialize(env, s.Registry(), s.Dispatch())
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := got.(*object.Object).Get("x"); v != 1.0 {
		t.Errorf("x = %v", v)
	}
}

func TestNilSkeletonIsMalformed(t *testing.T) {
	s := New()
	proto := object.New()
	c := Funcs{
		EncodeFn:     func(any, Recurse) (any, error) { return nil, nil },
		InitializeFn: func(any) (any, error) { return (*object.Object)(nil), nil },
		DecodeFn:     func(any, json.RawMessage, Deref) error { return nil },
	}
	if err := s.Register("Broken", proto, c); err != nil {
		t.Fatal(err)
	}
	_, err := s.Unmarshal([]byte(`[[[null,["Broken"]]],[0]]`))
	if !errors.Is(err, errors.ErrCodeMalformedRecord) {
		t.Errorf("Unmarshal error = %v, want MALFORMED_RECORD", err)
	}
}
