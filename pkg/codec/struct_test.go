package codec

import (
	"reflect"
	"testing"

	"github.com/matzehuels/objgraph/pkg/errors"
	"github.com/matzehuels/objgraph/pkg/object"
)

type color string

type node struct {
	Name     string  `objgraph:"name"`
	Weight   float64 `objgraph:"weight"`
	Count    int
	Small    uint8
	Enabled  bool
	Color    color
	Next     *node
	Extra    any
	Labels   map[string]int `objgraph:"-"`
	internal int
}

func newNodeSerializer(t *testing.T) *Serializer {
	t.Helper()
	s := New()
	if err := RegisterTypeOf[*node](s, "Node", nil); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestStructCodecRoundTrip(t *testing.T) {
	s := newNodeSerializer(t)
	extra := object.New()
	extra.Set("k", "v")
	n := &node{
		Name: "a", Weight: 0.5, Count: -3, Small: 200, Enabled: true,
		Color: "red", Extra: extra, Labels: map[string]int{"x": 1}, internal: 9,
	}
	n.Next = n

	got := roundTrip(t, s, n).(*node)
	if got.Next != got {
		t.Error("self pointer not restored")
	}
	if got.Name != "a" || got.Weight != 0.5 || got.Count != -3 || got.Small != 200 || !got.Enabled || got.Color != "red" {
		t.Errorf("fields = %+v", got)
	}
	if got.Labels != nil || got.internal != 0 {
		t.Error("skipped fields should stay zero")
	}
	eo, ok := got.Extra.(*object.Object)
	if !ok || mustGet(t, eo, "k") != "v" {
		t.Errorf("Extra = %v", got.Extra)
	}
}

func TestStructCodecPayload(t *testing.T) {
	s := newNodeSerializer(t)
	env, err := s.Serialize(&node{Name: "n"})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"name":["n"],"weight":[0],"Count":[0],"Small":[0],"Enabled":[false],"Color":[""],"Next":[null],"Extra":[null]}`
	if string(env.Records[0].Payload) != want {
		t.Errorf("payload = %s\nwant %s", env.Records[0].Payload, want)
	}
	if name, _ := env.Records[0].Ancestor.Name(); name != "Node" {
		t.Errorf("ancestor = %s, want Node", env.Records[0].Ancestor)
	}
}

func TestStructCodecRejectsUnsupportedFields(t *testing.T) {
	type withSlice struct{ Items []int }
	type withStruct struct{ Inner node }
	type duplicate struct {
		A int `objgraph:"x"`
		B int `objgraph:"x"`
	}

	tests := []struct {
		name string
		typ  reflect.Type
		code errors.Code
	}{
		{"slice field", reflect.TypeFor[*withSlice](), errors.ErrCodeMalformedObject},
		{"struct field", reflect.TypeFor[*withStruct](), errors.ErrCodeMalformedObject},
		{"duplicate name", reflect.TypeFor[*duplicate](), errors.ErrCodeMalformedObject},
		{"not a pointer", reflect.TypeFor[node](), errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewStructCodec(tt.typ); !errors.Is(err, tt.code) {
				t.Errorf("NewStructCodec error = %v, want %s", err, tt.code)
			}
		})
	}

	s := New()
	if err := RegisterTypeOf[*withSlice](s, "WithSlice", nil); !errors.Is(err, errors.ErrCodeMalformedObject) {
		t.Errorf("RegisterTypeOf error = %v", err)
	}
	if s.Registry().Len() != len(builtins()) {
		t.Error("failed registration must not bind the name")
	}
}

func TestRegisterTypeNeedsCodecForMaps(t *testing.T) {
	s := New()
	err := RegisterTypeOf[map[string]int](s, "Counts", nil)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("RegisterTypeOf(map) error = %v, want INVALID_INPUT", err)
	}
	err = RegisterTypeOf[node](s, "NodeValue", nil)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("RegisterTypeOf(struct value) error = %v, want INVALID_INPUT", err)
	}
}

func TestStructCodecDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"unknown field", `[[[{"missing":[1]},["Node"]]],[0]]`},
		{"fractional int", `[[[{"Count":[1.5]},["Node"]]],[0]]`},
		{"negative uint", `[[[{"Small":[-1]},["Node"]]],[0]]`},
		{"uint overflow", `[[[{"Small":[300]},["Node"]]],[0]]`},
		{"string into bool", `[[[{"Enabled":["yes"]},["Node"]]],[0]]`},
		{"object into pointer", `[[[{"Next":[[1]]},["Node"]],[{}]],[0]]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newNodeSerializer(t)
			if _, err := s.Unmarshal([]byte(tt.in)); !errors.Is(err, errors.ErrCodeMalformedRecord) {
				t.Errorf("Unmarshal error = %v, want MALFORMED_RECORD", err)
			}
		})
	}
}

func TestStructCodecUndefinedAssignsZero(t *testing.T) {
	s := newNodeSerializer(t)
	got, err := s.Unmarshal([]byte(`[[[{"name":[[]],"Count":[null],"Extra":[[]]},["Node"]]],[0]]`))
	if err != nil {
		t.Fatal(err)
	}
	n := got.(*node)
	if n.Name != "" || n.Count != 0 || n.Extra != nil {
		t.Errorf("node = %+v, want zero fields", n)
	}
}
