package registry

import (
	"reflect"
	"sync"
	"testing"

	"github.com/matzehuels/objgraph/pkg/errors"
	"github.com/matzehuels/objgraph/pkg/object"
)

type point struct{ X, Y float64 }

func helper() {}

func TestRegisterAndResolve(t *testing.T) {
	r := New()
	proto := object.NewWithPrototype(nil)
	typ := reflect.TypeFor[*point]()

	for name, entity := range map[string]any{"proto": proto, "point": typ, "helper": helper} {
		if err := r.Register(name, entity); err != nil {
			t.Fatalf("Register(%q): %v", name, err)
		}
	}

	got, err := r.Resolve("proto")
	if err != nil || got != proto {
		t.Errorf("Resolve(proto) = %v, %v", got, err)
	}
	if name, ok := r.NameOf(typ); !ok || name != "point" {
		t.Errorf("NameOf(type) = %q, %v", name, ok)
	}
	if name, ok := r.NameOf(helper); !ok || name != "helper" {
		t.Errorf("NameOf(func) = %q, %v", name, ok)
	}
	if _, ok := r.NameOf(object.New()); ok {
		t.Error("unbound entity should report false")
	}
	if r.Len() != 3 {
		t.Errorf("Len() = %d, want 3", r.Len())
	}
	if names := r.Names(); names[0] != "helper" || names[2] != "proto" {
		t.Errorf("Names() = %v, want sorted", names)
	}
}

func TestResolveMissing(t *testing.T) {
	_, err := New().Resolve("nope")
	if !errors.Is(err, errors.ErrCodeUnresolvedName) {
		t.Errorf("Resolve(nope) error = %v, want UNRESOLVED_NAMED_REFERENCE", err)
	}
}

func TestRegisterFailures(t *testing.T) {
	a, b := object.New(), object.New()

	tests := []struct {
		name  string
		setup func(r *Registry)
		reg   string
		ent   any
		code  errors.Code
	}{
		{"empty name", nil, "", a, errors.ErrCodeInvalidName},
		{"reserved prefix", nil, "_Map", a, errors.ErrCodeInvalidName},
		{"no identity", nil, "num", 42, errors.ErrCodeInvalidInput},
		{"nil entity", nil, "nil", nil, errors.ErrCodeInvalidInput},
		{
			name:  "name taken by different entity",
			setup: func(r *Registry) { _ = r.Register("thing", a) },
			reg:   "thing", ent: b,
			code:  errors.ErrCodeNameConflict,
		},
		{
			name:  "same entity twice under same name",
			setup: func(r *Registry) { _ = r.Register("thing", a) },
			reg:   "thing", ent: a,
			code:  errors.ErrCodeNameConflict,
		},
		{
			name:  "same entity under different name",
			setup: func(r *Registry) { _ = r.Register("thing", a) },
			reg:   "other", ent: a,
			code:  errors.ErrCodeNameConflict,
		},
		{
			name:  "frozen",
			setup: func(r *Registry) { r.Freeze() },
			reg:   "late", ent: a,
			code:  errors.ErrCodeRegistryFrozen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			if tt.setup != nil {
				tt.setup(r)
			}
			err := r.Register(tt.reg, tt.ent)
			if !errors.Is(err, tt.code) {
				t.Errorf("Register(%q) error = %v, want %s", tt.reg, err, tt.code)
			}
		})
	}
}

func TestRegisterBuiltinAllowsReservedPrefix(t *testing.T) {
	r := New()
	if err := r.RegisterBuiltin("_Object", object.DefaultPrototype); err != nil {
		t.Fatalf("RegisterBuiltin: %v", err)
	}
	if err := r.RegisterBuiltin("", object.New()); !errors.Is(err, errors.ErrCodeInvalidName) {
		t.Errorf("empty builtin name error = %v", err)
	}
}

func TestFrozenConcurrentReads(t *testing.T) {
	r := New()
	protos := make([]*object.Object, 50)
	for i := range protos {
		protos[i] = object.New()
		if err := r.Register(string(rune('a'+i%26))+string(rune('A'+i/26)), protos[i]); err != nil {
			t.Fatal(err)
		}
	}
	r.Freeze()
	if !r.Frozen() {
		t.Fatal("Frozen() = false after Freeze")
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, p := range protos {
				name, ok := r.NameOf(p)
				if !ok {
					t.Error("lost binding")
					return
				}
				if got, _ := r.Resolve(name); got != p {
					t.Error("Resolve mismatch")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestKeyOf(t *testing.T) {
	o := object.New()
	m := map[string]int{}
	var nilObj *object.Object

	tests := []struct {
		name string
		v    any
		ok   bool
	}{
		{"pointer", o, true},
		{"map", m, true},
		{"func", helper, true},
		{"type", reflect.TypeFor[point](), true},
		{"nil", nil, false},
		{"typed nil", nilObj, false},
		{"string", "s", false},
		{"struct", point{}, false},
		{"slice", []int{1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := KeyOf(tt.v); ok != tt.ok {
				t.Errorf("KeyOf(%T) ok = %v, want %v", tt.v, ok, tt.ok)
			}
		})
	}

	k1, _ := KeyOf(o)
	k2, _ := KeyOf(o)
	k3, _ := KeyOf(object.New())
	if k1 != k2 || k1 == k3 {
		t.Error("keys must compare by identity")
	}
}
