package object

import "testing"

func TestArray(t *testing.T) {
	a := NewArray(1.0, "two")
	a.SetAt(4, true)
	if a.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", a.Len())
	}
	if !IsUndefined(a.At(2)) || !IsUndefined(a.At(10)) {
		t.Error("holes and out-of-range reads should be undefined")
	}
	a.Push(nil)
	if a.Len() != 6 || a.At(5) != nil {
		t.Errorf("Push(nil): len=%d last=%v", a.Len(), a.At(5))
	}

	vals := a.Values()
	vals[0] = "changed"
	if a.At(0) != 1.0 {
		t.Error("Values() must return a copy")
	}
}

func TestMapNormalizesNumericKeys(t *testing.T) {
	m := NewMap()
	m.Set(0, "zero")
	m.Set(uint8(1), "one")

	if v, ok := m.Get(0.0); !ok || v != "zero" {
		t.Errorf("Get(0.0) = %v, %v", v, ok)
	}
	if v, ok := m.Get(int64(1)); !ok || v != "one" {
		t.Errorf("Get(int64(1)) = %v, %v", v, ok)
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
}

func TestMapIdentityKeysAndOrder(t *testing.T) {
	m := NewMap()
	a, b := New(), New()
	m.Set(a, 1)
	m.Set(b, 2)
	m.Set("k", 3)
	m.Set(a, 4)

	if v, _ := m.Get(a); v != 4 {
		t.Errorf("Get(a) = %v, want 4", v)
	}
	if m.Has(New()) {
		t.Error("distinct object must not match by value")
	}

	if !m.Delete(b) || m.Delete(b) {
		t.Error("Delete(b) should succeed once")
	}
	var keys []any
	for k := range m.All() {
		keys = append(keys, k)
	}
	if len(keys) != 2 || keys[0] != a || keys[1] != "k" {
		t.Errorf("keys after delete = %v", keys)
	}
	if v, _ := m.Get("k"); v != 3 {
		t.Errorf("index not rebuilt after delete: Get(k) = %v", v)
	}
}

func TestSet(t *testing.T) {
	s := NewSet(1, 1.0, "x")
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if !s.Has(1) || !s.Has("x") {
		t.Error("missing members")
	}
	if !s.Delete(1.0) || s.Has(1) {
		t.Error("Delete(1.0) should remove the normalized key")
	}
	var items []any
	for v := range s.All() {
		items = append(items, v)
	}
	if len(items) != 1 || items[0] != "x" {
		t.Errorf("items = %v", items)
	}
}
