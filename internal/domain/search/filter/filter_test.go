package filter

import (
	"reflect"
	"testing"
)

func TestWith_ProducesNewSnapshot(t *testing.T) {
	base := New(map[string][]string{KeyBeds: {"3"}})
	patched := base.With(map[string][]string{KeyMinPrice: {"500000"}})

	if _, ok := base.Get(KeyMinPrice); ok {
		t.Error("patch leaked into the base snapshot")
	}
	if v, _ := patched.Get(KeyMinPrice); v != "500000" {
		t.Errorf("patched min_price = %q, want 500000", v)
	}
	if v, _ := patched.Get(KeyBeds); v != "3" {
		t.Errorf("patched beds = %q, want 3", v)
	}
}

func TestWith_EmptyListClears(t *testing.T) {
	s := New(map[string][]string{KeyStatus: {"for-sale"}})
	s = s.With(map[string][]string{KeyStatus: {}})

	if _, ok := s.Get(KeyStatus); ok {
		t.Error("expected status criterion to be cleared")
	}
	if !s.IsEmpty() {
		t.Error("expected empty state")
	}
}

func TestNew_CopiesInput(t *testing.T) {
	in := map[string][]string{KeyBeds: {"2"}}
	s := New(in)

	in[KeyBeds][0] = "9"
	if v, _ := s.Get(KeyBeds); v != "2" {
		t.Errorf("state shares storage with input: beds = %q", v)
	}
}

func TestNumber(t *testing.T) {
	s := New(map[string][]string{KeyMinPrice: {"450000"}, KeyLocation: {"toronto"}})

	if n, ok := s.Number(KeyMinPrice); !ok || n != 450000 {
		t.Errorf("Number(min_price) = %f, %v", n, ok)
	}
	if _, ok := s.Number(KeyLocation); ok {
		t.Error("Number should fail on non-numeric criterion")
	}
	if _, ok := s.Number(KeyMaxPrice); ok {
		t.Error("Number should fail on absent criterion")
	}
}

func TestKeys_Sorted(t *testing.T) {
	s := New(map[string][]string{KeyStatus: {"x"}, KeyBeds: {"1"}, KeyLocation: {"y"}})

	want := []string{KeyBeds, KeyLocation, KeyStatus}
	if got := s.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}
