package markers

import (
	"reflect"
	"testing"
)

func countingCallbacks() (factory func(string) Handle, remove func(string, Handle), creates, removes *[]string) {
	creates = &[]string{}
	removes = &[]string{}
	factory = func(key string) Handle {
		*creates = append(*creates, key)
		return key
	}
	remove = func(key string, _ Handle) {
		*removes = append(*removes, key)
	}
	return factory, remove, creates, removes
}

func TestReconcile_AddsAndRemoves(t *testing.T) {
	r := NewRegistry()
	factory, remove, creates, removes := countingCallbacks()

	created, removed := r.Reconcile([]string{"a", "b", "c"}, factory, remove)
	if created != 3 || removed != 0 {
		t.Fatalf("initial reconcile = (%d, %d), want (3, 0)", created, removed)
	}

	created, removed = r.Reconcile([]string{"b", "c", "d"}, factory, remove)
	if created != 1 || removed != 1 {
		t.Fatalf("second reconcile = (%d, %d), want (1, 1)", created, removed)
	}
	if want := []string{"a", "b", "c", "d"}; !reflect.DeepEqual(*creates, want) {
		t.Errorf("creates = %v, want %v", *creates, want)
	}
	if want := []string{"a"}; !reflect.DeepEqual(*removes, want) {
		t.Errorf("removes = %v, want %v", *removes, want)
	}
	if want := []string{"b", "c", "d"}; !reflect.DeepEqual(r.Keys(), want) {
		t.Errorf("Keys() = %v, want %v", r.Keys(), want)
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	r := NewRegistry()
	factory, remove, _, _ := countingCallbacks()
	keys := []string{"x", "y", "z"}

	r.Reconcile(keys, factory, remove)
	created, removed := r.Reconcile(keys, factory, remove)
	if created != 0 || removed != 0 {
		t.Errorf("repeat reconcile = (%d, %d), want (0, 0)", created, removed)
	}
}

func TestReconcile_UnchangedHandlesSurvive(t *testing.T) {
	r := NewRegistry()
	calls := 0
	factory := func(key string) Handle {
		calls++
		return calls // distinct handle per creation
	}
	noop := func(string, Handle) {}

	r.Reconcile([]string{"a", "b"}, factory, noop)
	before, _ := r.Get("a")
	r.Reconcile([]string{"a", "c"}, factory, noop)
	after, _ := r.Get("a")

	if before != after {
		t.Error("unchanged marker was recreated")
	}
}

func TestClear(t *testing.T) {
	r := NewRegistry()
	factory, remove, _, removes := countingCallbacks()
	r.Reconcile([]string{"a", "b"}, factory, remove)

	if n := r.Clear(remove); n != 2 {
		t.Errorf("Clear() = %d, want 2", n)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d after Clear", r.Len())
	}
	if len(*removes) != 2 {
		t.Errorf("remove called %d times, want 2", len(*removes))
	}
}
