package markers

import "sort"

// Registry maps marker keys to rendered handles. Its keys mirror exactly
// the keys of the most recently committed response for its mode.
type Registry struct {
	handles map[string]Handle
}

// NewRegistry creates an empty marker registry.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]Handle)}
}

// Len returns the number of rendered markers.
func (r *Registry) Len() int {
	return len(r.handles)
}

// Keys returns the rendered keys, sorted.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.handles))
	for k := range r.handles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the handle for a key.
func (r *Registry) Get(key string) (Handle, bool) {
	h, ok := r.handles[key]
	return h, ok
}

// Reconcile diffs the registry against nextKeys: markers whose key is
// gone are removed first, then factory creates-and-attaches a marker for
// every new key. Unchanged keys are left untouched, so their markers
// keep their screen position. Returns the create and remove counts;
// both are zero when called again with the same keys.
func (r *Registry) Reconcile(
	nextKeys []string,
	factory func(key string) Handle,
	remove func(key string, h Handle),
) (created, removed int) {
	next := make(map[string]struct{}, len(nextKeys))
	for _, k := range nextKeys {
		next[k] = struct{}{}
	}

	for k, h := range r.handles {
		if _, keep := next[k]; keep {
			continue
		}
		remove(k, h)
		delete(r.handles, k)
		removed++
	}

	for _, k := range nextKeys {
		if _, exists := r.handles[k]; exists {
			continue
		}
		r.handles[k] = factory(k)
		created++
	}
	return created, removed
}

// Clear removes every marker.
func (r *Registry) Clear(remove func(key string, h Handle)) int {
	n := len(r.handles)
	for k, h := range r.handles {
		remove(k, h)
		delete(r.handles, k)
	}
	return n
}
