package filter

import (
	"sort"
	"strconv"
)

// Criteria keys understood by the listings query service. The URL
// synchronizer shares this vocabulary for its filter subset.
const (
	KeyLocation     = "location"
	KeyPropertyType = "type"
	KeyMinPrice     = "min_price"
	KeyMaxPrice     = "max_price"
	KeyBeds         = "beds"
	KeyBaths        = "baths"
	KeyStatus       = "status"
)

// Keys lists every criterion key the service understands.
func Keys() []string {
	return []string{
		KeyLocation, KeyPropertyType, KeyMinPrice, KeyMaxPrice,
		KeyBeds, KeyBaths, KeyStatus,
	}
}

// State is an immutable snapshot of the active search criteria: a flat
// mapping of criterion name to one or more values. In-flight requests
// hold the snapshot they were issued with; With produces a new one.
type State struct {
	values map[string][]string
}

// New creates a filter state from a criteria map. Empty value lists are
// dropped. The input is copied.
func New(values map[string][]string) State {
	return State{}.With(values)
}

// With returns a new snapshot with the patch applied on top of the
// current criteria. A key mapped to an empty list clears that criterion.
func (s State) With(patch map[string][]string) State {
	next := make(map[string][]string, len(s.values)+len(patch))
	for k, v := range s.values {
		next[k] = v
	}
	for k, v := range patch {
		if len(v) == 0 {
			delete(next, k)
			continue
		}
		vals := make([]string, len(v))
		copy(vals, v)
		next[k] = vals
	}
	return State{values: next}
}

// Get returns the first value for a criterion.
func (s State) Get(key string) (string, bool) {
	v, ok := s.values[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// Values returns all values for a criterion.
func (s State) Values(key string) []string {
	return s.values[key]
}

// Number returns a criterion parsed as a float.
func (s State) Number(key string) (float64, bool) {
	v, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Keys returns the active criterion names, sorted for canonical encoding.
func (s State) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsEmpty reports whether no criteria are set.
func (s State) IsEmpty() bool {
	return len(s.values) == 0
}

// Len returns the number of active criteria.
func (s State) Len() int {
	return len(s.values)
}
