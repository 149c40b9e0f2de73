package search

import "sync/atomic"

// Guard assigns a monotonically increasing sequence number to every
// outstanding search and admits only the most recently initiated one.
// Responses completing out of order are discarded on arrival; committing
// a stale response would show listings for a viewport the user already
// left. The zero value is ready to use.
type Guard struct {
	seq atomic.Uint64
}

// Next reserves the sequence number for a new search, invalidating every
// earlier outstanding one.
func (g *Guard) Next() uint64 {
	return g.seq.Add(1)
}

// Latest reports whether seq still identifies the most recently
// initiated search.
func (g *Guard) Latest(seq uint64) bool {
	return g.seq.Load() == seq
}
