package urlstate

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/homegrid/mapsearch/internal/domain/geo"
	"github.com/homegrid/mapsearch/internal/domain/search/filter"
)

// Layout is the page layout mode encoded in the URL.
type Layout string

// Layout constants.
const (
	LayoutList  Layout = "list"
	LayoutSplit Layout = "split"
	LayoutMap   Layout = "map"
)

// IsValid checks if the layout is one of the supported values.
func (l Layout) IsValid() bool {
	return l == LayoutList || l == LayoutSplit || l == LayoutMap
}

// filterSubset is the restricted set of filter criteria that round-trips
// through the address bar.
var filterSubset = []string{
	filter.KeyLocation,
	filter.KeyPropertyType,
	filter.KeyMinPrice,
	filter.KeyMaxPrice,
	filter.KeyBeds,
	filter.KeyBaths,
	filter.KeyStatus,
}

// PageState is the shareable search state: viewport center/zoom, layout,
// the filter subset, and the free-text query.
type PageState struct {
	Center  geo.Point
	Zoom    float64
	Layout  Layout
	Filters filter.State
	Query   string
}

// History replaces the current browser history entry without creating a
// navigation entry.
type History interface {
	Replace(query string)
}

// Synchronizer reflects committed search state into the address bar. It
// rewrites history only when the serialized value actually changed, to
// avoid history churn on every render.
type Synchronizer struct {
	history History
	last    string
}

// NewSynchronizer creates a URL state synchronizer.
func NewSynchronizer(history History) *Synchronizer {
	return &Synchronizer{history: history}
}

// Sync serializes the state and replaces the history entry. Returns
// false when the serialization matches the last written value and no
// replace happened.
func (s *Synchronizer) Sync(st PageState) bool {
	encoded := Encode(st)
	if encoded == s.last {
		return false
	}
	s.history.Replace(encoded)
	s.last = encoded
	return true
}

// Encode produces the canonical query string for a page state. Keys are
// emitted in sorted order so equal states always serialize identically.
func Encode(st PageState) string {
	v := url.Values{}
	v.Set("lat", trimFloat(st.Center.Lat, 5))
	v.Set("lng", trimFloat(st.Center.Lng, 5))
	v.Set("zoom", trimFloat(st.Zoom, 2))
	if st.Layout.IsValid() {
		v.Set("layout", string(st.Layout))
	}
	if st.Query != "" {
		v.Set("q", st.Query)
	}
	for _, key := range filterSubset {
		for _, val := range st.Filters.Values(key) {
			v.Add(key, val)
		}
	}
	// url.Values.Encode sorts by key.
	return v.Encode()
}

// Parse restores page state from a query string, the inverse of Encode.
// Used on initial page load. Unknown parameters are ignored.
func Parse(query string) (PageState, error) {
	v, err := url.ParseQuery(query)
	if err != nil {
		return PageState{}, fmt.Errorf("parse query: %w", err)
	}

	st := PageState{Layout: LayoutSplit}
	if lat, err := strconv.ParseFloat(v.Get("lat"), 64); err == nil {
		st.Center.Lat = lat
	}
	if lng, err := strconv.ParseFloat(v.Get("lng"), 64); err == nil {
		st.Center.Lng = lng
	}
	if zoom, err := strconv.ParseFloat(v.Get("zoom"), 64); err == nil {
		st.Zoom = zoom
	}
	if l := Layout(v.Get("layout")); l.IsValid() {
		st.Layout = l
	}
	st.Query = v.Get("q")

	criteria := make(map[string][]string)
	for _, key := range filterSubset {
		if vals, ok := v[key]; ok {
			criteria[key] = vals
		}
	}
	st.Filters = filter.New(criteria)
	return st, nil
}

// trimFloat formats a float with at most prec decimals, dropping
// trailing zeros so 12.00 encodes as "12".
func trimFloat(f float64, prec int) string {
	s := strconv.FormatFloat(f, 'f', prec, 64)
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}
