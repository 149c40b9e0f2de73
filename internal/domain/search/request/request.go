package request

import (
	"fmt"

	"github.com/homegrid/mapsearch/internal/domain"
	"github.com/homegrid/mapsearch/internal/domain/geo"
	"github.com/homegrid/mapsearch/internal/domain/search/filter"
)

// Query parameter limits.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// ClusterLimit caps the clusters returned by the aggregate query.
	ClusterLimit = 200
	// MinPrecision and MaxPrecision clamp the cluster precision.
	MinPrecision = 1
	MaxPrecision = 12
)

// PrecisionForZoom derives the cluster precision from map zoom: more
// zoom, finer cells, clamped to the supported range.
func PrecisionForZoom(zoom float64) int {
	p := int(zoom) - 4
	if p < MinPrecision {
		return MinPrecision
	}
	if p > MaxPrecision {
		return MaxPrecision
	}
	return p
}

// Request is a validated spatial query: one region, one filter snapshot,
// pagination for the listings page, and precision for the cluster query.
type Request struct {
	region    geo.Region
	filters   filter.State
	page      int
	pageSize  int
	zoom      float64
	precision int
}

// New validates and normalizes query parameters.
// Defaults: page=1, pageSize=20. Precision is clamped.
func New(region geo.Region, filters filter.State, zoom float64, page, pageSize int) (Request, error) {
	if region.IsZero() {
		return Request{}, domain.ErrNoRegion
	}
	if rect, ok := region.Rect(); ok && !rect.Valid() {
		return Request{}, fmt.Errorf("%w: malformed rectangle", domain.ErrInvalidRegion)
	}
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Request{
		region:    region,
		filters:   filters,
		page:      page,
		pageSize:  pageSize,
		zoom:      zoom,
		precision: PrecisionForZoom(zoom),
	}, nil
}

// Region returns the spatial scope.
func (r *Request) Region() geo.Region { return r.region }

// Filters returns the filter snapshot the query was issued with.
func (r *Request) Filters() filter.State { return r.filters }

// Page returns the 1-based listings page.
func (r *Request) Page() int { return r.page }

// PageSize returns the listings page size.
func (r *Request) PageSize() int { return r.pageSize }

// Zoom returns the map zoom the query was issued at.
func (r *Request) Zoom() float64 { return r.zoom }

// Precision returns the clamped cluster precision.
func (r *Request) Precision() int { return r.precision }
