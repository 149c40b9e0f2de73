package listing

import (
	"fmt"

	"github.com/homegrid/mapsearch/internal/domain"
	"github.com/homegrid/mapsearch/internal/domain/geo"
)

// Listing is a property listing as the map needs it: an MLS key,
// coordinates, and the few fields shown on a marker popup.
type Listing struct {
	mls      string
	location geo.Point
	price    float64
	address  string
	beds     int
	baths    int
	status   string
	propType string
}

// New validates and creates a listing.
func New(mls string, location geo.Point, price float64, address string, beds, baths int, status, propType string) (Listing, error) {
	if mls == "" {
		return Listing{}, fmt.Errorf("%w: mls number is required", domain.ErrInvalidListing)
	}
	if !location.Valid() {
		return Listing{}, fmt.Errorf("%w: coordinates out of range for %s", domain.ErrInvalidListing, mls)
	}
	return Listing{
		mls: mls, location: location, price: price,
		address: address, beds: beds, baths: baths,
		status: status, propType: propType,
	}, nil
}

// Key returns the MLS number, the identity used by the marker registry.
func (l *Listing) Key() string { return l.mls }

// Location returns the listing coordinates.
func (l *Listing) Location() geo.Point { return l.location }

// Price returns the asking price.
func (l *Listing) Price() float64 { return l.price }

// Address returns the display address.
func (l *Listing) Address() string { return l.address }

// Beds returns the bedroom count.
func (l *Listing) Beds() int { return l.beds }

// Baths returns the bathroom count.
func (l *Listing) Baths() int { return l.baths }

// Status returns the listing status (for-sale, sold, ...).
func (l *Listing) Status() string { return l.status }

// PropertyType returns the property type (detached, condo, ...).
func (l *Listing) PropertyType() string { return l.propType }

// Cluster is an aggregate of listings within a spatial cell. Ephemeral:
// recomputed on every committed search.
type Cluster struct {
	location geo.Point
	bounds   geo.Bounds
	count    int
}

// NewCluster creates a cluster marker aggregate.
func NewCluster(location geo.Point, bounds geo.Bounds, count int) Cluster {
	return Cluster{location: location, bounds: bounds, count: count}
}

// Location returns the cluster centroid.
func (c *Cluster) Location() geo.Point { return c.location }

// Bounds returns the box covering the clustered listings, used to zoom
// the viewport in when a cluster is clicked.
func (c *Cluster) Bounds() geo.Bounds { return c.bounds }

// Count returns the number of listings aggregated.
func (c *Cluster) Count() int { return c.count }

// Key returns the synthetic registry identity: count plus the centroid
// rounded to five decimals, so an unchanged cluster keeps its marker
// across commits.
func (c *Cluster) Key() string {
	return fmt.Sprintf("%d:%.5f:%.5f", c.count, c.location.Lat, c.location.Lng)
}
