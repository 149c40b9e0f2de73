package chi

import (
	"fmt"

	"github.com/homegrid/mapsearch/internal/domain/geo"
	"github.com/homegrid/mapsearch/internal/domain/listing"
)

// ErrorCode is a machine-readable error discriminator.
type ErrorCode string

const (
	codeBadRequest       ErrorCode = "bad_request"
	codeUnauthorized     ErrorCode = "unauthorized"
	codeValidationFailed ErrorCode = "validation_failed"
	codeNoRegion         ErrorCode = "no_region"
	codeInvalidRegion    ErrorCode = "invalid_region"
	codeNotFound         ErrorCode = "not_found"
	codeQueryFailed      ErrorCode = "query_failed"
	codeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// PointDTO is a lat/lng pair on the wire.
type PointDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BoundsDTO is a viewport rectangle on the wire.
type BoundsDTO struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// ClusterResponse is one aggregate bubble.
type ClusterResponse struct {
	Location PointDTO  `json:"location"`
	Bounds   BoundsDTO `json:"bounds"`
	Count    int       `json:"count"`
}

// ClusterListResponse is the cluster query result. Mode reports the
// display decision for the returned density at the requested zoom.
type ClusterListResponse struct {
	Items []ClusterResponse `json:"items"`
	Count int               `json:"count"`
	Mode  string            `json:"mode"`
}

// ListingResponse is one listing on the wire.
type ListingResponse struct {
	MLS          string   `json:"mls"`
	Location     PointDTO `json:"location"`
	Price        float64  `json:"price"`
	Address      string   `json:"address"`
	Beds         int      `json:"beds"`
	Baths        int      `json:"baths"`
	Status       string   `json:"status"`
	PropertyType string   `json:"property_type"`
}

// ListingListResponse is one page of the listings query.
type ListingListResponse struct {
	Items []ListingResponse `json:"items"`
	Count int               `json:"count"`
	Page  int               `json:"page"`
	Pages int               `json:"pages"`
}

// UpsertListingsRequest is the ingest payload.
type UpsertListingsRequest struct {
	Listings []ListingResponse `json:"listings"`
}

// UpsertListingsResponse reports how many listings were stored.
type UpsertListingsResponse struct {
	Stored int `json:"stored"`
}

// DeleteListingsRequest names listings to drop by MLS key.
type DeleteListingsRequest struct {
	Keys []string `json:"keys"`
}

// HealthResponse is the aggregated health report.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func clusterToDTO(c *listing.Cluster) ClusterResponse {
	b := c.Bounds()
	return ClusterResponse{
		Location: PointDTO{Lat: c.Location().Lat, Lng: c.Location().Lng},
		Bounds:   BoundsDTO{North: b.North, South: b.South, East: b.East, West: b.West},
		Count:    c.Count(),
	}
}

func listingToDTO(l *listing.Listing) ListingResponse {
	return ListingResponse{
		MLS:          l.Key(),
		Location:     PointDTO{Lat: l.Location().Lat, Lng: l.Location().Lng},
		Price:        l.Price(),
		Address:      l.Address(),
		Beds:         l.Beds(),
		Baths:        l.Baths(),
		Status:       l.Status(),
		PropertyType: l.PropertyType(),
	}
}

func listingFromDTO(dto ListingResponse) (listing.Listing, error) {
	l, err := listing.New(
		dto.MLS,
		geo.Point{Lat: dto.Location.Lat, Lng: dto.Location.Lng},
		dto.Price,
		dto.Address,
		dto.Beds, dto.Baths,
		dto.Status,
		dto.PropertyType,
	)
	if err != nil {
		return listing.Listing{}, fmt.Errorf("build listing: %w", err)
	}
	return l, nil
}
