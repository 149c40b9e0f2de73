package search

import (
	"context"

	"github.com/homegrid/mapsearch/internal/domain/listing"
	"github.com/homegrid/mapsearch/internal/domain/search/request"
)

// ListingsService is the listings query service contract. Implementations
// include the Redis-backed repository and the HTTP SDK client.
type ListingsService interface {
	// GetClusters runs the aggregate query: clusters at the request
	// precision plus the total count of matching listings.
	GetClusters(ctx context.Context, req *request.Request) ([]listing.Cluster, int, error)

	// GetFiltered runs the paginated listings query: one page, the total
	// count, and the page count.
	GetFiltered(ctx context.Context, req *request.Request) ([]listing.Listing, int, int, error)
}
