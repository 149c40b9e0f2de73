package result

import "github.com/homegrid/mapsearch/internal/domain/listing"

// Response is the atomic unit committed by the search coordinator: one
// listings page, the cluster aggregates, and the totals. A committed
// Response fully replaces the prior one; there is no partial merge.
type Response struct {
	list     []listing.Listing
	clusters []listing.Cluster
	count    int
	page     int
	pages    int
}

// New creates a search response.
func New(list []listing.Listing, clusters []listing.Cluster, count, page, pages int) *Response {
	return &Response{list: list, clusters: clusters, count: count, page: page, pages: pages}
}

// List returns the listings page.
func (r *Response) List() []listing.Listing { return r.list }

// Clusters returns the cluster aggregates.
func (r *Response) Clusters() []listing.Cluster { return r.clusters }

// Count returns the total matching listings.
func (r *Response) Count() int { return r.count }

// Page returns the 1-based page of List.
func (r *Response) Page() int { return r.page }

// Pages returns the total page count.
func (r *Response) Pages() int { return r.pages }

// ListingKeys returns the registry keys for individual-marker mode.
func (r *Response) ListingKeys() []string {
	keys := make([]string, len(r.list))
	for i := range r.list {
		keys[i] = r.list[i].Key()
	}
	return keys
}

// ClusterKeys returns the registry keys for cluster-marker mode.
func (r *Response) ClusterKeys() []string {
	keys := make([]string, len(r.clusters))
	for i := range r.clusters {
		keys[i] = r.clusters[i].Key()
	}
	return keys
}
