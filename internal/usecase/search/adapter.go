package search

import (
	"context"
	"fmt"
	"time"

	"github.com/homegrid/mapsearch/internal/domain/geo"
	"github.com/homegrid/mapsearch/internal/domain/listing"
	"github.com/homegrid/mapsearch/internal/domain/search/filter"
	"github.com/homegrid/mapsearch/internal/domain/search/request"
	"github.com/homegrid/mapsearch/internal/domain/search/result"
)

// DefaultQueryTimeout bounds the two-query fetch cycle. The source of
// truth for staleness is the Guard; the timeout only keeps a dead
// backend from pinning the loading flag forever.
const DefaultQueryTimeout = 10 * time.Second

// Adapter translates a viewport or polygon plus filter state into the
// listings query service's request shape and issues the two queries
// needed to render the current view.
type Adapter struct {
	svc      ListingsService
	pageSize int
	timeout  time.Duration
}

// NewAdapter creates a spatial query adapter.
func NewAdapter(svc ListingsService, pageSize int, timeout time.Duration) *Adapter {
	if pageSize <= 0 {
		pageSize = request.DefaultPageSize
	}
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &Adapter{svc: svc, pageSize: pageSize, timeout: timeout}
}

// Query issues the cluster and listings queries concurrently and merges
// them into one response. The polygon takes precedence over the viewport
// bounds when it has enough points. Returns (nil, nil) without any
// network call when no region can be computed.
func (a *Adapter) Query(
	ctx context.Context, vp geo.Viewport, poly geo.Polygon,
	filters filter.State, page int,
) (*result.Response, error) {
	region := regionFor(vp, poly)
	if region.IsZero() {
		return nil, nil
	}

	req, err := request.New(region, filters, vp.Zoom, page, a.pageSize)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	type clusterReply struct {
		clusters []listing.Cluster
		count    int
		err      error
	}
	type listReply struct {
		list  []listing.Listing
		count int
		pages int
		err   error
	}

	clusterCh := make(chan clusterReply, 1)
	listCh := make(chan listReply, 1)

	go func() {
		clusters, count, err := a.svc.GetClusters(ctx, &req)
		clusterCh <- clusterReply{clusters: clusters, count: count, err: err}
	}()
	go func() {
		list, count, pages, err := a.svc.GetFiltered(ctx, &req)
		listCh <- listReply{list: list, count: count, pages: pages, err: err}
	}()

	cr := <-clusterCh
	lr := <-listCh
	if cr.err != nil {
		return nil, fmt.Errorf("cluster query: %w", cr.err)
	}
	if lr.err != nil {
		return nil, fmt.Errorf("listings query: %w", lr.err)
	}

	// The listings query's total is authoritative; the cluster query's
	// total backs it up when absent.
	count := lr.count
	if count == 0 && cr.count > 0 {
		count = cr.count
	}

	return result.New(lr.list, cr.clusters, count, req.Page(), lr.pages), nil
}

// regionFor picks the query region: the polygon when it has at least
// MinPolygonPoints vertices, otherwise the viewport rectangle.
func regionFor(vp geo.Viewport, poly geo.Polygon) geo.Region {
	if poly.Valid() {
		return geo.PolygonRegion(poly)
	}
	if vp.HasBounds() {
		return geo.RectRegion(vp.Bounds)
	}
	return geo.Region{}
}
