package mapsearch

import (
	"context"
	"fmt"

	"github.com/homegrid/mapsearch/internal/domain"
	"github.com/homegrid/mapsearch/internal/domain/geo"
	"github.com/homegrid/mapsearch/internal/domain/listing"
	"github.com/homegrid/mapsearch/internal/domain/search/request"
	"github.com/homegrid/mapsearch/pkg/sdk"
)

// Backend serves the two viewport queries. *sdk.Client satisfies it;
// any other implementation with the same shape works too.
type Backend interface {
	GetClusters(ctx context.Context, q sdk.Query) (sdk.ClusterPage, error)
	GetFiltered(ctx context.Context, q sdk.Query) (sdk.ListingPage, error)
}

// backendAdapter translates internal query requests onto the Backend
// wire shape.
type backendAdapter struct {
	backend Backend
}

func (a *backendAdapter) GetClusters(ctx context.Context, req *request.Request) ([]listing.Cluster, int, error) {
	page, err := a.backend.GetClusters(ctx, queryFromRequest(req))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: clusters: %v", domain.ErrQueryFailed, err)
	}

	clusters := make([]listing.Cluster, 0, len(page.Items))
	for _, c := range page.Items {
		bounds := geo.Bounds{North: c.Bounds.North, South: c.Bounds.South, East: c.Bounds.East, West: c.Bounds.West}
		clusters = append(clusters, listing.NewCluster(
			geo.Point{Lat: c.Location.Lat, Lng: c.Location.Lng}, bounds, c.Count))
	}
	return clusters, page.Count, nil
}

func (a *backendAdapter) GetFiltered(ctx context.Context, req *request.Request) ([]listing.Listing, int, int, error) {
	page, err := a.backend.GetFiltered(ctx, queryFromRequest(req))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: listings: %v", domain.ErrQueryFailed, err)
	}

	list := make([]listing.Listing, 0, len(page.Items))
	for _, item := range page.Items {
		l, err := listing.New(item.MLS, geo.Point{Lat: item.Location.Lat, Lng: item.Location.Lng},
			item.Price, item.Address, item.Beds, item.Baths, item.Status, item.PropertyType)
		if err != nil {
			// A malformed row poisons neither the page nor the session.
			continue
		}
		list = append(list, l)
	}
	return list, page.Count, page.Pages, nil
}

func queryFromRequest(req *request.Request) sdk.Query {
	q := sdk.Query{
		Zoom:     req.Zoom(),
		Page:     req.Page(),
		PageSize: req.PageSize(),
	}

	if poly, ok := req.Region().Polygon(); ok {
		points := make([]sdk.Point, 0, poly.Len())
		for _, p := range poly.Points() {
			points = append(points, sdk.Point{Lat: p.Lat, Lng: p.Lng})
		}
		q.Polygon = points
	} else if rect, ok := req.Region().Rect(); ok {
		q.Bounds = &sdk.Bounds{North: rect.North, South: rect.South, East: rect.East, West: rect.West}
	}

	filters := req.Filters()
	if !filters.IsEmpty() {
		q.Filters = make(map[string][]string, filters.Len())
		for _, key := range filters.Keys() {
			q.Filters[key] = filters.Values(key)
		}
	}
	return q
}
