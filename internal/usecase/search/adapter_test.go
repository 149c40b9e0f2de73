package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/homegrid/mapsearch/internal/domain/geo"
	"github.com/homegrid/mapsearch/internal/domain/listing"
	"github.com/homegrid/mapsearch/internal/domain/search/filter"
	"github.com/homegrid/mapsearch/internal/domain/search/request"
)

// --- Mocks ---

type mockService struct {
	mu          sync.Mutex
	clusters    []listing.Cluster
	clusterN    int
	clusterErr  error
	list        []listing.Listing
	listN       int
	pages       int
	listErr     error
	clusterReqs []*request.Request
	listReqs    []*request.Request
	// release, when set, delays both queries until closed.
	release chan struct{}
}

func (m *mockService) GetClusters(ctx context.Context, req *request.Request) ([]listing.Cluster, int, error) {
	if m.release != nil {
		<-m.release
	}
	m.mu.Lock()
	m.clusterReqs = append(m.clusterReqs, req)
	m.mu.Unlock()
	return m.clusters, m.clusterN, m.clusterErr
}

func (m *mockService) GetFiltered(ctx context.Context, req *request.Request) ([]listing.Listing, int, int, error) {
	if m.release != nil {
		<-m.release
	}
	m.mu.Lock()
	m.listReqs = append(m.listReqs, req)
	m.mu.Unlock()
	return m.list, m.listN, m.pages, m.listErr
}

func testViewport(t *testing.T) geo.Viewport {
	t.Helper()
	b, err := geo.NewBounds(43.8, 43.5, -79.2, -79.6)
	if err != nil {
		t.Fatalf("NewBounds: %v", err)
	}
	return geo.Viewport{Center: b.Center(), Bounds: b, Zoom: 13}
}

func testListing(t *testing.T, mls string) listing.Listing {
	t.Helper()
	l, err := listing.New(mls, geo.Point{Lat: 43.6, Lng: -79.4}, 750000, "1 Main St", 3, 2, "for-sale", "detached")
	if err != nil {
		t.Fatalf("listing.New: %v", err)
	}
	return l
}

// --- Tests ---

func TestAdapter_MergesBothQueries(t *testing.T) {
	svc := &mockService{
		clusters: []listing.Cluster{listing.NewCluster(geo.Point{Lat: 43.6, Lng: -79.4}, geo.Bounds{}, 7)},
		clusterN: 42,
		list:     []listing.Listing{testListing(t, "W1")},
		listN:    42,
		pages:    3,
	}
	a := NewAdapter(svc, 20, time.Second)

	resp, err := a.Query(context.Background(), testViewport(t), geo.Polygon{}, filter.State{}, 1)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if resp.Count() != 42 {
		t.Errorf("Count() = %d, want 42", resp.Count())
	}
	if len(resp.List()) != 1 || len(resp.Clusters()) != 1 {
		t.Errorf("merged %d listings, %d clusters", len(resp.List()), len(resp.Clusters()))
	}
	if resp.Pages() != 3 {
		t.Errorf("Pages() = %d, want 3", resp.Pages())
	}
	if len(svc.clusterReqs) != 1 || len(svc.listReqs) != 1 {
		t.Fatalf("expected both queries issued once, got %d/%d", len(svc.clusterReqs), len(svc.listReqs))
	}
}

func TestAdapter_CountFallsBackToClusterTotal(t *testing.T) {
	svc := &mockService{clusterN: 17, listN: 0}
	a := NewAdapter(svc, 20, time.Second)

	resp, err := a.Query(context.Background(), testViewport(t), geo.Polygon{}, filter.State{}, 1)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if resp.Count() != 17 {
		t.Errorf("Count() = %d, want cluster fallback 17", resp.Count())
	}
}

func TestAdapter_PolygonTakesPrecedence(t *testing.T) {
	svc := &mockService{}
	a := NewAdapter(svc, 20, time.Second)

	poly, _ := geo.Normalize([]geo.Point{
		{Lat: 43.5, Lng: -79.5},
		{Lat: 43.7, Lng: -79.5},
		{Lat: 43.7, Lng: -79.3},
	})
	_, err := a.Query(context.Background(), testViewport(t), poly, filter.State{}, 1)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	if _, ok := svc.clusterReqs[0].Region().Polygon(); !ok {
		t.Error("expected polygon region despite viewport bounds being set")
	}
}

func TestAdapter_NoRegionIsSynchronousNil(t *testing.T) {
	svc := &mockService{}
	a := NewAdapter(svc, 20, time.Second)

	resp, err := a.Query(context.Background(), geo.Viewport{Zoom: 12}, geo.Polygon{}, filter.State{}, 1)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if resp != nil {
		t.Errorf("expected nil response, got %+v", resp)
	}
	if len(svc.clusterReqs)+len(svc.listReqs) != 0 {
		t.Error("expected no network calls without a region")
	}
}

func TestAdapter_QueryErrorPropagates(t *testing.T) {
	wantErr := errors.New("backend down")
	svc := &mockService{listErr: wantErr}
	a := NewAdapter(svc, 20, time.Second)

	_, err := a.Query(context.Background(), testViewport(t), geo.Polygon{}, filter.State{}, 1)
	if !errors.Is(err, wantErr) {
		t.Errorf("Query() error = %v, want %v", err, wantErr)
	}
}

func TestAdapter_SharedRequestParameters(t *testing.T) {
	svc := &mockService{}
	filters := filter.New(map[string][]string{filter.KeyBeds: {"3"}})
	a := NewAdapter(svc, 25, time.Second)

	_, err := a.Query(context.Background(), testViewport(t), geo.Polygon{}, filters, 2)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	cr, lr := svc.clusterReqs[0], svc.listReqs[0]
	if cr != lr {
		t.Error("both queries should share one request")
	}
	if v, _ := cr.Filters().Get(filter.KeyBeds); v != "3" {
		t.Errorf("filters not carried: beds = %q", v)
	}
	if cr.Page() != 2 || cr.PageSize() != 25 {
		t.Errorf("pagination not carried: page=%d size=%d", cr.Page(), cr.PageSize())
	}
}
