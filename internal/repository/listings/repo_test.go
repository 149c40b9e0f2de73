package listings

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/homegrid/mapsearch/internal/db"
	"github.com/homegrid/mapsearch/internal/domain"
	"github.com/homegrid/mapsearch/internal/domain/geo"
	"github.com/homegrid/mapsearch/internal/domain/listing"
	"github.com/homegrid/mapsearch/internal/domain/search/filter"
	"github.com/homegrid/mapsearch/internal/domain/search/request"
)

// fakeStore serves geo searches, hash loads, and the shared query
// cache from in-memory maps.
type fakeStore struct {
	geo      map[string]db.GeoMember
	hashes   map[string]map[string]string
	kv       map[string][]byte
	deleted  []string
	removed  []string
	geoCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		geo:    make(map[string]db.GeoMember),
		hashes: make(map[string]map[string]string),
		kv:     make(map[string][]byte),
	}
}

func (s *fakeStore) GeoAdd(_ context.Context, _ string, members []db.GeoMember) error {
	for _, m := range members {
		s.geo[m.Member] = m
	}
	return nil
}

func (s *fakeStore) GeoSearchBox(_ context.Context, _ string, lng, lat, widthKM, heightKM float64, limit int) ([]string, error) {
	s.geoCalls++
	// Crude degree window derived from the same constants the repo
	// uses, good enough to exercise the bounding box stage.
	halfLat := heightKM / kmPerDegreeLat / 2
	halfLng := widthKM / (kmPerDegreeLng * math.Cos(lat*math.Pi/180)) / 2
	var out []string
	for member, m := range s.geo {
		if m.Lat >= lat-halfLat && m.Lat <= lat+halfLat && m.Lng >= lng-halfLng && m.Lng <= lng+halfLng {
			out = append(out, member)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (s *fakeStore) GeoRemove(_ context.Context, _ string, members []string) error {
	for _, m := range members {
		delete(s.geo, m)
		s.removed = append(s.removed, m)
	}
	return nil
}

func (s *fakeStore) HSetMulti(_ context.Context, items []db.HashSetItem) error {
	for _, item := range items {
		s.hashes[item.Key] = item.Fields
	}
	return nil
}

func (s *fakeStore) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		out[i] = s.hashes[k]
	}
	return out, nil
}

func (s *fakeStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	return s.hashes[key], nil
}

func (s *fakeStore) Del(_ context.Context, key string) error {
	delete(s.hashes, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := s.kv[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return data, nil
}

func (s *fakeStore) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.kv[key] = value
	return nil
}

func mustListing(t *testing.T, mls string, lat, lng, price float64, beds, baths int, status, propType string) listing.Listing {
	t.Helper()
	l, err := listing.New(mls, geo.Point{Lat: lat, Lng: lng}, price, "123 King St W, Toronto", beds, baths, status, propType)
	if err != nil {
		t.Fatalf("listing.New: %v", err)
	}
	return l
}

func seedRepo(t *testing.T) (*Repo, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	repo, err := New(store, "test:")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	items := []listing.Listing{
		mustListing(t, "W100", 43.60, -79.60, 450_000, 2, 1, "active", "condo"),
		mustListing(t, "W101", 43.65, -79.50, 750_000, 3, 2, "active", "house"),
		mustListing(t, "W102", 43.70, -79.40, 1_200_000, 4, 3, "sold", "house"),
		mustListing(t, "W103", 45.50, -73.60, 600_000, 2, 2, "active", "condo"),
	}
	if err := repo.Upsert(context.Background(), items); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	return repo, store
}

func torontoRequest(t *testing.T, filters filter.State, page int) *request.Request {
	t.Helper()
	bounds, err := geo.NewBounds(43.9, 43.4, -79.1, -79.9)
	if err != nil {
		t.Fatalf("NewBounds: %v", err)
	}
	req, err := request.New(geo.RectRegion(bounds), filters, 12, page, 2)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &req
}

func TestRepo_GetFiltered_ViewportOnly(t *testing.T) {
	repo, _ := seedRepo(t)

	list, count, pages, err := repo.GetFiltered(context.Background(), torontoRequest(t, filter.New(nil), 1))
	if err != nil {
		t.Fatalf("GetFiltered: %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d, want 3 (Montreal listing excluded)", count)
	}
	if pages != 2 {
		t.Fatalf("pages = %d, want 2", pages)
	}
	if len(list) != 2 {
		t.Fatalf("page length = %d, want 2", len(list))
	}
}

func TestRepo_GetFiltered_SecondPage(t *testing.T) {
	repo, _ := seedRepo(t)

	list, count, _, err := repo.GetFiltered(context.Background(), torontoRequest(t, filter.New(nil), 2))
	if err != nil {
		t.Fatalf("GetFiltered: %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
	if len(list) != 1 {
		t.Fatalf("second page length = %d, want 1", len(list))
	}
}

func TestRepo_GetFiltered_PageBeyondEnd(t *testing.T) {
	repo, _ := seedRepo(t)

	list, count, _, err := repo.GetFiltered(context.Background(), torontoRequest(t, filter.New(nil), 9))
	if err != nil {
		t.Fatalf("GetFiltered: %v", err)
	}
	if count != 3 || len(list) != 0 {
		t.Fatalf("got count=%d len=%d, want count=3 and an empty page", count, len(list))
	}
}

func TestRepo_Filters(t *testing.T) {
	repo, _ := seedRepo(t)

	tests := []struct {
		name    string
		filters map[string][]string
		want    int
	}{
		{"type", map[string][]string{filter.KeyPropertyType: {"house"}}, 2},
		{"status", map[string][]string{filter.KeyStatus: {"sold"}}, 1},
		{"min price", map[string][]string{filter.KeyMinPrice: {"700000"}}, 2},
		{"max price", map[string][]string{filter.KeyMaxPrice: {"500000"}}, 1},
		{"beds is a minimum", map[string][]string{filter.KeyBeds: {"3"}}, 2},
		{"baths is a minimum", map[string][]string{filter.KeyBaths: {"2"}}, 2},
		{"combined", map[string][]string{
			filter.KeyPropertyType: {"house"},
			filter.KeyStatus:       {"active"},
		}, 1},
		{"location substring", map[string][]string{filter.KeyLocation: {"king st"}}, 3},
		{"location miss", map[string][]string{filter.KeyLocation: {"queen st"}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, count, _, err := repo.GetFiltered(context.Background(), torontoRequest(t, filter.New(tt.filters), 1))
			if err != nil {
				t.Fatalf("GetFiltered: %v", err)
			}
			if count != tt.want {
				t.Fatalf("count = %d, want %d", count, tt.want)
			}
		})
	}
}

func TestRepo_GetClusters(t *testing.T) {
	repo, _ := seedRepo(t)

	clusters, count, err := repo.GetClusters(context.Background(), torontoRequest(t, filter.New(nil), 1))
	if err != nil {
		t.Fatalf("GetClusters: %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
	total := 0
	for _, c := range clusters {
		total += c.Count()
	}
	if total != 3 {
		t.Fatalf("cluster members = %d, want 3", total)
	}
}

func TestRepo_GetClusters_PolygonRegion(t *testing.T) {
	repo, _ := seedRepo(t)

	// Triangle around the two western listings, excluding W102.
	poly, ok := geo.Normalize([]geo.Point{
		{Lat: 43.55, Lng: -79.70},
		{Lat: 43.75, Lng: -79.70},
		{Lat: 43.65, Lng: -79.45},
	})
	if !ok {
		t.Fatal("Normalize rejected triangle")
	}
	req, err := request.New(geo.PolygonRegion(poly), filter.New(nil), 12, 1, 20)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}

	_, count, err := repo.GetClusters(context.Background(), &req)
	if err != nil {
		t.Fatalf("GetClusters: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2 (polygon excludes W102)", count)
	}
}

func TestRepo_Remove(t *testing.T) {
	repo, store := seedRepo(t)

	if err := repo.Remove(context.Background(), []string{"W100", "W101"}); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(store.removed) != 2 {
		t.Fatalf("geo removals = %d, want 2", len(store.removed))
	}

	_, count, _, err := repo.GetFiltered(context.Background(), torontoRequest(t, filter.New(nil), 1))
	if err != nil {
		t.Fatalf("GetFiltered: %v", err)
	}
	if count != 1 {
		t.Fatalf("count after removal = %d, want 1", count)
	}
}

func TestRepo_SkipsDanglingIndexEntries(t *testing.T) {
	repo, store := seedRepo(t)

	// Simulate a hash deleted while the member still sits in the index.
	delete(store.hashes, "test:listing:W101")

	_, count, _, err := repo.GetFiltered(context.Background(), torontoRequest(t, filter.New(nil), 1))
	if err != nil {
		t.Fatalf("GetFiltered: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}

func TestFieldsRoundTrip(t *testing.T) {
	in := mustListing(t, "W200", 43.651070, -79.347015, 899_900, 3, 2, "active", "house")

	out, err := fromFields(toFields(&in))
	if err != nil {
		t.Fatalf("fromFields: %v", err)
	}
	if out.Key() != in.Key() || out.Location() != in.Location() || out.Price() != in.Price() {
		t.Fatalf("round trip mismatch: got %+v", out)
	}
	if out.Beds() != 3 || out.Baths() != 2 || out.Status() != "active" || out.PropertyType() != "house" {
		t.Fatalf("round trip mismatch: got %+v", out)
	}
}

func TestRepo_SharedCacheServesSecondInstance(t *testing.T) {
	repo, store := seedRepo(t)
	ctx := context.Background()
	req := torontoRequest(t, filter.New(nil), 1)

	list, count, pages, err := repo.GetFiltered(ctx, req)
	if err != nil {
		t.Fatalf("GetFiltered: %v", err)
	}

	// A second instance sharing the same Redis must serve the cached
	// result without touching the geo index.
	other, err := New(store, "test:")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	calls := store.geoCalls
	list2, count2, pages2, err := other.GetFiltered(ctx, req)
	if err != nil {
		t.Fatalf("GetFiltered: %v", err)
	}
	if store.geoCalls != calls {
		t.Fatalf("geo index queried %d more times, want 0", store.geoCalls-calls)
	}
	if count2 != count || pages2 != pages || len(list2) != len(list) {
		t.Fatalf("cached page = (%d items, count %d, pages %d), want (%d, %d, %d)",
			len(list2), count2, pages2, len(list), count, pages)
	}
	for i := range list {
		if list2[i].Key() != list[i].Key() {
			t.Errorf("cached item %d = %s, want %s", i, list2[i].Key(), list[i].Key())
		}
	}
}

func TestRepo_SharedCacheServesClusters(t *testing.T) {
	repo, store := seedRepo(t)
	ctx := context.Background()
	req := torontoRequest(t, filter.New(nil), 1)

	clusters, count, err := repo.GetClusters(ctx, req)
	if err != nil {
		t.Fatalf("GetClusters: %v", err)
	}

	other, err := New(store, "test:")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	calls := store.geoCalls
	clusters2, count2, err := other.GetClusters(ctx, req)
	if err != nil {
		t.Fatalf("GetClusters: %v", err)
	}
	if store.geoCalls != calls {
		t.Fatalf("geo index queried %d more times, want 0", store.geoCalls-calls)
	}
	if count2 != count || len(clusters2) != len(clusters) {
		t.Fatalf("cached clusters = (%d, count %d), want (%d, %d)",
			len(clusters2), count2, len(clusters), count)
	}
	total := 0
	for i := range clusters2 {
		total += clusters2[i].Count()
	}
	if total != count {
		t.Fatalf("cached cluster members total %d, want %d", total, count)
	}
}

func TestRepo_GetListing(t *testing.T) {
	repo, _ := seedRepo(t)

	l, err := repo.GetListing(context.Background(), "W101")
	if err != nil {
		t.Fatalf("GetListing: %v", err)
	}
	if l.Key() != "W101" || l.Beds() != 3 || l.Price() != 750_000 {
		t.Fatalf("GetListing = %+v", l)
	}
}

func TestRepo_GetListing_NotFound(t *testing.T) {
	repo, _ := seedRepo(t)

	_, err := repo.GetListing(context.Background(), "W999")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
