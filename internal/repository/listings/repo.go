package listings

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/homegrid/mapsearch/internal/db"
	"github.com/homegrid/mapsearch/internal/domain"
	"github.com/homegrid/mapsearch/internal/domain/listing"
	"github.com/homegrid/mapsearch/internal/domain/search/filter"
	"github.com/homegrid/mapsearch/internal/domain/search/request"
)

const (
	// maxCandidates caps one geo index scan. Region totals above this
	// read as "500+", which the density gate clusters anyway.
	maxCandidates = 10_000
	// cacheTTL bounds how stale a hot query result may be.
	cacheTTL = 30 * time.Second

	kmPerDegreeLat = 110.574
	kmPerDegreeLng = 111.320
)

// store is the consumer interface for listings storage (ISP).
type store interface {
	GeoAdd(ctx context.Context, key string, members []db.GeoMember) error
	GeoSearchBox(ctx context.Context, key string, lng, lat, widthKM, heightKM float64, limit int) ([]string, error)
	GeoRemove(ctx context.Context, key string, members []string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Repo is the reference listings query service: a Redis geo index plus
// one hash per listing, with two cache tiers in front of the viewport
// queries: a ristretto in-process cache and a shared Redis tier that
// lets instances reuse each other's results within the TTL.
// Implements usecase/search.ListingsService.
type Repo struct {
	store  store
	prefix string
	cache  *ristretto.Cache[string, any]
}

// New creates a listings repository.
func New(s store, keyPrefix string) (*Repo, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, any]{
		NumCounters: 100_000,
		MaxCost:     1 << 26, // 64MB
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &Repo{store: s, prefix: keyPrefix, cache: cache}, nil
}

func (r *Repo) geoKey() string {
	return r.prefix + "listings:geo"
}

func (r *Repo) hashKey(mls string) string {
	return r.prefix + "listing:" + mls
}

// Upsert stores listings and indexes their coordinates. The in-process
// cache is dropped wholesale; shared cache entries age out on their TTL.
func (r *Repo) Upsert(ctx context.Context, items []listing.Listing) error {
	if len(items) == 0 {
		return nil
	}
	hashes := make([]db.HashSetItem, len(items))
	members := make([]db.GeoMember, len(items))
	for i := range items {
		hashes[i] = db.HashSetItem{Key: r.hashKey(items[i].Key()), Fields: toFields(&items[i])}
		members[i] = toGeoMember(&items[i])
	}
	if err := r.store.HSetMulti(ctx, hashes); err != nil {
		return fmt.Errorf("store listings: %w", err)
	}
	if err := r.store.GeoAdd(ctx, r.geoKey(), members); err != nil {
		return fmt.Errorf("index listings: %w", err)
	}
	r.cache.Clear()
	return nil
}

// HealthCheck verifies the geo index responds to a minimal query.
func (r *Repo) HealthCheck(ctx context.Context) error {
	_, err := r.store.GeoSearchBox(ctx, r.geoKey(), 0, 0, 1, 1, 1)
	return err
}

// Remove deletes listings from the hash store and the geo index.
func (r *Repo) Remove(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	for _, key := range keys {
		if err := r.store.Del(ctx, r.hashKey(key)); err != nil {
			return fmt.Errorf("delete listing %s: %w", key, err)
		}
	}
	if err := r.store.GeoRemove(ctx, r.geoKey(), keys); err != nil {
		return fmt.Errorf("unindex listings: %w", err)
	}
	r.cache.Clear()
	return nil
}

// GetClusters runs the aggregate query: listings matching the region and
// filters, bucketed into grid cells at the request precision.
func (r *Repo) GetClusters(ctx context.Context, req *request.Request) ([]listing.Cluster, int, error) {
	key := cacheKey("clusters", req)
	if v, ok := r.cache.Get(key); ok {
		e := v.(*clusterEntry)
		return e.clusters, e.count, nil
	}
	if data, err := r.store.Get(ctx, r.sharedKey(key)); err == nil {
		if e, ok := decodeClusterEntry(data); ok {
			r.cache.SetWithTTL(key, e, int64(len(e.clusters)+1), cacheTTL)
			return e.clusters, e.count, nil
		}
	}

	matched, err := r.matching(ctx, req)
	if err != nil {
		return nil, 0, err
	}

	agg := newAggregator(req.Region().BoundingBox(), req.Precision())
	for i := range matched {
		agg.add(matched[i].Location())
	}
	clusters := agg.clusters(request.ClusterLimit)

	entry := &clusterEntry{clusters: clusters, count: len(matched)}
	r.cache.SetWithTTL(key, entry, int64(len(clusters)+1), cacheTTL)
	if data, err := encodeClusterEntry(entry); err == nil {
		// A failed shared write only costs the next instance a recompute.
		_ = r.store.SetWithTTL(ctx, r.sharedKey(key), data, cacheTTL)
	}
	return clusters, len(matched), nil
}

// GetFiltered runs the paginated listings query. Results keep the geo
// index's nearest-first order, which makes pagination stable between
// the pages of one viewport.
func (r *Repo) GetFiltered(ctx context.Context, req *request.Request) ([]listing.Listing, int, int, error) {
	key := cacheKey("filtered", req)
	if v, ok := r.cache.Get(key); ok {
		e := v.(*pageEntry)
		return e.list, e.count, e.pages, nil
	}
	if data, err := r.store.Get(ctx, r.sharedKey(key)); err == nil {
		if e, ok := decodePageEntry(data); ok {
			r.cache.SetWithTTL(key, e, int64(len(e.list)+1), cacheTTL)
			return e.list, e.count, e.pages, nil
		}
	}

	matched, err := r.matching(ctx, req)
	if err != nil {
		return nil, 0, 0, err
	}

	count := len(matched)
	pages := (count + req.PageSize() - 1) / req.PageSize()
	start := (req.Page() - 1) * req.PageSize()
	if start > count {
		start = count
	}
	end := start + req.PageSize()
	if end > count {
		end = count
	}
	page := matched[start:end]

	entry := &pageEntry{list: page, count: count, pages: pages}
	r.cache.SetWithTTL(key, entry, int64(len(page)+1), cacheTTL)
	if data, err := encodePageEntry(entry); err == nil {
		_ = r.store.SetWithTTL(ctx, r.sharedKey(key), data, cacheTTL)
	}
	return page, count, pages, nil
}

// GetListing loads one listing by MLS key.
func (r *Repo) GetListing(ctx context.Context, key string) (listing.Listing, error) {
	fields, err := r.store.HGetAll(ctx, r.hashKey(key))
	if err != nil {
		return listing.Listing{}, fmt.Errorf("load listing %s: %w", key, err)
	}
	if len(fields) == 0 {
		return listing.Listing{}, fmt.Errorf("listing %s: %w", key, domain.ErrNotFound)
	}
	return fromFields(fields)
}

// matching returns the listings inside the request region that satisfy
// the filter snapshot: geo index candidates by bounding box, then
// polygon containment and criteria checks in process.
func (r *Repo) matching(ctx context.Context, req *request.Request) ([]listing.Listing, error) {
	box := req.Region().BoundingBox()
	center := box.Center()
	widthKM := (box.East - box.West) * kmPerDegreeLng * math.Cos(center.Lat*math.Pi/180)
	heightKM := (box.North - box.South) * kmPerDegreeLat

	members, err := r.store.GeoSearchBox(ctx, r.geoKey(), center.Lng, center.Lat, widthKM, heightKM, maxCandidates)
	if err != nil {
		return nil, fmt.Errorf("geo search: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	keys := make([]string, len(members))
	for i, m := range members {
		keys[i] = r.hashKey(m)
	}
	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load listings: %w", err)
	}

	matched := make([]listing.Listing, 0, len(hashes))
	for _, fields := range hashes {
		if len(fields) == 0 {
			// Geo index entry without a hash: deleted mid-scan.
			continue
		}
		l, err := fromFields(fields)
		if err != nil {
			continue
		}
		if !req.Region().Contains(l.Location()) {
			continue
		}
		if !matches(&l, req.Filters()) {
			continue
		}
		matched = append(matched, l)
	}
	return matched, nil
}

// matches applies the filter snapshot to one listing. Bed and bath
// criteria are minimums; prices are a range; type and status are exact.
func matches(l *listing.Listing, f filter.State) bool {
	if v, ok := f.Get(filter.KeyPropertyType); ok && v != l.PropertyType() {
		return false
	}
	if v, ok := f.Get(filter.KeyStatus); ok && v != l.Status() {
		return false
	}
	if n, ok := f.Number(filter.KeyMinPrice); ok && l.Price() < n {
		return false
	}
	if n, ok := f.Number(filter.KeyMaxPrice); ok && l.Price() > n {
		return false
	}
	if n, ok := f.Number(filter.KeyBeds); ok && float64(l.Beds()) < n {
		return false
	}
	if n, ok := f.Number(filter.KeyBaths); ok && float64(l.Baths()) < n {
		return false
	}
	if v, ok := f.Get(filter.KeyLocation); ok {
		if !strings.Contains(strings.ToLower(l.Address()), strings.ToLower(v)) {
			return false
		}
	}
	return true
}

type clusterEntry struct {
	clusters []listing.Cluster
	count    int
}

type pageEntry struct {
	list  []listing.Listing
	count int
	pages int
}

// cacheKey derives a stable cache key from the full request shape.
func cacheKey(op string, req *request.Request) string {
	var b strings.Builder
	b.WriteString(op)
	b.WriteByte('|')
	if poly, ok := req.Region().Polygon(); ok {
		b.WriteString("p:")
		for _, pt := range poly.Points() {
			fmt.Fprintf(&b, "%.6f,%.6f;", pt.Lng, pt.Lat)
		}
	} else if rect, ok := req.Region().Rect(); ok {
		fmt.Fprintf(&b, "r:%.6f,%.6f,%.6f,%.6f", rect.North, rect.South, rect.East, rect.West)
	}
	fmt.Fprintf(&b, "|pr%d|pg%d/%d|", req.Precision(), req.Page(), req.PageSize())
	for _, k := range req.Filters().Keys() {
		fmt.Fprintf(&b, "%s=%s&", k, strings.Join(req.Filters().Values(k), ","))
	}
	return b.String()
}
