package listings

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/homegrid/mapsearch/internal/domain/geo"
	"github.com/homegrid/mapsearch/internal/domain/listing"
)

// Wire records for the shared query cache. Instances behind one Redis
// hand computed viewport results to each other through these.

type cachedPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type cachedBounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

type cachedCluster struct {
	Location cachedPoint  `json:"location"`
	Bounds   cachedBounds `json:"bounds"`
	Count    int          `json:"count"`
}

type cachedClusterSet struct {
	Clusters []cachedCluster `json:"clusters"`
	Count    int             `json:"count"`
}

type cachedListing struct {
	MLS     string  `json:"mls"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Price   float64 `json:"price"`
	Address string  `json:"address"`
	Beds    int     `json:"beds"`
	Baths   int     `json:"baths"`
	Status  string  `json:"status"`
	Type    string  `json:"type"`
}

type cachedPage struct {
	Listings []cachedListing `json:"listings"`
	Count    int             `json:"count"`
	Pages    int             `json:"pages"`
}

// sharedKey maps a canonical request key onto a bounded Redis key.
func (r *Repo) sharedKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return r.prefix + "query:" + hex.EncodeToString(sum[:])
}

func encodeClusterEntry(e *clusterEntry) ([]byte, error) {
	set := cachedClusterSet{
		Clusters: make([]cachedCluster, len(e.clusters)),
		Count:    e.count,
	}
	for i := range e.clusters {
		c := &e.clusters[i]
		loc, box := c.Location(), c.Bounds()
		set.Clusters[i] = cachedCluster{
			Location: cachedPoint{Lat: loc.Lat, Lng: loc.Lng},
			Bounds:   cachedBounds{North: box.North, South: box.South, East: box.East, West: box.West},
			Count:    c.Count(),
		}
	}
	return json.Marshal(set)
}

// decodeClusterEntry rebuilds a cluster entry; a malformed record reads
// as a cache miss.
func decodeClusterEntry(data []byte) (*clusterEntry, bool) {
	var set cachedClusterSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, false
	}
	clusters := make([]listing.Cluster, len(set.Clusters))
	for i, c := range set.Clusters {
		clusters[i] = listing.NewCluster(
			geo.Point{Lat: c.Location.Lat, Lng: c.Location.Lng},
			geo.Bounds{North: c.Bounds.North, South: c.Bounds.South, East: c.Bounds.East, West: c.Bounds.West},
			c.Count,
		)
	}
	return &clusterEntry{clusters: clusters, count: set.Count}, true
}

func encodePageEntry(e *pageEntry) ([]byte, error) {
	page := cachedPage{
		Listings: make([]cachedListing, len(e.list)),
		Count:    e.count,
		Pages:    e.pages,
	}
	for i := range e.list {
		l := &e.list[i]
		page.Listings[i] = cachedListing{
			MLS:     l.Key(),
			Lat:     l.Location().Lat,
			Lng:     l.Location().Lng,
			Price:   l.Price(),
			Address: l.Address(),
			Beds:    l.Beds(),
			Baths:   l.Baths(),
			Status:  l.Status(),
			Type:    l.PropertyType(),
		}
	}
	return json.Marshal(page)
}

// decodePageEntry rebuilds a page entry; malformed records and listings
// that no longer validate read as a cache miss.
func decodePageEntry(data []byte) (*pageEntry, bool) {
	var page cachedPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, false
	}
	list := make([]listing.Listing, 0, len(page.Listings))
	for _, c := range page.Listings {
		l, err := listing.New(c.MLS, geo.Point{Lat: c.Lat, Lng: c.Lng},
			c.Price, c.Address, c.Beds, c.Baths, c.Status, c.Type)
		if err != nil {
			return nil, false
		}
		list = append(list, l)
	}
	return &pageEntry{list: list, count: page.Count, pages: page.Pages}, true
}
