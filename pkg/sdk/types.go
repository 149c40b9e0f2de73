package sdk

// Point is a geographic coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is a viewport rectangle.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Listing is one property listing.
type Listing struct {
	MLS          string  `json:"mls"`
	Location     Point   `json:"location"`
	Price        float64 `json:"price"`
	Address      string  `json:"address"`
	Beds         int     `json:"beds"`
	Baths        int     `json:"baths"`
	Status       string  `json:"status"`
	PropertyType string  `json:"property_type"`
}

// Cluster is one aggregate marker.
type Cluster struct {
	Location Point  `json:"location"`
	Bounds   Bounds `json:"bounds"`
	Count    int    `json:"count"`
}

// Query describes one viewport search. Exactly one region is used:
// Polygon when set, otherwise Bounds. Filters uses the criteria keys
// the service understands (location, type, min_price, max_price, beds,
// baths, status).
type Query struct {
	Bounds   *Bounds
	Polygon  []Point
	Zoom     float64
	Page     int
	PageSize int
	Filters  map[string][]string
}

// ClusterPage is the cluster query result.
type ClusterPage struct {
	Items []Cluster `json:"items"`
	Count int       `json:"count"`
	Mode  string    `json:"mode"`
}

// ListingPage is one page of the listings query.
type ListingPage struct {
	Items []Listing `json:"items"`
	Count int       `json:"count"`
	Page  int       `json:"page"`
	Pages int       `json:"pages"`
}

// Health is the aggregated service health report.
type Health struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
