package listings

import (
	"sort"

	"github.com/homegrid/mapsearch/internal/domain/geo"
	"github.com/homegrid/mapsearch/internal/domain/listing"
)

// cell accumulates the listings falling into one grid cell.
type cell struct {
	count  int
	sumLat float64
	sumLng float64
	bounds geo.Bounds
}

// aggregator buckets points into a rows x cols grid over a bounding box
// and emits one cluster per non-empty cell.
type aggregator struct {
	box     geo.Bounds
	rows    int
	cols    int
	latStep float64
	lngStep float64
	cells   map[int]*cell
}

// cellsPerAxis maps cluster precision to grid resolution: finer cells as
// the user zooms in.
func cellsPerAxis(precision int) int {
	return precision * 2
}

func newAggregator(box geo.Bounds, precision int) *aggregator {
	n := cellsPerAxis(precision)
	return &aggregator{
		box:     box,
		rows:    n,
		cols:    n,
		latStep: (box.North - box.South) / float64(n),
		lngStep: (box.East - box.West) / float64(n),
		cells:   make(map[int]*cell),
	}
}

func (a *aggregator) add(p geo.Point) {
	if a.latStep <= 0 || a.lngStep <= 0 {
		return
	}
	row := int((p.Lat - a.box.South) / a.latStep)
	col := int((p.Lng - a.box.West) / a.lngStep)
	// Points on the north/east edge land in the last cell.
	if row == a.rows {
		row = a.rows - 1
	}
	if col == a.cols {
		col = a.cols - 1
	}
	if row < 0 || col < 0 || row >= a.rows || col >= a.cols {
		return
	}

	idx := row*a.cols + col
	c, ok := a.cells[idx]
	if !ok {
		c = &cell{}
		a.cells[idx] = c
	}
	c.count++
	c.sumLat += p.Lat
	c.sumLng += p.Lng
	c.bounds = c.bounds.Extend(p)
}

// clusters emits the non-empty cells as cluster aggregates, densest
// first, capped at limit.
func (a *aggregator) clusters(limit int) []listing.Cluster {
	out := make([]listing.Cluster, 0, len(a.cells))
	for _, c := range a.cells {
		centroid := geo.Point{
			Lat: c.sumLat / float64(c.count),
			Lng: c.sumLng / float64(c.count),
		}
		out = append(out, listing.NewCluster(centroid, c.bounds, c.count))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count() != out[j].Count() {
			return out[i].Count() > out[j].Count()
		}
		return out[i].Key() < out[j].Key()
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
