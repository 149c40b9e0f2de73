package geo

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// MinPolygonPoints is the minimum vertex count for a usable polygon.
// Anything smaller is treated as "no polygon", not as an error.
const MinPolygonPoints = 3

// Polygon is an ordered ring of vertices. The ring is stored open: the
// closing point is applied only when rendering or serializing.
type Polygon struct {
	points []Point
}

// Normalize builds a polygon from a drawn ring. A duplicate closing point
// (draw tools usually close the ring) is dropped. Returns false when fewer
// than MinPolygonPoints unique vertices remain.
func Normalize(points []Point) (Polygon, bool) {
	if len(points) > 1 && points[0] == points[len(points)-1] {
		points = points[:len(points)-1]
	}
	if len(points) < MinPolygonPoints {
		return Polygon{}, false
	}
	ring := make([]Point, len(points))
	copy(ring, points)
	return Polygon{points: ring}, true
}

// Valid reports whether the polygon has enough vertices to scope a query.
func (p Polygon) Valid() bool {
	return len(p.points) >= MinPolygonPoints
}

// Points returns the open vertex ring.
func (p Polygon) Points() []Point {
	return p.points
}

// Len returns the vertex count.
func (p Polygon) Len() int {
	return len(p.points)
}

// Bounds returns the polygon's bounding box.
func (p Polygon) Bounds() Bounds {
	var b Bounds
	for _, pt := range p.points {
		b = b.Extend(pt)
	}
	return b
}

// Contains reports whether the point lies inside the polygon.
func (p Polygon) Contains(pt Point) bool {
	if !p.Valid() {
		return false
	}
	return xy.IsPointInRing(geom.XY, geom.Coord{pt.Lng, pt.Lat}, p.closedRing())
}

// closedRing returns the ring as flat XY coordinates with the closing
// point appended, the layout go-geom ring predicates expect.
func (p Polygon) closedRing() []float64 {
	ring := make([]float64, 0, (len(p.points)+1)*2)
	for _, pt := range p.points {
		ring = append(ring, pt.Lng, pt.Lat)
	}
	ring = append(ring, p.points[0].Lng, p.points[0].Lat)
	return ring
}
