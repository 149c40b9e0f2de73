package geo

import "fmt"

// Point is a geographic coordinate in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// Valid checks that latitude is in [-90,90] and longitude in [-180,180].
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Bounds is a rectangular area in degrees.
type Bounds struct {
	North float64
	South float64
	East  float64
	West  float64
}

// NewBounds validates and creates a bounding rectangle.
func NewBounds(north, south, east, west float64) (Bounds, error) {
	b := Bounds{North: north, South: south, East: east, West: west}
	if !b.Valid() {
		return Bounds{}, fmt.Errorf("invalid bounds n=%f s=%f e=%f w=%f", north, south, east, west)
	}
	return b, nil
}

// Valid reports whether the rectangle is well-formed. Antimeridian-crossing
// rectangles (east < west) are not supported.
func (b Bounds) Valid() bool {
	if b.North < b.South || b.East < b.West {
		return false
	}
	return (Point{Lat: b.North, Lng: b.East}).Valid() && (Point{Lat: b.South, Lng: b.West}).Valid()
}

// IsZero reports whether the rectangle is the zero value.
func (b Bounds) IsZero() bool {
	return b == Bounds{}
}

// Center returns the midpoint of the rectangle.
func (b Bounds) Center() Point {
	return Point{Lat: (b.North + b.South) / 2, Lng: (b.East + b.West) / 2}
}

// Contains reports whether the point lies inside the rectangle (edges inclusive).
func (b Bounds) Contains(p Point) bool {
	return p.Lat <= b.North && p.Lat >= b.South && p.Lng <= b.East && p.Lng >= b.West
}

// Extend grows the rectangle to include the point. A zero rectangle
// collapses onto the point.
func (b Bounds) Extend(p Point) Bounds {
	if b.IsZero() {
		return Bounds{North: p.Lat, South: p.Lat, East: p.Lng, West: p.Lng}
	}
	if p.Lat > b.North {
		b.North = p.Lat
	}
	if p.Lat < b.South {
		b.South = p.Lat
	}
	if p.Lng > b.East {
		b.East = p.Lng
	}
	if p.Lng < b.West {
		b.West = p.Lng
	}
	return b
}

// Viewport is the rendered map state: center, visible bounds, and zoom.
// Bounds stays zero until the rendering engine reports its first load.
type Viewport struct {
	Center Point
	Bounds Bounds
	Zoom   float64
}

// HasBounds reports whether the rendering engine has reported visible bounds.
func (v Viewport) HasBounds() bool {
	return !v.Bounds.IsZero()
}

// Region scopes a spatial query: either a rectangle or a polygon.
type Region struct {
	rect Bounds
	poly Polygon
}

// RectRegion creates a rectangular region descriptor.
func RectRegion(b Bounds) Region {
	return Region{rect: b}
}

// PolygonRegion creates a polygonal region descriptor.
func PolygonRegion(p Polygon) Region {
	return Region{poly: p}
}

// Rect returns the rectangle and whether this is a rectangular region.
func (r Region) Rect() (Bounds, bool) {
	return r.rect, !r.rect.IsZero()
}

// Polygon returns the polygon and whether this is a polygonal region.
func (r Region) Polygon() (Polygon, bool) {
	return r.poly, r.poly.Valid()
}

// IsZero reports whether the region has neither a rectangle nor a polygon.
func (r Region) IsZero() bool {
	return r.rect.IsZero() && !r.poly.Valid()
}

// BoundingBox returns the rectangle covering the region: the rectangle
// itself, or the polygon's bounding box.
func (r Region) BoundingBox() Bounds {
	if p, ok := r.Polygon(); ok {
		return p.Bounds()
	}
	return r.rect
}

// Contains reports whether the point lies inside the region.
func (r Region) Contains(p Point) bool {
	if poly, ok := r.Polygon(); ok {
		return poly.Contains(p)
	}
	return r.rect.Contains(p)
}
