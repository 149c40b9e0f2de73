package geo

import "testing"

func TestBounds_Valid(t *testing.T) {
	tests := []struct {
		name   string
		bounds Bounds
		want   bool
	}{
		{"normal", Bounds{North: 44, South: 43, East: -79, West: -80}, true},
		{"inverted lat", Bounds{North: 43, South: 44, East: -79, West: -80}, false},
		{"inverted lng", Bounds{North: 44, South: 43, East: -80, West: -79}, false},
		{"out of range", Bounds{North: 95, South: 43, East: -79, West: -80}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.bounds.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBounds_Contains(t *testing.T) {
	b := Bounds{North: 44, South: 43, East: -79, West: -80}

	if !b.Contains(Point{Lat: 43.5, Lng: -79.5}) {
		t.Error("expected interior point to be contained")
	}
	if !b.Contains(Point{Lat: 44, Lng: -79}) {
		t.Error("expected edge point to be contained")
	}
	if b.Contains(Point{Lat: 44.1, Lng: -79.5}) {
		t.Error("expected exterior point to not be contained")
	}
}

func TestBounds_Extend(t *testing.T) {
	var b Bounds
	b = b.Extend(Point{Lat: 43, Lng: -80})
	b = b.Extend(Point{Lat: 44, Lng: -79})

	want := Bounds{North: 44, South: 43, East: -79, West: -80}
	if b != want {
		t.Errorf("Extend() = %+v, want %+v", b, want)
	}
}

func TestRegion_PolygonTakesPrecedence(t *testing.T) {
	poly, ok := Normalize([]Point{{0, 0}, {0, 2}, {2, 2}, {2, 0}})
	if !ok {
		t.Fatal("Normalize rejected a valid ring")
	}
	r := PolygonRegion(poly)

	if _, ok := r.Polygon(); !ok {
		t.Error("expected polygonal region")
	}
	if _, ok := r.Rect(); ok {
		t.Error("polygonal region should not report a rectangle")
	}
	if r.IsZero() {
		t.Error("polygonal region should not be zero")
	}
}

func TestRegion_Zero(t *testing.T) {
	var r Region
	if !r.IsZero() {
		t.Error("zero region should report IsZero")
	}
}

func TestRegion_BoundingBox(t *testing.T) {
	poly, _ := Normalize([]Point{{Lat: 43, Lng: -80}, {Lat: 44, Lng: -79}, {Lat: 43, Lng: -78}})
	got := PolygonRegion(poly).BoundingBox()

	want := Bounds{North: 44, South: 43, East: -78, West: -80}
	if got != want {
		t.Errorf("BoundingBox() = %+v, want %+v", got, want)
	}
}
