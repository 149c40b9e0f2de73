package listings

import (
	"math"
	"testing"

	"github.com/homegrid/mapsearch/internal/domain/geo"
	"github.com/homegrid/mapsearch/internal/domain/search/filter"
)

func testBox(t *testing.T) geo.Bounds {
	t.Helper()
	b, err := geo.NewBounds(44.0, 43.0, -79.0, -80.0)
	if err != nil {
		t.Fatalf("NewBounds: %v", err)
	}
	return b
}

func TestAggregator_GroupsByCell(t *testing.T) {
	agg := newAggregator(testBox(t), 1) // 2x2 grid

	// Three points in the south-west cell, one in the north-east.
	agg.add(geo.Point{Lat: 43.1, Lng: -79.9})
	agg.add(geo.Point{Lat: 43.2, Lng: -79.8})
	agg.add(geo.Point{Lat: 43.3, Lng: -79.7})
	agg.add(geo.Point{Lat: 43.9, Lng: -79.1})

	clusters := agg.clusters(200)
	if len(clusters) != 2 {
		t.Fatalf("clusters = %d, want 2", len(clusters))
	}
	if clusters[0].Count() != 3 || clusters[1].Count() != 1 {
		t.Fatalf("counts = %d,%d, want 3,1 (densest first)", clusters[0].Count(), clusters[1].Count())
	}
}

func TestAggregator_CentroidIsMean(t *testing.T) {
	agg := newAggregator(testBox(t), 1)

	agg.add(geo.Point{Lat: 43.1, Lng: -79.9})
	agg.add(geo.Point{Lat: 43.3, Lng: -79.7})

	clusters := agg.clusters(200)
	if len(clusters) != 1 {
		t.Fatalf("clusters = %d, want 1", len(clusters))
	}
	loc := clusters[0].Location()
	if math.Abs(loc.Lat-43.2) > 1e-9 || math.Abs(loc.Lng+79.8) > 1e-9 {
		t.Fatalf("centroid = %v, want (43.2, -79.8)", loc)
	}
}

func TestAggregator_CellBoundsCoverMembers(t *testing.T) {
	agg := newAggregator(testBox(t), 1)

	agg.add(geo.Point{Lat: 43.1, Lng: -79.9})
	agg.add(geo.Point{Lat: 43.4, Lng: -79.6})

	clusters := agg.clusters(200)
	b := clusters[0].Bounds()
	if !b.Contains(geo.Point{Lat: 43.1, Lng: -79.9}) || !b.Contains(geo.Point{Lat: 43.4, Lng: -79.6}) {
		t.Fatalf("bounds %v does not cover members", b)
	}
}

func TestAggregator_EdgePointsStayInGrid(t *testing.T) {
	box := testBox(t)
	agg := newAggregator(box, 3)

	// All four corners of the box itself.
	agg.add(geo.Point{Lat: box.South, Lng: box.West})
	agg.add(geo.Point{Lat: box.South, Lng: box.East})
	agg.add(geo.Point{Lat: box.North, Lng: box.West})
	agg.add(geo.Point{Lat: box.North, Lng: box.East})

	total := 0
	for _, c := range agg.clusters(200) {
		total += c.Count()
	}
	if total != 4 {
		t.Fatalf("kept %d corner points, want 4", total)
	}
}

func TestAggregator_IgnoresPointsOutsideBox(t *testing.T) {
	agg := newAggregator(testBox(t), 2)

	agg.add(geo.Point{Lat: 50.0, Lng: -79.5})
	agg.add(geo.Point{Lat: 43.5, Lng: -70.0})

	if got := agg.clusters(200); len(got) != 0 {
		t.Fatalf("clusters = %d, want 0", len(got))
	}
}

func TestAggregator_LimitCapsOutput(t *testing.T) {
	agg := newAggregator(testBox(t), 12) // 24x24 grid

	// One point per row along the west edge: 24 distinct cells.
	for i := 0; i < 24; i++ {
		agg.add(geo.Point{Lat: 43.0 + (float64(i)+0.5)/24.0, Lng: -79.95})
	}

	if got := agg.clusters(10); len(got) != 10 {
		t.Fatalf("clusters = %d, want 10", len(got))
	}
}

func TestAggregator_FinerPrecisionSplitsCells(t *testing.T) {
	pts := []geo.Point{
		{Lat: 43.1, Lng: -79.9},
		{Lat: 43.2, Lng: -79.6},
		{Lat: 43.8, Lng: -79.2},
		{Lat: 43.9, Lng: -79.4},
	}

	counts := map[int]int{}
	for _, precision := range []int{1, 4, 12} {
		agg := newAggregator(testBox(t), precision)
		for _, p := range pts {
			agg.add(p)
		}
		counts[precision] = len(agg.clusters(200))
	}
	if counts[1] > counts[4] || counts[4] > counts[12] {
		t.Fatalf("cluster counts should not shrink as precision grows: %v", counts)
	}
}

func TestCellsPerAxis(t *testing.T) {
	for precision, want := range map[int]int{1: 2, 6: 12, 12: 24} {
		if got := cellsPerAxis(precision); got != want {
			t.Errorf("cellsPerAxis(%d) = %d, want %d", precision, got, want)
		}
	}
}

func TestCacheKey_DistinguishesRequests(t *testing.T) {
	base := torontoRequest(t, filter.New(nil), 1)
	other := torontoRequest(t, filter.New(map[string][]string{"beds": {"3"}}), 1)

	keys := map[string]string{
		"op":      cacheKey("filtered", base),
		"cluster": cacheKey("clusters", base),
		"filter":  cacheKey("filtered", other),
		"page":    cacheKey("filtered", torontoRequest(t, filter.New(nil), 2)),
	}
	seen := map[string]string{}
	for name, k := range keys {
		if prev, ok := seen[k]; ok {
			t.Fatalf("cache key collision between %s and %s: %q", prev, name, k)
		}
		seen[k] = name
	}
}

func TestCacheKey_Stable(t *testing.T) {
	a := cacheKey("filtered", torontoRequest(t, filter.New(map[string][]string{"beds": {"3"}, "status": {"active"}}), 1))
	b := cacheKey("filtered", torontoRequest(t, filter.New(map[string][]string{"status": {"active"}, "beds": {"3"}}), 1))
	if a != b {
		t.Fatalf("same request produced different keys:\n%s\n%s", a, b)
	}
	if a == "" {
		t.Fatal("empty cache key")
	}
}
