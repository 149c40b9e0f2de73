package request

import (
	"errors"
	"testing"

	"github.com/homegrid/mapsearch/internal/domain"
	"github.com/homegrid/mapsearch/internal/domain/geo"
	"github.com/homegrid/mapsearch/internal/domain/search/filter"
)

func rect(t *testing.T) geo.Region {
	t.Helper()
	b, err := geo.NewBounds(44, 43, -79, -80)
	if err != nil {
		t.Fatalf("NewBounds: %v", err)
	}
	return geo.RectRegion(b)
}

func TestPrecisionForZoom(t *testing.T) {
	tests := []struct {
		zoom float64
		want int
	}{
		{0, MinPrecision},
		{4, MinPrecision},
		{5, 1},
		{10, 6},
		{16, 12},
		{22, MaxPrecision},
	}
	for _, tt := range tests {
		if got := PrecisionForZoom(tt.zoom); got != tt.want {
			t.Errorf("PrecisionForZoom(%v) = %d, want %d", tt.zoom, got, tt.want)
		}
	}
}

func TestNew_Defaults(t *testing.T) {
	req, err := New(rect(t), filter.State{}, 12, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if req.Page() != 1 {
		t.Errorf("Page() = %d, want 1", req.Page())
	}
	if req.PageSize() != DefaultPageSize {
		t.Errorf("PageSize() = %d, want %d", req.PageSize(), DefaultPageSize)
	}
	if req.Precision() != 8 {
		t.Errorf("Precision() = %d, want 8", req.Precision())
	}
}

func TestNew_ClampsPageSize(t *testing.T) {
	req, err := New(rect(t), filter.State{}, 12, 3, 500)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if req.PageSize() != MaxPageSize {
		t.Errorf("PageSize() = %d, want %d", req.PageSize(), MaxPageSize)
	}
	if req.Page() != 3 {
		t.Errorf("Page() = %d, want 3", req.Page())
	}
}

func TestNew_NoRegion(t *testing.T) {
	_, err := New(geo.Region{}, filter.State{}, 12, 1, 20)
	if !errors.Is(err, domain.ErrNoRegion) {
		t.Errorf("New() error = %v, want ErrNoRegion", err)
	}
}
