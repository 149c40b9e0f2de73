package mode

// Mode is the rendering strategy for a committed search response.
type Mode string

// Rendering mode constants.
const (
	// Markers renders individual listing pins.
	Markers Mode = "markers"
	// Clusters renders aggregate cluster markers.
	Clusters Mode = "clusters"
	// Hidden renders nothing: the map is too zoomed out for markers.
	Hidden Mode = "hidden"
)

const (
	// DensityThreshold is the result count above which clusters are
	// rendered instead of individual pins.
	DensityThreshold = 500
	// MinMarkerZoom is the zoom below which neither pins nor clusters
	// are instantiated, even for a committed response.
	MinMarkerZoom = 10.0
)

// Select decides the rendering mode for a committed response. Pure:
// re-evaluated on every commit and on every zoom change.
func Select(count int, zoom float64) Mode {
	if zoom < MinMarkerZoom {
		return Hidden
	}
	if count > DensityThreshold {
		return Clusters
	}
	return Markers
}
