package markers

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/homegrid/mapsearch/internal/domain/listing"
	"github.com/homegrid/mapsearch/internal/domain/search/mode"
	"github.com/homegrid/mapsearch/internal/domain/search/result"
)

// Manager reconciles the rendered markers against each committed
// response. It keeps two registries, one per rendering mode; only one is
// populated at a time.
type Manager struct {
	renderer Renderer
	popup    Popup
	listings *Registry
	clusters *Registry
	logger   *zap.Logger

	// popupKey tracks which marker the open popup is anchored to, so
	// removing that marker also tears the popup down.
	popupKey string
}

// NewManager creates a marker lifecycle manager.
func NewManager(renderer Renderer, popup Popup, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		renderer: renderer,
		popup:    popup,
		listings: NewRegistry(),
		clusters: NewRegistry(),
		logger:   logger,
	}
}

// Listings returns the individual-marker registry.
func (m *Manager) Listings() *Registry { return m.listings }

// Clusters returns the cluster-marker registry.
func (m *Manager) Clusters() *Registry { return m.clusters }

// Apply reconciles the rendered markers with a committed response at the
// given zoom. Mode selection is re-evaluated on every call.
func (m *Manager) Apply(resp *result.Response, zoom float64) mode.Mode {
	selected := mode.Select(resp.Count(), zoom)
	switch selected {
	case mode.Hidden:
		m.clearListings()
		m.clearClusters()
	case mode.Clusters:
		m.clearListings()
		m.applyClusters(resp.Clusters())
	case mode.Markers:
		m.clearClusters()
		m.applyListings(resp.List())
	}
	m.logger.Debug("markers reconciled",
		zap.String("mode", string(selected)),
		zap.Int("listings", m.listings.Len()),
		zap.Int("clusters", m.clusters.Len()),
	)
	return selected
}

// HidePopup closes any open popup. Called on interaction start: a popup
// anchored to a marker becomes visually incorrect mid-pan.
func (m *Manager) HidePopup() {
	m.popupKey = ""
	m.popup.Hide()
}

func (m *Manager) applyListings(list []listing.Listing) {
	byKey := make(map[string]*listing.Listing, len(list))
	keys := make([]string, len(list))
	for i := range list {
		keys[i] = list[i].Key()
		byKey[keys[i]] = &list[i]
	}

	m.listings.Reconcile(keys,
		func(key string) Handle {
			l := byKey[key]
			return m.renderer.Attach(l.Location(), markerHTML(l), Events{
				OnEnter: func() {
					m.popupKey = key
					m.popup.Show(l.Location(), popupHTML(l))
				},
				OnLeave: func() {
					if m.popupKey == key {
						m.HidePopup()
					}
				},
			})
		},
		m.removeMarker,
	)
}

func (m *Manager) applyClusters(clusters []listing.Cluster) {
	byKey := make(map[string]*listing.Cluster, len(clusters))
	keys := make([]string, len(clusters))
	for i := range clusters {
		keys[i] = clusters[i].Key()
		byKey[keys[i]] = &clusters[i]
	}

	m.clusters.Reconcile(keys,
		func(key string) Handle {
			c := byKey[key]
			return m.renderer.Attach(c.Location(), clusterHTML(c), Events{})
		},
		m.removeMarker,
	)
}

func (m *Manager) clearListings() {
	m.listings.Clear(m.removeMarker)
}

func (m *Manager) clearClusters() {
	m.clusters.Clear(m.removeMarker)
}

// removeMarker detaches a marker and tears down its popup if open.
func (m *Manager) removeMarker(key string, h Handle) {
	if m.popupKey == key {
		m.HidePopup()
	}
	m.renderer.Detach(h)
}

func markerHTML(l *listing.Listing) string {
	return fmt.Sprintf(`<div class="hg-marker" data-mls=%q>%s</div>`, l.Key(), shortPrice(l.Price()))
}

func popupHTML(l *listing.Listing) string {
	return fmt.Sprintf(
		`<div class="hg-popup" data-mls=%q><strong>%s</strong><span>%s</span><span>%d bd &middot; %d ba</span></div>`,
		l.Key(), l.Address(), shortPrice(l.Price()), l.Beds(), l.Baths(),
	)
}

func clusterHTML(c *listing.Cluster) string {
	return fmt.Sprintf(`<div class="hg-cluster">%d</div>`, c.Count())
}

// shortPrice renders 1234000 as "$1.2M" and 899000 as "$899K".
func shortPrice(price float64) string {
	switch {
	case price >= 1_000_000:
		return fmt.Sprintf("$%.1fM", price/1_000_000)
	case price >= 1_000:
		return fmt.Sprintf("$%.0fK", price/1_000)
	default:
		return fmt.Sprintf("$%.0f", price)
	}
}
