package track

import (
	"context"

	"go.uber.org/zap"

	"github.com/homegrid/mapsearch/internal/domain/geo"
	"github.com/homegrid/mapsearch/internal/domain/search/result"
)

// MapEvents is the rendering engine's event surface. Each subscription
// returns an unsubscribe function; the tracker keeps them scoped to its
// own lifetime.
type MapEvents interface {
	OnLoad(fn func(geo.Viewport)) (unsubscribe func())
	OnMoveEnd(fn func(geo.Viewport)) (unsubscribe func())
	OnInteractionStart(fn func()) (unsubscribe func())
	OnInteractionEnd(fn func()) (unsubscribe func())
}

// Searcher is the coordinator surface the tracker drives.
type Searcher interface {
	Search(ctx context.Context, vp geo.Viewport) (*result.Response, error)
	Suspend()
	Resume()
}

// PopupHider hides any open marker popup.
type PopupHider interface {
	HidePopup()
}

// Tracker observes the rendering engine's viewport and interaction
// lifecycle. Load and move-end trigger a search; interaction start
// suspends new searches until interaction end. Viewport changes during
// an active interaction are not queued; only the viewport at the next
// move-end gets a fetch.
type Tracker struct {
	events   MapEvents
	searcher Searcher
	popups   PopupHider
	onCommit func(*result.Response, geo.Viewport)
	logger   *zap.Logger

	viewport geo.Viewport
	unsubs   []func()
}

// New creates a tracker. onCommit runs after every committed search with
// the response and the viewport it was fetched for; nil is allowed.
func New(
	events MapEvents, searcher Searcher, popups PopupHider,
	onCommit func(*result.Response, geo.Viewport), logger *zap.Logger,
) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if onCommit == nil {
		onCommit = func(*result.Response, geo.Viewport) {}
	}
	return &Tracker{
		events:   events,
		searcher: searcher,
		popups:   popups,
		onCommit: onCommit,
		logger:   logger,
	}
}

// Viewport returns the last viewport reported by the rendering engine.
func (t *Tracker) Viewport() geo.Viewport { return t.viewport }

// Bind subscribes to the rendering engine's events. ctx bounds the
// searches the tracker initiates.
func (t *Tracker) Bind(ctx context.Context) {
	t.unsubs = append(t.unsubs,
		t.events.OnLoad(func(vp geo.Viewport) { t.report(ctx, vp) }),
		t.events.OnMoveEnd(func(vp geo.Viewport) { t.report(ctx, vp) }),
		t.events.OnInteractionStart(func() {
			t.popups.HidePopup()
			t.searcher.Suspend()
		}),
		t.events.OnInteractionEnd(func() {
			t.searcher.Resume()
		}),
	)
}

// Close drops every subscription.
func (t *Tracker) Close() {
	for _, unsub := range t.unsubs {
		unsub()
	}
	t.unsubs = nil
}

// report stores the new viewport and runs one search cycle. A failed
// refresh keeps the last committed result visible; the error is logged,
// user-visible messaging belongs to the UI layer.
func (t *Tracker) report(ctx context.Context, vp geo.Viewport) {
	t.viewport = vp
	resp, err := t.searcher.Search(ctx, vp)
	if err != nil {
		t.logger.Warn("viewport refresh failed", zap.Error(err))
		return
	}
	if resp == nil {
		return
	}
	t.onCommit(resp, vp)
}
