package mapsearch

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/homegrid/mapsearch/internal/domain/geo"
	"github.com/homegrid/mapsearch/internal/domain/search/filter"
	"github.com/homegrid/mapsearch/internal/domain/search/request"
	"github.com/homegrid/mapsearch/internal/domain/search/result"
	"github.com/homegrid/mapsearch/internal/usecase/draw"
	"github.com/homegrid/mapsearch/internal/usecase/markers"
	searchuc "github.com/homegrid/mapsearch/internal/usecase/search"
	"github.com/homegrid/mapsearch/internal/usecase/track"
	"github.com/homegrid/mapsearch/internal/usecase/urlstate"
)

// Session owns the search lifecycle for one interactive map.
type Session struct {
	coordinator *searchuc.Coordinator
	manager     *markers.Manager
	drawCtl     *draw.Controller
	tracker     *track.Tracker
	sync        *urlstate.Synchronizer
	logger      *zap.Logger

	mu     sync.Mutex
	layout Layout
	query  string
}

// New assembles a session over a backend and a rendering engine.
func New(backend Backend, ui UI, opts ...Option) *Session {
	cfg := &sessionConfig{
		pageSize: request.DefaultPageSize,
		timeout:  searchuc.DefaultQueryTimeout,
		layout:   LayoutSplit,
		logger:   zap.NewNop(),
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	s := &Session{
		logger: cfg.logger,
		layout: cfg.layout,
	}

	adapter := searchuc.NewAdapter(&backendAdapter{backend: backend}, cfg.pageSize, cfg.timeout)
	s.coordinator = searchuc.NewCoordinator(adapter, cfg.logger)
	s.manager = markers.NewManager(
		&rendererShim{r: ui.Markers}, &popupShim{p: ui.Popup}, cfg.logger)

	if ui.Draw != nil {
		s.drawCtl = draw.NewController(&surfaceShim{s: ui.Draw}, s.coordinator, cfg.logger)
	}
	if ui.History != nil {
		s.sync = urlstate.NewSynchronizer(ui.History)
	}

	s.tracker = track.New(&eventsShim{m: ui.Map}, s.coordinator, s.manager, s.commit, cfg.logger)
	return s
}

// Bind subscribes to the rendering engine. The context scopes every
// search the subscriptions trigger.
func (s *Session) Bind(ctx context.Context) {
	s.tracker.Bind(ctx)
}

// Close unsubscribes from the rendering engine and hides any popup.
func (s *Session) Close() {
	s.tracker.Close()
	s.manager.HidePopup()
}

// SessionID returns the session correlation id used in logs.
func (s *Session) SessionID() string {
	return s.coordinator.SessionID()
}

// Loading reports whether a fetch cycle is in flight.
func (s *Session) Loading() bool {
	return s.coordinator.Loading()
}

// Suspended reports whether searches are currently suppressed by an
// active map interaction.
func (s *Session) Suspended() bool {
	return s.coordinator.Suspended()
}

// Viewport returns the last viewport the rendering engine reported.
func (s *Session) Viewport() Viewport {
	return publicViewport(s.tracker.Viewport())
}

// SetFilters applies a criteria patch and refreshes the current
// viewport. An empty value list removes the criterion.
func (s *Session) SetFilters(ctx context.Context, patch map[string][]string) {
	s.coordinator.SetFilters(patch)
	s.Refresh(ctx)
}

// SetQuery sets the free-text location query and refreshes.
func (s *Session) SetQuery(ctx context.Context, q string) {
	s.mu.Lock()
	s.query = q
	s.mu.Unlock()

	patch := map[string][]string{filter.KeyLocation: nil}
	if q != "" {
		patch[filter.KeyLocation] = []string{q}
	}
	s.coordinator.SetFilters(patch)
	s.Refresh(ctx)
}

// SetPage moves to a listings page and refreshes.
func (s *Session) SetPage(ctx context.Context, page int) {
	s.coordinator.SetPage(page)
	s.Refresh(ctx)
}

// SetLayout switches the page layout. The new value reaches the URL on
// the next committed search.
func (s *Session) SetLayout(l Layout) {
	s.mu.Lock()
	s.layout = l
	s.mu.Unlock()
}

// StartDraw clears any committed polygon and arms the drawing tool.
// No-op when the session has no draw surface.
func (s *Session) StartDraw() {
	if s.drawCtl != nil {
		s.drawCtl.Start()
	}
}

// StopDraw disarms the drawing tool, keeping a committed polygon.
func (s *Session) StopDraw() {
	if s.drawCtl != nil {
		s.drawCtl.Stop()
	}
}

// SubmitShape reports a finished ring from the drawing tool and
// refreshes with the new polygon scope.
func (s *Session) SubmitShape(ctx context.Context, ring []Point) {
	if s.drawCtl == nil {
		return
	}
	points := make([]geo.Point, len(ring))
	for i, p := range ring {
		points[i] = geo.Point{Lat: p.Lat, Lng: p.Lng}
	}
	s.drawCtl.HandleShape(points)
	s.Refresh(ctx)
}

// ClearDrawing removes the polygon scope and refreshes with the plain
// viewport.
func (s *Session) ClearDrawing(ctx context.Context) {
	if s.drawCtl != nil {
		s.drawCtl.Clear()
	} else {
		s.coordinator.ClearPolygon()
	}
	s.Refresh(ctx)
}

// Restore applies a shared URL query: layout, filters, and free-text
// query land on the session; the returned viewport is for the caller to
// position the map, which then triggers the first search through the
// usual load event.
func (s *Session) Restore(query string) (Viewport, error) {
	st, err := urlstate.Parse(query)
	if err != nil {
		return Viewport{}, err
	}

	s.mu.Lock()
	s.layout = Layout(st.Layout)
	s.query = st.Query
	s.mu.Unlock()

	patch := make(map[string][]string)
	for _, key := range st.Filters.Keys() {
		patch[key] = st.Filters.Values(key)
	}
	if st.Query != "" {
		patch[filter.KeyLocation] = []string{st.Query}
	}
	if len(patch) > 0 {
		s.coordinator.SetFilters(patch)
	}

	return Viewport{Center: Point{Lat: st.Center.Lat, Lng: st.Center.Lng}, Zoom: st.Zoom}, nil
}

// Refresh reruns the search for the current viewport and commits the
// result. Used after filter, page, or polygon changes; viewport moves
// refresh through the tracker instead.
func (s *Session) Refresh(ctx context.Context) {
	vp := s.tracker.Viewport()
	resp, err := s.coordinator.Search(ctx, vp)
	if err != nil {
		s.logger.Warn("refresh failed", zap.Error(err))
		return
	}
	if resp == nil {
		return
	}
	s.commit(resp, vp)
}

// commit fans a committed response out to markers and the URL.
func (s *Session) commit(resp *result.Response, vp geo.Viewport) {
	s.manager.Apply(resp, vp.Zoom)

	if s.sync == nil {
		return
	}
	s.mu.Lock()
	layout := s.layout
	query := s.query
	s.mu.Unlock()

	s.sync.Sync(urlstate.PageState{
		Center:  vp.Center,
		Zoom:    vp.Zoom,
		Layout:  urlstate.Layout(layout),
		Filters: s.coordinator.Filters(),
		Query:   query,
	})
}

func publicViewport(vp geo.Viewport) Viewport {
	return Viewport{
		Center: Point{Lat: vp.Center.Lat, Lng: vp.Center.Lng},
		Bounds: Bounds{North: vp.Bounds.North, South: vp.Bounds.South, East: vp.Bounds.East, West: vp.Bounds.West},
		Zoom:   vp.Zoom,
	}
}

func internalViewport(vp Viewport) geo.Viewport {
	return geo.Viewport{
		Center: geo.Point{Lat: vp.Center.Lat, Lng: vp.Center.Lng},
		Bounds: geo.Bounds{North: vp.Bounds.North, South: vp.Bounds.South, East: vp.Bounds.East, West: vp.Bounds.West},
		Zoom:   vp.Zoom,
	}
}

// --- rendering engine shims ---

type eventsShim struct {
	m MapEvents
}

func (e *eventsShim) OnLoad(fn func(geo.Viewport)) func() {
	return e.m.OnLoad(func(vp Viewport) { fn(internalViewport(vp)) })
}

func (e *eventsShim) OnMoveEnd(fn func(geo.Viewport)) func() {
	return e.m.OnMoveEnd(func(vp Viewport) { fn(internalViewport(vp)) })
}

func (e *eventsShim) OnInteractionStart(fn func()) func() {
	return e.m.OnInteractionStart(fn)
}

func (e *eventsShim) OnInteractionEnd(fn func()) func() {
	return e.m.OnInteractionEnd(fn)
}

type rendererShim struct {
	r MarkerRenderer
}

func (r *rendererShim) Attach(point geo.Point, html string, events markers.Events) markers.Handle {
	return r.r.Attach(Point{Lat: point.Lat, Lng: point.Lng}, html, MarkerEvents{
		OnEnter: events.OnEnter,
		OnLeave: events.OnLeave,
	})
}

func (r *rendererShim) Detach(handle markers.Handle) {
	r.r.Detach(handle)
}

type popupShim struct {
	p Popup
}

func (p *popupShim) Show(anchor geo.Point, html string) {
	p.p.Show(Point{Lat: anchor.Lat, Lng: anchor.Lng}, html)
}

func (p *popupShim) Hide() {
	p.p.Hide()
}

type surfaceShim struct {
	s DrawSurface
}

func (s *surfaceShim) EnableDraw()  { s.s.EnableDraw() }
func (s *surfaceShim) DisableDraw() { s.s.DisableDraw() }
