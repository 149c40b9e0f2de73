package search

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/homegrid/mapsearch/internal/domain/geo"
	"github.com/homegrid/mapsearch/internal/domain/search/filter"
	"github.com/homegrid/mapsearch/internal/domain/search/result"
	"github.com/homegrid/mapsearch/internal/metrics"
)

// Coordinator owns the filter state, the active polygon, and the most
// recently committed result. It is the single source of truth for what
// is currently shown. One Coordinator per map-page session.
type Coordinator struct {
	adapter *Adapter
	guard   Guard
	logger  *zap.Logger
	session string

	mu        sync.Mutex
	filters   filter.State
	polygon   geo.Polygon
	page      int
	current   *result.Response
	suspended bool
	inflight  int
}

// NewCoordinator creates a search coordinator for one map-page session.
func NewCoordinator(adapter *Adapter, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	session := uuid.NewString()
	return &Coordinator{
		adapter: adapter,
		logger:  logger.With(zap.String("session", session)),
		session: session,
		page:    1,
	}
}

// SessionID returns the identifier correlating this session's log lines.
func (c *Coordinator) SessionID() string { return c.session }

// SetFilters replaces the filter snapshot. In-flight requests keep the
// snapshot they were issued with.
func (c *Coordinator) SetFilters(patch map[string][]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = c.filters.With(patch)
	c.page = 1
}

// Filters returns the current filter snapshot.
func (c *Coordinator) Filters() filter.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// SetPolygon replaces the active polygon. Rings that normalize to fewer
// than three points clear it, so the next search falls back to the
// viewport bounds.
func (c *Coordinator) SetPolygon(points []geo.Point) {
	poly, ok := geo.Normalize(points)
	c.mu.Lock()
	defer c.mu.Unlock()
	if !ok {
		c.polygon = geo.Polygon{}
		return
	}
	c.polygon = poly
	c.page = 1
}

// ClearPolygon removes the active polygon.
func (c *Coordinator) ClearPolygon() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.polygon = geo.Polygon{}
}

// Polygon returns the active polygon; Valid() is false when absent.
func (c *Coordinator) Polygon() geo.Polygon {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.polygon
}

// SetPage moves the listings page for the next search.
func (c *Coordinator) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = page
}

// Suspend disables initiation of new searches. Called on interaction
// start; viewport changes while suspended are not queued for replay.
func (c *Coordinator) Suspend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.suspended = true
}

// Resume lifts the suspension.
func (c *Coordinator) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.suspended = false
}

// Suspended reports whether search initiation is disabled.
func (c *Coordinator) Suspended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.suspended
}

// Loading reports whether a fetch cycle is in flight.
func (c *Coordinator) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight > 0
}

// Current returns the most recently committed response, nil before the
// first commit.
func (c *Coordinator) Current() *result.Response {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Search performs one coordinated fetch cycle for the viewport and, on
// success, commits the result. Returns (nil, nil) when searches are
// suspended, when no region is available, or when the response arrived
// stale. Errors never overwrite the last committed response.
func (c *Coordinator) Search(ctx context.Context, vp geo.Viewport) (*result.Response, error) {
	c.mu.Lock()
	if c.suspended {
		c.mu.Unlock()
		c.logger.Debug("search skipped: suspended")
		metrics.SearchSkipped(metrics.OutcomeSuspended)
		return nil, nil
	}
	poly := c.polygon
	filters := c.filters
	page := c.page
	if !poly.Valid() && !vp.HasBounds() {
		c.mu.Unlock()
		c.logger.Debug("search skipped: no region")
		metrics.SearchSkipped(metrics.OutcomeNoRegion)
		return nil, nil
	}
	c.inflight++
	// The sequence is drawn under the same lock as the state snapshot,
	// so snapshot order and sequence order can never invert.
	seq := c.guard.Next()
	c.mu.Unlock()

	start := time.Now()
	metrics.SearchStarted()

	resp, err := c.adapter.Query(ctx, vp, poly, filters, page)

	c.mu.Lock()
	c.inflight--
	c.mu.Unlock()

	elapsed := time.Since(start).Seconds()
	switch {
	case err != nil:
		metrics.SearchFinished(metrics.OutcomeError, elapsed)
		c.logger.Warn("search failed", zap.Uint64("seq", seq), zap.Error(err))
		return nil, err
	case resp == nil:
		metrics.SearchFinished(metrics.OutcomeNoRegion, elapsed)
		return nil, nil
	case !c.guard.Latest(seq):
		metrics.SearchFinished(metrics.OutcomeStale, elapsed)
		c.logger.Debug("stale response discarded", zap.Uint64("seq", seq))
		return nil, nil
	}

	committed := c.commitLatest(seq, resp)
	if committed == nil {
		// A newer search started between the guard check and the commit.
		metrics.SearchFinished(metrics.OutcomeStale, elapsed)
		c.logger.Debug("stale response discarded", zap.Uint64("seq", seq))
		return nil, nil
	}
	metrics.SearchFinished(metrics.OutcomeCommitted, elapsed)
	c.logger.Debug("search committed",
		zap.Uint64("seq", seq),
		zap.Int("count", committed.Count()),
		zap.Int("clusters", len(committed.Clusters())),
	)
	return committed, nil
}

// Commit stores the response as current state and returns it unchanged,
// so callers can chain rendering updates off the same value.
func (c *Coordinator) Commit(resp *result.Response) *result.Response {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = resp
	return resp
}

// commitLatest commits only if seq is still the newest search. The
// re-check under the lock closes the window between the guard check and
// the store.
func (c *Coordinator) commitLatest(seq uint64, resp *result.Response) *result.Response {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.guard.Latest(seq) {
		return nil
	}
	c.current = resp
	return resp
}
