package draw

import (
	"go.uber.org/zap"

	"github.com/homegrid/mapsearch/internal/domain/geo"
)

// State is the draw interaction state.
type State int

// Draw states.
const (
	Idle State = iota
	Drawing
)

// Surface is the rendering-engine capability for free-form drawing.
type Surface interface {
	EnableDraw()
	DisableDraw()
}

// PolygonSink receives the normalized search boundary. The search
// coordinator implements it.
type PolygonSink interface {
	SetPolygon(points []geo.Point)
	ClearPolygon()
}

// Controller runs the free-draw interaction: the user sketches a search
// boundary, and the normalized ring overrides the viewport rectangle for
// subsequent searches.
type Controller struct {
	surface Surface
	sink    PolygonSink
	logger  *zap.Logger
	state   State
}

// NewController creates a draw controller in the Idle state.
func NewController(surface Surface, sink PolygonSink, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{surface: surface, sink: sink, logger: logger}
}

// State returns the current interaction state.
func (c *Controller) State() State { return c.state }

// Start enters Drawing: any existing polygon is cleared and the
// engine's free-draw interaction is enabled. No-op while drawing.
func (c *Controller) Start() {
	if c.state == Drawing {
		return
	}
	c.sink.ClearPolygon()
	c.surface.EnableDraw()
	c.state = Drawing
	c.logger.Debug("draw started")
}

// Stop exits to Idle and detaches the draw interaction. The polygon, if
// one was committed, stays active.
func (c *Controller) Stop() {
	if c.state == Idle {
		return
	}
	c.surface.DisableDraw()
	c.state = Idle
	c.logger.Debug("draw stopped")
}

// Clear exits to Idle and nulls the polygon, so the next search falls
// back to viewport bounds.
func (c *Controller) Clear() {
	c.Stop()
	c.sink.ClearPolygon()
	c.logger.Debug("draw cleared")
}

// HandleShape feeds a shape-created or shape-updated event. Rings that
// normalize to fewer than three unique vertices are ignored, not
// committed.
func (c *Controller) HandleShape(ring []geo.Point) {
	if c.state != Drawing {
		return
	}
	poly, ok := geo.Normalize(ring)
	if !ok {
		c.logger.Debug("degenerate ring ignored", zap.Int("points", len(ring)))
		return
	}
	c.sink.SetPolygon(poly.Points())
	c.logger.Debug("polygon committed", zap.Int("points", poly.Len()))
}

// HandleShapeDeleted feeds the engine's shape-deleted event: the drawn
// boundary is gone, so the polygon is cleared and drawing ends.
func (c *Controller) HandleShapeDeleted() {
	if c.state != Drawing {
		return
	}
	c.Clear()
}
