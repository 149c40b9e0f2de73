package markers

import "github.com/homegrid/mapsearch/internal/domain/geo"

// Handle is an opaque reference to a rendered marker, owned by the
// rendering engine.
type Handle any

// Events are the pointer callbacks wired to a marker at attach time.
type Events struct {
	OnEnter func()
	OnLeave func()
}

// Renderer is the rendering-engine capability the manager depends on:
// place and remove visual markers. A headless test double records calls
// instead of touching a real engine.
type Renderer interface {
	Attach(point geo.Point, html string, events Events) Handle
	Detach(handle Handle)
}

// Popup shows a single detail popup anchored to a geographic point.
type Popup interface {
	Show(anchor geo.Point, html string)
	Hide()
}
