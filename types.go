package mapsearch

// Point is a geographic coordinate.
type Point struct {
	Lat float64
	Lng float64
}

// Bounds is a viewport rectangle.
type Bounds struct {
	North float64
	South float64
	East  float64
	West  float64
}

// Viewport is the rendered map state reported by the engine.
type Viewport struct {
	Center Point
	Bounds Bounds
	Zoom   float64
}

// MapEvents is the rendering engine's event surface. Each subscription
// returns an unsubscribe function.
type MapEvents interface {
	OnLoad(fn func(Viewport)) (unsubscribe func())
	OnMoveEnd(fn func(Viewport)) (unsubscribe func())
	OnInteractionStart(fn func()) (unsubscribe func())
	OnInteractionEnd(fn func()) (unsubscribe func())
}

// MarkerHandle is an opaque reference to a rendered marker, owned by
// the rendering engine.
type MarkerHandle any

// MarkerEvents are the pointer callbacks wired to a marker at attach
// time.
type MarkerEvents struct {
	OnEnter func()
	OnLeave func()
}

// MarkerRenderer places and removes visual markers.
type MarkerRenderer interface {
	Attach(at Point, html string, events MarkerEvents) MarkerHandle
	Detach(handle MarkerHandle)
}

// Popup shows a single detail popup anchored to a geographic point.
type Popup interface {
	Show(anchor Point, html string)
	Hide()
}

// DrawSurface toggles the engine's polygon drawing tool.
type DrawSurface interface {
	EnableDraw()
	DisableDraw()
}

// History replaces the current browser history entry without creating
// a navigation entry.
type History interface {
	Replace(query string)
}

// UI bundles the rendering engine surfaces a session binds to. Map,
// Markers, and Popup are required; Draw and History are optional and
// disable the draw tool and URL synchronization when nil.
type UI struct {
	Map     MapEvents
	Markers MarkerRenderer
	Popup   Popup
	Draw    DrawSurface
	History History
}
