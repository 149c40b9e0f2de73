// Package mapsearch drives a viewport-bound listings search session.
//
// A Session owns the search lifecycle for one interactive map: it
// tracks the viewport, debounces overlapping fetches so only the most
// recent one lands, reconciles markers against committed results, runs
// the polygon draw state machine, and mirrors the committed state into
// a shareable URL query.
//
// The rendering engine stays behind small interfaces (MapEvents,
// MarkerRenderer, Popup, DrawSurface), so the session runs headless in
// tests and binds to any map widget in production:
//
//	client, _ := sdk.New(sdk.WithBaseURL("http://localhost:8080"))
//	session := mapsearch.New(client, mapsearch.UI{
//	    Map:     mapWidget,
//	    Markers: mapWidget,
//	    Popup:   mapWidget,
//	}, mapsearch.WithPageSize(50))
//	session.Bind(ctx)
//	defer session.Close()
package mapsearch
