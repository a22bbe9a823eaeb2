// Package server exposes the monitor over HTTP and WebSocket.
//
// Routes:
//
//	GET    /health                  build info, snapshot age, poller stats
//	GET    /api/market              table rows (?sort=&order=&search=)
//	GET    /api/suggest             live search suggestions (?q=&limit=)
//	GET    /api/watchlist           pinned cards and mute state
//	POST   /api/watchlist/{id}      pin an item
//	DELETE /api/watchlist/{id}      unpin an item
//	PUT    /api/watchlist/{id}/offer  set the custom buy offer
//	POST   /api/mute                toggle (or ?muted=true|false) alert sound
//	POST   /api/refresh             queue a manual fetch
//	GET    /ws                      push feed of update, countdown and sound events
//
// Errors are JSON objects of the form {"error": "...", "details": "..."}.
package server
