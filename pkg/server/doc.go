// Package server hosts vbind templates over WebSocket.
//
// Every connection gets its own document and VM. The browser runs a thin
// client that forwards input and events of elements carrying a data-vb-id
// attribute; the session applies them on its event loop and answers with
// the re-rendered body.
//
// # Protocol
//
// Messages are JSON text frames.
//
// Client to server:
//
//	{"type": "input", "id": "vb3", "value": "Cy"}   // set value, fire "input"
//	{"type": "event", "id": "vb4", "event": "click"}
//
// Server to client:
//
//	{"type": "render", "html": "..."}                // new body markup
//	{"type": "error", "code": "E041", "message": "..."}
//	{"type": "reload"}                               // template changed
//
// # Routes
//
//	GET /         the page, compiled, with the client script
//	GET /ws       session socket
//	GET /healthz  liveness and session count
//	GET /metrics  Prometheus metrics, when a Gatherer is configured
package server
