// Package websocket provides real-time event streaming via WebSocket.
//
// Clients connect to /api/events/ws to receive user.created and
// item.created events as JSON text frames. The optional "type" query
// parameter restricts the feed to one event type.
package websocket
