// Package http provides the HTTP REST API implementation.
//
// The HTTP server exposes endpoints for:
//   - Health and readiness probes
//   - Users and items (list, get by id, create)
//   - Database service status and query pass-through
//   - Prometheus metrics
//
// Every response body is JSON, including errors and unknown routes.
package http
