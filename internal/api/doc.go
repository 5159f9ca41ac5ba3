// Package api serves recorded runs and their reconstructed timelines over
// HTTP, and pushes trace.recorded events to WebSocket clients.
//
// This package provides:
//   - REST endpoints for listing runs, fetching records, timelines, DOT
//     graphs and raw config lookups by trace path
//   - WebSocket hub with channel subscriptions
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Routes
//
//	GET /api/v1/health
//	GET /api/v1/metrics
//	GET /api/v1/locales
//	GET /api/v1/traces?domain=&item_id=&limit=
//	GET /api/v1/traces/{run_id}
//	GET /api/v1/traces/{run_id}/timeline?lang=
//	GET /api/v1/traces/{run_id}/graph
//	GET /api/v1/traces/{run_id}/config?path=
//	GET /api/v1/ws
//
// # Graceful Degradation
//
// The server runs without MQTT or InfluxDB; their health checks simply
// report as degraded.
package api
