// Package server hosts the sync daemon's HTTP surface.
//
// Routes:
//   - GET /port: websocket endpoint for surfaces (see transport/ws)
//   - GET /health: liveness plus connection and tab counts
//   - GET /tabs: live tab contexts and their TabStore state
//   - GET /peers: connected surfaces
//   - GET /stores/global: current state of every global store
//   - GET /metrics: Prometheus exposition
//
// Middleware runs in this order: recovery, tracing, metrics, CORS, and
// per-IP rate limiting when enabled.
//
// Example Usage:
//
//	srv := server.New(cfg, server.Deps{Background: bg, Hub: hub, Gatherer: reg})
//	go srv.Run()
//	defer srv.Shutdown(ctx)
package server
