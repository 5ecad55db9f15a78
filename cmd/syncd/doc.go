// Package main is the storesync daemon.
//
// syncd is the authoritative background context. Surfaces (popup, devtools,
// details view, content scripts) connect over websocket to /port, send
// action messages, and mirror the store state it broadcasts. The extension
// peer reports browser tab lifecycle so the daemon can create and tear down
// per-tab contexts.
//
// Configuration:
//   - Environment variables (see internal/infrastructure/config)
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Production mode
//	./syncd -port 8000
//
//	# Development mode (colored logs, debug level)
//	./syncd -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
