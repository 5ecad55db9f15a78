// Package config provides 12-factor configuration for the sync daemon.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Logging: Log level and output format
//   - RateLimit: Per-peer inbound message rate limiting
//   - Sync: Tab scope patterns, snapshot and feature flag files
//   - WebSocket: Write timeout, ping interval and frame size limit
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - SCOPE_PATTERNS, SNAPSHOT_PATH, FEATURE_FLAGS_PATH
//   - WS_WRITE_TIMEOUT, WS_PING_INTERVAL, WS_MAX_MESSAGE_BYTES
package config
