// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Components receive a named child logger, so every line carries the
// component that wrote it (registry, distributor, ws, ...).
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	defer logger.Close()
//	logger.Component("distributor").Warn("unable to interpret message", zap.String("messageType", t))
package logging
