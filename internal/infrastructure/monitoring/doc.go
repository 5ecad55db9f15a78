/*
Package monitoring provides Prometheus metrics for the sync daemon.

# Overview

Metrics cover HTTP requests, action invocations and reentrancy rejections,
message interpretation, store broadcasts, tab context lifecycle, WebSocket
peers and circuit breaker state.

# Usage

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Time a distributed message
	timer := monitoring.NewTimer(metrics, "global")
	// ... wait for the interpreter result ...
	timer.Stop("handled")

A nil *Metrics is valid and records nothing.

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
*/
package monitoring
