/*
Package resilience provides circuit breaker implementation for graceful degradation.

# Overview

This package implements the circuit breaker pattern. The broadcaster guards
every destination (the extension frames and each tab) with its own breaker,
so a surface that keeps failing stops costing a send per store change.

# Features

- Three-state circuit breaker (Closed, Open, Half-Open)
- Configurable failure thresholds and timeouts
- Automatic state transitions
- Concurrent request handling
- State change callbacks for monitoring
- Thread-safe operations
- Per-destination breaker groups

# Usage

	// Create a circuit breaker
	breaker := resilience.New("tab:12", resilience.Settings{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to resilience.State) {
			log.Printf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	// Send through the breaker
	err := breaker.Do(func() error {
		return adapter.SendMessageToTab(ctx, 12, msg)
	})

	// Or one breaker per destination
	group := resilience.NewGroup(settings)
	err = group.Do("frames", send)

# States

- Closed: Normal operation, sends pass through
- Open: Destination failing, sends are skipped
- Half-Open: A limited number of trial sends are allowed

# Pattern

The circuit breaker transitions between states based on success/failure rates:

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           |
	                                           v
	                                         Open
*/
package resilience
