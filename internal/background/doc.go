/*
Package background hosts the authoritative context of the sync daemon.

It owns the global stores, routes every inbound message to the global or
tab interpreter, and broadcasts store state to connected surfaces. All
mutations run on a single serial event loop.
*/
package background
