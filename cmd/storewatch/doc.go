// Package main is storewatch, a remote surface for the storesync daemon.
//
// Usage:
//
//	# Mirror the global stores and the stores of tab 12, printing each change
//	./storewatch watch -addr localhost:8000 -context details -tab 12
//
//	# List live tab contexts
//	./storewatch tabs -addr localhost:8000
package main
