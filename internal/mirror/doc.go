// Package mirror keeps read-only copies of remote stores current.
//
// A surface that does not own a store registers a Store mirror for each store
// name it cares about on a Hub, and attaches the Hub to its transport. Every
// store-changed broadcast is routed to the mirror of the same name; updates for
// stores nobody mirrors are dropped.
//
// Ordering: one owner store reaches one hub in send order, so a mirror observes
// that store's states as a monotonic sequence. Nothing orders two different
// stores relative to each other.
package mirror
