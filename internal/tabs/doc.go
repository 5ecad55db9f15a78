/*
Package tabs manages the per-tab side of the sync protocol.

A TabContext bundles the interpreter, action hub and stores owned by one
browser tab. The Registry maps tab ids to live contexts, the Factory builds
and registers them, and the Controller reacts to tab lifecycle events by
creating, updating and tearing down contexts for tabs whose URL is in scope.

Teardown is idempotent: tearing a context down twice is a no-op.
*/
package tabs
