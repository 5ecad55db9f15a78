// Package flux provides the action/store/interpreter synchronization core.
//
// One authoritative context owns a set of stores. Inbound messages are routed by
// an Interpreter to payload callbacks, callbacks invoke actions, and the stores
// subscribed to those actions mutate their state and broadcast it so that
// remote mirrors (see package mirror) stay current.
//
// Primitives:
//   - ScopeMutex: named reentrancy guard shared by every AsyncAction of a context
//   - SyncAction / AsyncAction: ordered many-listener dispatch
//   - Promise: settle-once completion handle returned by async work
//   - BaseStore / StoreHub: state containers and their owning set
//   - Interpreter: messageType -> callback router
//
// Example Usage:
//
//	mutex := flux.NewScopeMutex()
//	toggled := flux.NewAsyncAction[TogglePayload]("toggle", mutex)
//	store := flux.NewBaseStore[State]("VisualizationStore", def)
//	store.Initialize()
//	promise, err := toggled.Invoke(payload, flux.DefaultScope)
package flux
