/*
Package actions holds the message catalog of the sync protocol, the payloads
those messages carry, and the action creators that turn interpreted messages
into action invocations.

Tab actions are synchronous and owned by one TabContext. Global actions are
asynchronous and share the background context's ScopeMutex, so a store
handler that re-invokes a global action is rejected instead of recursing.
*/
package actions
