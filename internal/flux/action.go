package flux

import (
	"sync"
	"sync/atomic"
)

// ListenerHandle identifies one registration. Removal is by handle, so two
// listeners with identical behavior are never confused with each other.
type ListenerHandle uint64

var nextHandle atomic.Uint64

func newHandle() ListenerHandle {
	return ListenerHandle(nextHandle.Add(1))
}

type entry[F any] struct {
	handle ListenerHandle
	fn     F
}

// listeners is an ordered, handle-addressed listener list.
type listeners[F any] struct {
	mu      sync.RWMutex
	entries []entry[F]
}

func (l *listeners[F]) add(fn F) ListenerHandle {
	h := newHandle()
	l.mu.Lock()
	l.entries = append(l.entries, entry[F]{handle: h, fn: fn})
	l.mu.Unlock()
	return h
}

func (l *listeners[F]) remove(h ListenerHandle) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, e := range l.entries {
		if e.handle == h {
			l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (l *listeners[F]) snapshot() []F {
	l.mu.RLock()
	defer l.mu.RUnlock()

	fns := make([]F, len(l.entries))
	for i, e := range l.entries {
		fns[i] = e.fn
	}
	return fns
}

func (l *listeners[F]) len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

func (l *listeners[F]) clear() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}

// SyncAction dispatches a payload to its listeners synchronously.
type SyncAction[P any] struct {
	name      string
	listeners listeners[func(P)]
}

// NewSyncAction creates a named synchronous action.
func NewSyncAction[P any](name string) *SyncAction[P] {
	return &SyncAction[P]{name: name}
}

// Name returns the action name.
func (a *SyncAction[P]) Name() string {
	return a.name
}

// AddListener appends fn. Registering the same function twice runs it twice.
func (a *SyncAction[P]) AddListener(fn func(P)) ListenerHandle {
	return a.listeners.add(fn)
}

// RemoveListener detaches the registration identified by h.
func (a *SyncAction[P]) RemoveListener(h ListenerHandle) bool {
	return a.listeners.remove(h)
}

// ListenerCount returns the number of registered listeners.
func (a *SyncAction[P]) ListenerCount() int {
	return a.listeners.len()
}

// Invoke calls every listener in registration order. A panicking listener
// stops the remaining listeners and propagates to the caller.
func (a *SyncAction[P]) Invoke(payload P) {
	for _, fn := range a.listeners.snapshot() {
		fn(payload)
	}
}

// AsyncAction dispatches a payload to listeners that each return a Promise.
// Invocation is guarded by the context's ScopeMutex.
type AsyncAction[P any] struct {
	name      string
	mutex     *ScopeMutex
	listeners listeners[func(P) *Promise]
}

// NewAsyncAction creates a named asynchronous action guarded by mutex.
func NewAsyncAction[P any](name string, mutex *ScopeMutex) *AsyncAction[P] {
	return &AsyncAction[P]{name: name, mutex: mutex}
}

// Name returns the action name.
func (a *AsyncAction[P]) Name() string {
	return a.name
}

// AddListener appends fn. Registering the same function twice runs it twice.
func (a *AsyncAction[P]) AddListener(fn func(P) *Promise) ListenerHandle {
	return a.listeners.add(fn)
}

// RemoveListener detaches the registration identified by h.
func (a *AsyncAction[P]) RemoveListener(h ListenerHandle) bool {
	return a.listeners.remove(h)
}

// ListenerCount returns the number of registered listeners.
func (a *AsyncAction[P]) ListenerCount() int {
	return a.listeners.len()
}

// Invoke locks scope, runs every listener's synchronous part on the calling
// goroutine and unlocks scope before returning. The scope is released on
// return, not on settlement: a second sequential Invoke may overlap with the
// first call's pending promises.
//
// The returned promise resolves when every listener promise resolves and
// rejects with all rejection reasons combined otherwise. A reentrant call
// returns a *ReentrancyError and runs no listener.
func (a *AsyncAction[P]) Invoke(payload P, scope string) (*Promise, error) {
	if err := a.mutex.TryLockScope(scope); err != nil {
		return nil, err
	}
	defer a.mutex.UnlockScope(scope)

	fns := a.listeners.snapshot()
	promises := make([]*Promise, 0, len(fns))
	for i, fn := range fns {
		promises = append(promises, a.call(i, fn, payload))
	}
	return All(promises...), nil
}

func (a *AsyncAction[P]) call(index int, fn func(P) *Promise, payload P) (p *Promise) {
	defer func() {
		if r := recover(); r != nil {
			p = Rejected(listenerPanic(a.name, index, r))
		}
	}()
	return fn(payload)
}
