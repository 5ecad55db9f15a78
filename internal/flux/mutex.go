package flux

import (
	"runtime"
	"sync"
)

// DefaultScope is used when an action is invoked without a scope name.
const DefaultScope = "DEFAULT_SCOPE"

// ScopeMutex detects an action re-entering its own scope before the outer
// invocation returned. It never blocks: locking a held scope is an error.
type ScopeMutex struct {
	mu      sync.Mutex
	holders map[string]string // scope -> holder stack
}

// NewScopeMutex creates an empty scope registry. A context creates one and
// passes it to every AsyncAction it owns.
func NewScopeMutex() *ScopeMutex {
	return &ScopeMutex{
		holders: make(map[string]string),
	}
}

// TryLockScope records the caller's stack under scope, or returns a
// *ReentrancyError carrying the current holder's stack.
func (m *ScopeMutex) TryLockScope(scope string) error {
	scope = scopeOrDefault(scope)

	m.mu.Lock()
	defer m.mu.Unlock()

	if holder, held := m.holders[scope]; held {
		return &ReentrancyError{Scope: scope, HolderStack: holder}
	}
	m.holders[scope] = captureStack()
	return nil
}

// UnlockScope releases scope. Unlocking a free scope is a no-op.
func (m *ScopeMutex) UnlockScope(scope string) {
	scope = scopeOrDefault(scope)

	m.mu.Lock()
	delete(m.holders, scope)
	m.mu.Unlock()
}

// IsLocked reports whether scope currently has a holder.
func (m *ScopeMutex) IsLocked(scope string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, held := m.holders[scopeOrDefault(scope)]
	return held
}

func scopeOrDefault(scope string) string {
	if scope == "" {
		return DefaultScope
	}
	return scope
}

func captureStack() string {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
