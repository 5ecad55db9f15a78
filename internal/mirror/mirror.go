package mirror

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/storesync/internal/flux"
)

// Target is the type-erased mirror a Hub routes updates to.
type Target interface {
	StoreName() string
	Apply(update flux.StoreUpdate) (bool, error)
}

// Store mirrors the state of one remote store.
type Store[S any] struct {
	name  string
	tabID *int

	mu    sync.RWMutex
	raw   json.RawMessage
	state S
	ready bool

	listenersMu sync.RWMutex
	nextID      uint64
	listeners   []changedListener[S]
}

type changedListener[S any] struct {
	id uint64
	fn func(S)
}

// New creates a mirror for storeName. A non-nil tabID restricts the mirror to
// that tab's updates; global store updates always apply.
func New[S any](storeName string, tabID *int) *Store[S] {
	return &Store[S]{name: storeName, tabID: tabID}
}

func (m *Store[S]) StoreName() string {
	return m.name
}

// GetState returns the last applied state and whether any state arrived yet.
func (m *Store[S]) GetState() (S, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state, m.ready
}

// AddChangedListener registers fn and returns an id for removal.
func (m *Store[S]) AddChangedListener(fn func(S)) uint64 {
	m.listenersMu.Lock()
	defer m.listenersMu.Unlock()

	m.nextID++
	m.listeners = append(m.listeners, changedListener[S]{id: m.nextID, fn: fn})
	return m.nextID
}

// RemoveChangedListener removes the listener registered under id.
func (m *Store[S]) RemoveChangedListener(id uint64) bool {
	m.listenersMu.Lock()
	defer m.listenersMu.Unlock()

	for i, l := range m.listeners {
		if l.id == id {
			m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// Apply replaces the cached state with update and fires the changed-listeners
// once. It reports false when the update belongs to another tab or repeats
// the cached state byte for byte.
func (m *Store[S]) Apply(update flux.StoreUpdate) (bool, error) {
	if update.StoreName != m.name || !m.accepts(update) {
		return false, nil
	}

	m.mu.Lock()
	if m.ready && bytes.Equal(m.raw, update.State) {
		m.mu.Unlock()
		return false, nil
	}
	var next S
	if err := sonic.Unmarshal(update.State, &next); err != nil {
		m.mu.Unlock()
		return false, fmt.Errorf("failed to decode %s mirror state: %w", m.name, err)
	}
	m.raw = append(json.RawMessage(nil), update.State...)
	m.state = next
	m.ready = true
	m.mu.Unlock()

	m.listenersMu.RLock()
	listeners := append([]changedListener[S](nil), m.listeners...)
	m.listenersMu.RUnlock()

	for _, l := range listeners {
		l.fn(next)
	}
	return true, nil
}

func (m *Store[S]) accepts(update flux.StoreUpdate) bool {
	if update.StoreType == flux.GlobalStore || m.tabID == nil {
		return true
	}
	return update.TabID != nil && *update.TabID == *m.tabID
}
