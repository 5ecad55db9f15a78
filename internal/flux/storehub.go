package flux

import (
	"encoding/json"
	"fmt"
	"sync"
)

// StoreHub owns the fixed set of stores of one context.
type StoreHub struct {
	storeType StoreType
	stores    []Store
	byName    map[string]Store

	mu       sync.Mutex
	tornDown bool
}

// NewStoreHub builds a hub. Store names must be unique within the hub.
func NewStoreHub(storeType StoreType, stores ...Store) (*StoreHub, error) {
	byName := make(map[string]Store, len(stores))
	for _, store := range stores {
		if _, exists := byName[store.Name()]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStore, store.Name())
		}
		byName[store.Name()] = store
	}
	return &StoreHub{
		storeType: storeType,
		stores:    append([]Store(nil), stores...),
		byName:    byName,
	}, nil
}

// StoreType returns the type of the stores this hub owns.
func (h *StoreHub) StoreType() StoreType {
	return h.storeType
}

// Initialize initializes every store.
func (h *StoreHub) Initialize() {
	for _, store := range h.stores {
		store.Initialize()
	}
}

// GetAllStores returns the stores in construction order.
func (h *StoreHub) GetAllStores() []Store {
	return append([]Store(nil), h.stores...)
}

// Get returns the store named name.
func (h *StoreHub) Get(name string) (Store, bool) {
	store, ok := h.byName[name]
	return store, ok
}

// EmitAll re-emits the state of every store, used to seed freshly connected
// mirrors.
func (h *StoreHub) EmitAll() {
	for _, store := range h.stores {
		store.EmitChanged()
	}
}

// RegisterStateRequests answers GetStoreStateMessage(name) for every store by
// re-emitting that store's state.
func (h *StoreHub) RegisterStateRequests(interpreter *Interpreter) error {
	for _, store := range h.stores {
		store := store
		err := interpreter.Register(GetStoreStateMessage(store.Name()), func(_ json.RawMessage, _ *int) *Promise {
			store.EmitChanged()
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Teardown tears down every store. It returns false when the hub was already
// torn down.
func (h *StoreHub) Teardown() bool {
	h.mu.Lock()
	if h.tornDown {
		h.mu.Unlock()
		return false
	}
	h.tornDown = true
	h.mu.Unlock()

	for _, store := range h.stores {
		store.Teardown()
	}
	return true
}
