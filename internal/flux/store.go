package flux

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/bytedance/sonic"
)

// Store is the type-erased view of a BaseStore used by hubs and contexts.
type Store interface {
	Name() string
	StoreType() StoreType
	Initialize()
	EmitChanged()
	StateJSON() (json.RawMessage, error)
	Teardown() bool
}

// StoreDefinition supplies the per-store behavior of a BaseStore.
type StoreDefinition[S any] interface {
	// DefaultState is called once, by Initialize.
	DefaultState() S
	// AddActionListeners wires the store's handlers with On and OnAsync.
	AddActionListeners(store *BaseStore[S])
}

// Broadcaster publishes a store update to remote mirrors.
type Broadcaster func(msg Message) error

type storeOptions struct {
	storeType StoreType
	tabID     *int
	broadcast Broadcaster
	onError   func(error)
}

// StoreOption configures a BaseStore.
type StoreOption func(*storeOptions)

// WithBroadcaster makes EmitChanged publish a StoreUpdate through b.
func WithBroadcaster(b Broadcaster) StoreOption {
	return func(o *storeOptions) { o.broadcast = b }
}

// WithTabID marks the store as owned by the TabContext of tabID.
func WithTabID(tabID int) StoreOption {
	return func(o *storeOptions) {
		o.storeType = TabContextStore
		o.tabID = &tabID
	}
}

// WithErrorHandler receives broadcast failures. They are never retried.
func WithErrorHandler(fn func(error)) StoreOption {
	return func(o *storeOptions) { o.onError = fn }
}

// BaseStore owns one piece of state. State is only mutated by handlers wired
// through On/OnAsync; GetState results must be treated as read-only.
type BaseStore[S any] struct {
	name string
	def  StoreDefinition[S]
	opts storeOptions

	mu          sync.RWMutex
	state       S
	initialized bool
	tornDown    bool
	detach      []func()

	changed listeners[func(S)]
}

// NewBaseStore creates an uninitialized store. Stores are global unless
// WithTabID is given.
func NewBaseStore[S any](name string, def StoreDefinition[S], opts ...StoreOption) *BaseStore[S] {
	o := storeOptions{storeType: GlobalStore}
	for _, opt := range opts {
		opt(&o)
	}
	return &BaseStore[S]{name: name, def: def, opts: o}
}

func (s *BaseStore[S]) Name() string {
	return s.name
}

func (s *BaseStore[S]) StoreType() StoreType {
	return s.opts.storeType
}

// TabID returns the owning tab, or nil for global stores.
func (s *BaseStore[S]) TabID() *int {
	return s.opts.tabID
}

// Initialize sets the default state and wires the action listeners. Calling
// it again is a no-op.
func (s *BaseStore[S]) Initialize() {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return
	}
	s.initialized = true
	s.state = s.def.DefaultState()
	s.mu.Unlock()

	s.def.AddActionListeners(s)
}

// GetState returns the current state.
func (s *BaseStore[S]) GetState() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// StateJSON encodes the current state. A torn down store has no state to
// report and returns ErrTornDown.
func (s *BaseStore[S]) StateJSON() (json.RawMessage, error) {
	if s.IsTornDown() {
		return nil, fmt.Errorf("%w: %s", ErrTornDown, s.name)
	}
	raw, err := sonic.Marshal(s.GetState())
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s state: %w", s.name, err)
	}
	return raw, nil
}

// AddChangedListener registers fn to receive the state after every change.
func (s *BaseStore[S]) AddChangedListener(fn func(S)) ListenerHandle {
	return s.changed.add(fn)
}

// RemoveChangedListener detaches the registration identified by h.
func (s *BaseStore[S]) RemoveChangedListener(h ListenerHandle) bool {
	return s.changed.remove(h)
}

// EmitChanged notifies changed-listeners in order and broadcasts the state
// when a Broadcaster is configured. Listener panics propagate to the action.
func (s *BaseStore[S]) EmitChanged() {
	s.mu.RLock()
	if s.tornDown {
		s.mu.RUnlock()
		return
	}
	state := s.state
	s.mu.RUnlock()

	for _, fn := range s.changed.snapshot() {
		fn(state)
	}

	if s.opts.broadcast != nil {
		if err := s.publish(state); err != nil && s.opts.onError != nil {
			s.opts.onError(err)
		}
	}
}

func (s *BaseStore[S]) publish(state S) error {
	raw, err := sonic.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode %s state: %w", s.name, err)
	}
	msg, err := NewStoreUpdateMessage(StoreUpdate{
		StoreName: s.name,
		StoreType: s.opts.storeType,
		TabID:     s.opts.tabID,
		State:     raw,
	})
	if err != nil {
		return err
	}
	if err := s.opts.broadcast(msg); err != nil {
		return fmt.Errorf("failed to broadcast %s: %w", s.name, err)
	}
	return nil
}

// Teardown detaches every action listener this store registered and drops
// its changed-listeners. It returns false if the store was already torn down.
func (s *BaseStore[S]) Teardown() bool {
	s.mu.Lock()
	if s.tornDown {
		s.mu.Unlock()
		return false
	}
	s.tornDown = true
	detach := s.detach
	s.detach = nil
	s.mu.Unlock()

	for _, fn := range detach {
		fn()
	}
	s.changed.clear()
	return true
}

// IsTornDown reports whether Teardown has run.
func (s *BaseStore[S]) IsTornDown() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tornDown
}

func (s *BaseStore[S]) track(fn func()) {
	s.mu.Lock()
	s.detach = append(s.detach, fn)
	s.mu.Unlock()
}

func (s *BaseStore[S]) mutate(fn func(state *S)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// On wires a synchronous action to a handler of s. The handler mutates the
// state in place and must not call back into s; EmitChanged follows.
func On[S, P any](s *BaseStore[S], action *SyncAction[P], handler func(state *S, payload P)) {
	h := action.AddListener(func(payload P) {
		s.mutate(func(state *S) { handler(state, payload) })
		s.EmitChanged()
	})
	s.track(func() { action.RemoveListener(h) })
}

// OnAsync wires an asynchronous action to a handler of s. A handler error
// rejects that listener's promise and suppresses EmitChanged.
func OnAsync[S, P any](s *BaseStore[S], action *AsyncAction[P], handler func(state *S, payload P) error) {
	h := action.AddListener(func(payload P) *Promise {
		var err error
		s.mutate(func(state *S) { err = handler(state, payload) })
		if err != nil {
			return Rejected(fmt.Errorf("%s: %w", s.name, err))
		}
		s.EmitChanged()
		return Resolved()
	})
	s.track(func() { action.RemoveListener(h) })
}
