package flux

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// PayloadCallback handles one message type. It may return nil when the work
// is already complete.
type PayloadCallback func(payload json.RawMessage, tabID *int) *Promise

// InterpretResult reports whether a callback handled the message and, if so,
// the promise of its completion.
type InterpretResult struct {
	MessageHandled bool
	Result         *Promise
}

// Interpreter routes messages to the callback registered for their type.
// It never decides delivery and never retries.
type Interpreter struct {
	mu        sync.RWMutex
	callbacks map[string]PayloadCallback
}

// NewInterpreter creates an interpreter with no callbacks.
func NewInterpreter() *Interpreter {
	return &Interpreter{
		callbacks: make(map[string]PayloadCallback),
	}
}

// Register adds the callback for messageType. A second registration for the
// same type is a wiring bug and returns ErrDuplicateRegistration.
func (i *Interpreter) Register(messageType string, callback PayloadCallback) error {
	if messageType == "" {
		return fmt.Errorf("message type cannot be empty")
	}
	if callback == nil {
		return fmt.Errorf("callback for %s cannot be nil", messageType)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if _, exists := i.callbacks[messageType]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateRegistration, messageType)
	}
	i.callbacks[messageType] = callback
	return nil
}

// MustRegister is Register for construction-time wiring; it panics on error.
func (i *Interpreter) MustRegister(messageType string, callback PayloadCallback) {
	if err := i.Register(messageType, callback); err != nil {
		panic(err)
	}
}

// Interpret invokes the callback for msg.MessageType. An unknown type yields
// MessageHandled false so callers can offer the message to another
// interpreter. The result is always a promise: nil returns resolve and
// panics reject.
func (i *Interpreter) Interpret(msg Message) InterpretResult {
	i.mu.RLock()
	callback, ok := i.callbacks[msg.MessageType]
	i.mu.RUnlock()

	if !ok {
		return InterpretResult{MessageHandled: false}
	}
	return InterpretResult{
		MessageHandled: true,
		Result:         invokeCallback(msg, callback),
	}
}

func invokeCallback(msg Message, callback PayloadCallback) (p *Promise) {
	defer func() {
		if r := recover(); r != nil {
			p = Rejected(listenerPanic(msg.MessageType, 0, r))
		}
	}()
	if p = callback(msg.Payload, msg.TabID); p == nil {
		p = Resolved()
	}
	return p
}

// Handles reports whether messageType has a callback.
func (i *Interpreter) Handles(messageType string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.callbacks[messageType]
	return ok
}

// Types returns the registered message types, sorted.
func (i *Interpreter) Types() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	types := make([]string, 0, len(i.callbacks))
	for t := range i.callbacks {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Validate checks that every one of the statically known types has a
// callback, so a missing wiring fails at construction instead of surfacing as
// an unhandled message at runtime.
func (i *Interpreter) Validate(types ...string) error {
	var missing []string
	for _, t := range types {
		if !i.Handles(t) {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingHandler, strings.Join(missing, ", "))
	}
	return nil
}

// Handle adapts a typed callback to a PayloadCallback. Decode failures reject.
func Handle[P any](fn func(payload P, tabID *int) *Promise) PayloadCallback {
	return func(raw json.RawMessage, tabID *int) *Promise {
		payload, err := decodeRaw[P]("payload", raw)
		if err != nil {
			return Rejected(err)
		}
		return fn(payload, tabID)
	}
}
