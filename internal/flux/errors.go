package flux

import (
	"errors"
	"fmt"
)

var (
	ErrReentrancy            = errors.New("scope is already locked")
	ErrDuplicateRegistration = errors.New("message type already has a callback")
	ErrDuplicateStore        = errors.New("store name already registered in hub")
	ErrMissingHandler        = errors.New("message type has no callback")
	ErrListenerFailure       = errors.New("action listener failed")
	ErrTornDown              = errors.New("store has been torn down")
)

// ReentrancyError is returned when a scope is locked a second time before the
// first holder released it. HolderStack is the stack captured by the first lock.
type ReentrancyError struct {
	Scope       string
	HolderStack string
}

func (e *ReentrancyError) Error() string {
	return fmt.Sprintf("scope %q is already locked; held by:\n%s", e.Scope, e.HolderStack)
}

// Unwrap lets errors.Is match ErrReentrancy.
func (e *ReentrancyError) Unwrap() error {
	return ErrReentrancy
}

// listenerPanic converts a recovered panic value into an ErrListenerFailure.
func listenerPanic(action string, index int, r interface{}) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: %s listener %d: %w", ErrListenerFailure, action, index, err)
	}
	return fmt.Errorf("%w: %s listener %d: %v", ErrListenerFailure, action, index, r)
}
