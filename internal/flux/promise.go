package flux

import (
	"context"
	"sync"

	"go.uber.org/multierr"
)

// Promise is a settle-once completion handle. It resolves with no error or
// rejects with one; waiting never cancels the underlying work.
type Promise struct {
	done chan struct{}
	once sync.Once
	err  error
}

// NewPromise returns a pending promise settled by Resolve or Reject.
func NewPromise() *Promise {
	return &Promise{done: make(chan struct{})}
}

// Resolved returns an already resolved promise.
func Resolved() *Promise {
	p := NewPromise()
	p.Resolve()
	return p
}

// Rejected returns an already rejected promise.
func Rejected(err error) *Promise {
	p := NewPromise()
	p.Reject(err)
	return p
}

// Go runs fn on its own goroutine and settles with its result.
func Go(fn func() error) *Promise {
	p := NewPromise()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.Reject(listenerPanic("promise", 0, r))
			}
		}()
		p.settle(fn())
	}()
	return p
}

// Resolve settles the promise successfully. Later settlements are ignored.
func (p *Promise) Resolve() {
	p.settle(nil)
}

// Reject settles the promise with err. A nil err resolves.
func (p *Promise) Reject(err error) {
	p.settle(err)
}

func (p *Promise) settle(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

// Done is closed once the promise settles.
func (p *Promise) Done() <-chan struct{} {
	return p.done
}

// Settled reports whether the promise has settled.
func (p *Promise) Settled() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Err returns the rejection reason, or nil if resolved or still pending.
func (p *Promise) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Wait blocks until the promise settles or ctx ends.
func (p *Promise) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// All settles once every promise has settled. It rejects with every rejection
// reason combined when any of them rejects. Nil entries count as resolved.
func All(promises ...*Promise) *Promise {
	pending := make([]*Promise, 0, len(promises))
	for _, p := range promises {
		if p != nil {
			pending = append(pending, p)
		}
	}
	if len(pending) == 0 {
		return Resolved()
	}
	if len(pending) == 1 {
		return pending[0]
	}

	merged := NewPromise()
	go func() {
		var errs error
		for _, p := range pending {
			<-p.done
			errs = multierr.Append(errs, p.err)
		}
		merged.settle(errs)
	}()
	return merged
}
