package background

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"
)

// ErrLoopStopped is returned when work is posted after the loop stopped.
var ErrLoopStopped = errors.New("event loop stopped")

// Loop runs posted tasks one at a time, in order, on a single goroutine.
type Loop struct {
	tasks   chan func()
	quit    chan struct{}
	stopped chan struct{}
	logger  *zap.Logger

	stopOnce sync.Once
	runOnce  sync.Once
}

// NewLoop creates a loop with room for buffer pending tasks.
func NewLoop(buffer int, logger *zap.Logger) *Loop {
	if buffer <= 0 {
		buffer = 1024
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		tasks:   make(chan func(), buffer),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
		logger:  logger,
	}
}

// Run processes tasks until ctx is done or Stop is called. Only the first
// call runs; later calls return immediately.
func (l *Loop) Run(ctx context.Context) {
	l.runOnce.Do(func() {
		defer close(l.stopped)
		for {
			select {
			case <-ctx.Done():
				return
			case <-l.quit:
				return
			case fn := <-l.tasks:
				l.run(fn)
			}
		}
	})
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Event loop task panicked",
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()
	fn()
}

// Post enqueues fn. It blocks while the queue is full and returns false once
// the loop is stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.quit:
		return false
	case <-l.stopped:
		return false
	default:
	}

	select {
	case l.tasks <- fn:
		return true
	case <-l.quit:
		return false
	case <-l.stopped:
		return false
	}
}

// Do posts fn and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		fn()
	}) {
		return ErrLoopStopped
	}

	select {
	case <-done:
		return nil
	case <-l.stopped:
		select {
		case <-done:
			return nil
		default:
			return ErrLoopStopped
		}
	case <-ctx.Done():
		return fmt.Errorf("waiting for event loop: %w", ctx.Err())
	}
}

// Stop asks the loop to exit after the task in progress.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.quit) })
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.stopped
}
