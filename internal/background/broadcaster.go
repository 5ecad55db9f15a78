package background

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/storesync/internal/browser"
	"github.com/GriffinCanCode/storesync/internal/flux"
	"github.com/GriffinCanCode/storesync/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/storesync/internal/infrastructure/resilience"
)

const framesDestination = "frames"

// TabDestination names the breaker and metric label of sends to tabID.
func TabDestination(tabID int) string {
	return "tab:" + strconv.Itoa(tabID)
}

// BroadcasterFactory builds the broadcasters stores publish through. Every
// destination is guarded by its own circuit breaker.
type BroadcasterFactory struct {
	adapter  browser.Adapter
	breakers *resilience.Group
	tabIDs   func() []int
	metrics  *monitoring.Metrics
	logger   *zap.Logger
	timeout  time.Duration
}

// NewBroadcasterFactory creates a factory. tabIDs lists the tabs the
// all-tabs broadcaster reaches; nil means frames only.
func NewBroadcasterFactory(adapter browser.Adapter, tabIDs func() []int, timeout time.Duration, metrics *monitoring.Metrics, logger *zap.Logger) *BroadcasterFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	f := &BroadcasterFactory{
		adapter: adapter,
		tabIDs:  tabIDs,
		metrics: metrics,
		logger:  logger,
		timeout: timeout,
	}
	f.breakers = resilience.NewGroup(resilience.Settings{
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, browser.ErrNoReceiver)
		},
		OnStateChange: func(name string, from, to resilience.State) {
			f.metrics.SetBreakerState(name, int(to))
			f.logger.Info("Broadcast breaker state changed",
				zap.String("destination", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return f
}

// AllTabsBroadcaster sends to every frame and every known tab.
func (f *BroadcasterFactory) AllTabsBroadcaster() flux.Broadcaster {
	return func(msg flux.Message) error {
		err := f.send(framesDestination, func(ctx context.Context) error {
			return f.adapter.SendMessageToFrames(ctx, msg)
		})
		if f.tabIDs == nil {
			return err
		}
		for _, tabID := range f.tabIDs() {
			tabID := tabID
			err = multierr.Append(err, f.send(TabDestination(tabID), func(ctx context.Context) error {
				return f.adapter.SendMessageToTab(ctx, tabID, msg)
			}))
		}
		return err
	}
}

// TabBroadcaster stamps messages with tabID and sends them to every frame
// and to the tab itself.
func (f *BroadcasterFactory) TabBroadcaster(tabID int) flux.Broadcaster {
	destination := TabDestination(tabID)
	return func(msg flux.Message) error {
		msg = msg.WithTabID(tabID)
		err := f.send(framesDestination, func(ctx context.Context) error {
			return f.adapter.SendMessageToFrames(ctx, msg)
		})
		return multierr.Append(err, f.send(destination, func(ctx context.Context) error {
			return f.adapter.SendMessageToTab(ctx, tabID, msg)
		}))
	}
}

// Forget drops the breaker of a closed tab.
func (f *BroadcasterFactory) Forget(tabID int) {
	f.breakers.Forget(TabDestination(tabID))
}

func (f *BroadcasterFactory) send(destination string, fn func(ctx context.Context) error) error {
	err := f.breakers.Do(destination, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
		defer cancel()
		return fn(ctx)
	})

	switch {
	case err == nil:
		f.metrics.RecordBroadcast(destination, "ok")
		return nil
	case errors.Is(err, browser.ErrNoReceiver):
		f.metrics.RecordBroadcast(destination, "no_peer")
		return nil
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrTooManyRequests):
		f.metrics.RecordBroadcast(destination, "skipped")
		f.logger.Debug("Broadcast skipped", zap.String("destination", destination), zap.Error(err))
		return nil
	default:
		f.metrics.RecordBroadcast(destination, "error")
		return fmt.Errorf("send to %s: %w", destination, err)
	}
}
