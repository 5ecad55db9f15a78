package tabs

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/storesync/internal/actions"
	"github.com/GriffinCanCode/storesync/internal/flux"
	"github.com/GriffinCanCode/storesync/internal/stores"
)

// BroadcasterFunc returns the broadcaster stores of tabID publish through.
type BroadcasterFunc func(tabID int) flux.Broadcaster

// Factory builds TabContexts and registers them.
type Factory struct {
	registry       *Registry
	broadcasterFor BroadcasterFunc
	logger         *zap.Logger
}

// NewFactory creates a factory. broadcasterFor may be nil, in which case
// stores only notify local listeners.
func NewFactory(registry *Registry, broadcasterFor BroadcasterFunc, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{registry: registry, broadcasterFor: broadcasterFor, logger: logger}
}

// CreateTabContext wires a fresh interpreter, action hub and stores for
// tabID, registers the context and emits the initial state of every store.
func (f *Factory) CreateTabContext(tabID int) (*TabContext, error) {
	logger := f.logger.With(zap.Int("tabId", tabID))

	opts := []flux.StoreOption{
		flux.WithErrorHandler(func(err error) {
			logger.Warn("Store broadcast failed", zap.Error(err))
		}),
	}
	if f.broadcasterFor != nil {
		opts = append(opts, flux.WithBroadcaster(f.broadcasterFor(tabID)))
	}

	interpreter := flux.NewInterpreter()
	hub := actions.NewTabActionHub()

	tabStore := stores.NewTabStore(tabID, hub.Tab, opts...)
	devToolStore := stores.NewDevToolStore(tabID, hub.DevTools, opts...)

	storeHub, err := flux.NewStoreHub(flux.TabContextStore, tabStore, devToolStore)
	if err != nil {
		return nil, fmt.Errorf("failed to create store hub for tab %d: %w", tabID, err)
	}

	if err := actions.NewTabActionCreator(interpreter, hub, logger).RegisterCallbacks(); err != nil {
		return nil, fmt.Errorf("failed to wire tab %d: %w", tabID, err)
	}
	if err := storeHub.RegisterStateRequests(interpreter); err != nil {
		return nil, fmt.Errorf("failed to wire tab %d state requests: %w", tabID, err)
	}

	storeHub.Initialize()

	ctx := NewTabContext(tabID, interpreter, storeHub, hub, tabStore)
	f.registry.Add(ctx)
	storeHub.EmitAll()

	logger.Info("Tab context created")
	return ctx, nil
}
