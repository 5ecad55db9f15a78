package background

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/storesync/internal/actions"
	"github.com/GriffinCanCode/storesync/internal/flux"
	"github.com/GriffinCanCode/storesync/internal/persistence"
	"github.com/GriffinCanCode/storesync/internal/stores"
)

// GlobalOptions configures NewGlobalContext.
type GlobalOptions struct {
	Broadcaster  flux.Broadcaster
	FlagDefaults stores.FlagDefaults
	// Snapshots restores the global stores at start and saves them on every
	// change. Nil disables persistence.
	Snapshots *persistence.Store
	Logger    *zap.Logger
}

// GlobalContext owns the stores shared by every tab.
type GlobalContext struct {
	Mutex             *flux.ScopeMutex
	Interpreter       *flux.Interpreter
	StoreHub          *flux.StoreHub
	Actions           *actions.GlobalActionHub
	FeatureFlags      *stores.FeatureFlagStore
	UserConfiguration *stores.UserConfigurationStore

	snapshots *persistence.Store
	logger    *zap.Logger
}

// NewGlobalContext wires the global stores, restores their persisted state
// and registers their message handlers.
func NewGlobalContext(opts GlobalOptions) (*GlobalContext, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	g := &GlobalContext{
		Mutex:       flux.NewScopeMutex(),
		Interpreter: flux.NewInterpreter(),
		snapshots:   opts.Snapshots,
		logger:      logger,
	}
	g.Actions = actions.NewGlobalActionHub(g.Mutex)

	storeOpts := []flux.StoreOption{
		flux.WithErrorHandler(func(err error) {
			logger.Warn("Global store broadcast failed", zap.Error(err))
		}),
	}
	if opts.Broadcaster != nil {
		storeOpts = append(storeOpts, flux.WithBroadcaster(opts.Broadcaster))
	}

	persisted := g.restore()

	flags, err := stores.NewFeatureFlagStore(g.Actions.FeatureFlags, opts.FlagDefaults, persisted[stores.FeatureFlagStoreName], storeOpts...)
	if err != nil {
		logger.Warn("Discarding persisted feature flags", zap.Error(err))
		if flags, err = stores.NewFeatureFlagStore(g.Actions.FeatureFlags, opts.FlagDefaults, nil, storeOpts...); err != nil {
			return nil, err
		}
	}
	userConfig, err := stores.NewUserConfigurationStore(g.Actions.UserConfiguration, persisted[stores.UserConfigurationStoreName], storeOpts...)
	if err != nil {
		logger.Warn("Discarding persisted user configuration", zap.Error(err))
		if userConfig, err = stores.NewUserConfigurationStore(g.Actions.UserConfiguration, nil, storeOpts...); err != nil {
			return nil, err
		}
	}
	g.FeatureFlags = flags
	g.UserConfiguration = userConfig

	g.StoreHub, err = flux.NewStoreHub(flux.GlobalStore, flags, userConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create global store hub: %w", err)
	}
	if err := actions.NewGlobalActionCreator(g.Interpreter, g.Actions, logger).RegisterCallbacks(); err != nil {
		return nil, fmt.Errorf("failed to wire global actions: %w", err)
	}
	if err := g.StoreHub.RegisterStateRequests(g.Interpreter); err != nil {
		return nil, fmt.Errorf("failed to wire global state requests: %w", err)
	}

	g.StoreHub.Initialize()

	if g.snapshots != nil {
		flags.AddChangedListener(func(stores.FeatureFlagStoreData) { g.persist() })
		userConfig.AddChangedListener(func(stores.UserConfigurationStoreData) { g.persist() })
		// the generated installation id must survive the first restart
		g.persist()
	}

	logger.Info("Global context initialized",
		zap.Strings("messageTypes", g.Interpreter.Types()),
	)
	return g, nil
}

// States returns the current state of every global store keyed by name.
func (g *GlobalContext) States() (map[string]json.RawMessage, error) {
	states := make(map[string]json.RawMessage)
	for _, store := range g.StoreHub.GetAllStores() {
		state, err := store.StateJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", store.Name(), err)
		}
		states[store.Name()] = state
	}
	return states, nil
}

// Teardown tears down the global stores.
func (g *GlobalContext) Teardown() bool {
	return g.StoreHub.Teardown()
}

func (g *GlobalContext) restore() map[string]json.RawMessage {
	if g.snapshots == nil {
		return nil
	}
	snapshot, err := g.snapshots.Load()
	if err != nil {
		g.logger.Warn("Ignoring unreadable snapshot", zap.String("path", g.snapshots.Path()), zap.Error(err))
		return nil
	}
	g.logger.Info("Restored global stores",
		zap.String("path", g.snapshots.Path()),
		zap.Int("stores", len(snapshot.Stores)),
	)
	return snapshot.Stores
}

func (g *GlobalContext) persist() {
	states, err := g.States()
	if err == nil {
		err = g.snapshots.Save(states)
	}
	if err != nil {
		g.logger.Error("Failed to save snapshot", zap.Error(err))
	}
}
