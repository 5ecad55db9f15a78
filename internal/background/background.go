package background

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/storesync/internal/browser"
	"github.com/GriffinCanCode/storesync/internal/flux"
	"github.com/GriffinCanCode/storesync/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/storesync/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/storesync/internal/persistence"
	"github.com/GriffinCanCode/storesync/internal/stores"
	"github.com/GriffinCanCode/storesync/internal/tabs"
)

// Options configures New.
type Options struct {
	Adapter       browser.Adapter
	ScopePatterns []string
	FlagDefaults  stores.FlagDefaults
	Snapshots     *persistence.Store
	SendTimeout   time.Duration
	QueueSize     int
	Metrics       *monitoring.Metrics
	Tracer        *tracing.Tracer
	Logger        *zap.Logger
}

// Background is the authoritative context: global stores, tab contexts and
// the loop every mutation runs on.
type Background struct {
	Loop         *Loop
	Global       *GlobalContext
	Registry     *tabs.Registry
	Distributor  *Distributor
	Controller   *tabs.Controller
	Broadcasters *BroadcasterFactory

	adapter browser.Adapter
	logger  *zap.Logger
}

// New wires the background context. Nothing runs until Start.
func New(opts Options) (*Background, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	scope, err := tabs.NewScope(opts.ScopePatterns)
	if err != nil {
		return nil, fmt.Errorf("invalid scope: %w", err)
	}

	loop := NewLoop(opts.QueueSize, logger.Named("loop"))
	registry := tabs.NewRegistry(logger.Named("tabs"), opts.Metrics)
	broadcasters := NewBroadcasterFactory(opts.Adapter, registry.IDs, opts.SendTimeout, opts.Metrics, logger.Named("broadcast"))
	registry.OnRemove(broadcasters.Forget)

	global, err := NewGlobalContext(GlobalOptions{
		Broadcaster:  broadcasters.AllTabsBroadcaster(),
		FlagDefaults: opts.FlagDefaults,
		Snapshots:    opts.Snapshots,
		Logger:       logger.Named("global"),
	})
	if err != nil {
		return nil, err
	}

	factory := tabs.NewFactory(registry, broadcasters.TabBroadcaster, logger.Named("tabs"))
	exec := func(fn func()) {
		if !loop.Post(fn) {
			logger.Debug("Dropping tab event after shutdown")
		}
	}

	return &Background{
		Loop:         loop,
		Global:       global,
		Registry:     registry,
		Distributor:  NewDistributor(global.Interpreter, registry, opts.Tracer, opts.Metrics, logger.Named("distributor")),
		Controller:   tabs.NewController(opts.Adapter, registry, factory, scope, exec, logger.Named("tabs")),
		Broadcasters: broadcasters,
		adapter:      opts.Adapter,
		logger:       logger,
	}, nil
}

// Start runs the loop, picks up open tabs and begins accepting messages.
func (b *Background) Start(ctx context.Context) error {
	go b.Loop.Run(ctx)

	var initErr error
	if err := b.Loop.Do(ctx, func() {
		initErr = b.Controller.Initialize(ctx)
	}); err != nil {
		return err
	}
	if initErr != nil {
		return initErr
	}

	b.adapter.AddListenerOnMessage(func(msg flux.Message, sender browser.Sender) {
		if !b.Loop.Post(func() { b.Distributor.Distribute(msg, sender) }) {
			b.logger.Debug("Dropping message after shutdown", zap.String("messageType", msg.MessageType))
		}
	})

	b.logger.Info("Background context started", zap.Int("tabs", b.Registry.Len()))
	return nil
}

// Stop tears down every context and stops the loop.
func (b *Background) Stop(ctx context.Context) {
	err := b.Loop.Do(ctx, func() {
		b.Registry.TeardownAll()
		b.Global.Teardown()
	})
	if err != nil {
		b.logger.Warn("Shutdown did not run on the event loop", zap.Error(err))
		b.Registry.TeardownAll()
		b.Global.Teardown()
	}
	b.Loop.Stop()
}
