package actions

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/storesync/internal/flux"
)

// TabActionCreator maps tab messages onto the actions of one TabContext.
type TabActionCreator struct {
	interpreter *flux.Interpreter
	hub         *TabActionHub
	logger      *zap.Logger
}

// NewTabActionCreator creates a creator for hub.
func NewTabActionCreator(interpreter *flux.Interpreter, hub *TabActionHub, logger *zap.Logger) *TabActionCreator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TabActionCreator{interpreter: interpreter, hub: hub, logger: logger}
}

// RegisterCallbacks registers every tab message and fails if one of
// TabMessageTypes is left without a callback.
func (c *TabActionCreator) RegisterCallbacks() error {
	tab, devtools := c.hub.Tab, c.hub.DevTools

	err := multierr.Combine(
		registerSync(c.interpreter, TabUpdate, tab.NewTab),
		registerSync(c.interpreter, TabExistingTabUpdated, tab.ExistingTabUpdated),
		registerSync(c.interpreter, TabGetCurrent, tab.GetCurrentState),
		registerSync(c.interpreter, TabRemove, tab.TabRemove),
		registerSync(c.interpreter, TabVisibilityChange, tab.TabVisibilityChange),
		registerSync(c.interpreter, DevToolsStatus, devtools.SetDevToolState),
		registerSync(c.interpreter, DevToolsInspectElement, devtools.SetInspectElement),
		registerSync(c.interpreter, DevToolsInspectFrameURL, devtools.SetFrameURL),
		registerSync(c.interpreter, DevToolsGet, devtools.GetCurrentState),
	)
	if err != nil {
		return fmt.Errorf("failed to register tab callbacks: %w", err)
	}

	c.logger.Debug("Tab callbacks registered", zap.Int("count", len(c.interpreter.Types())))
	return c.interpreter.Validate(TabMessageTypes()...)
}

// GlobalActionCreator maps global messages onto the background actions.
type GlobalActionCreator struct {
	interpreter *flux.Interpreter
	hub         *GlobalActionHub
	logger      *zap.Logger
}

// NewGlobalActionCreator creates a creator for hub.
func NewGlobalActionCreator(interpreter *flux.Interpreter, hub *GlobalActionHub, logger *zap.Logger) *GlobalActionCreator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GlobalActionCreator{interpreter: interpreter, hub: hub, logger: logger}
}

// RegisterCallbacks registers every global message and fails if one of
// GlobalMessageTypes is left without a callback.
func (c *GlobalActionCreator) RegisterCallbacks() error {
	config, flags := c.hub.UserConfiguration, c.hub.FeatureFlags

	err := multierr.Combine(
		registerAsync(c.interpreter, UserConfigGetCurrentState, config.GetCurrentState),
		registerAsync(c.interpreter, UserConfigSetTelemetryConfig, config.SetTelemetryState),
		registerAsync(c.interpreter, UserConfigSetHighContrast, config.SetHighContrastMode),
		registerAsync(c.interpreter, UserConfigSetBugServiceConfig, config.SetIssueFilingService),
		registerAsync(c.interpreter, UserConfigSetBugServiceProperty, config.SetIssueFilingServiceProperty),
		registerAsync(c.interpreter, FeatureFlagsGet, flags.GetCurrentState),
		registerAsync(c.interpreter, FeatureFlagsSet, flags.SetFeatureFlag),
		registerAsync(c.interpreter, FeatureFlagsReset, flags.ResetFeatureFlags),
	)
	if err != nil {
		return fmt.Errorf("failed to register global callbacks: %w", err)
	}

	c.logger.Debug("Global callbacks registered", zap.Int("count", len(c.interpreter.Types())))
	return c.interpreter.Validate(GlobalMessageTypes()...)
}

func registerSync[P any](interpreter *flux.Interpreter, messageType string, action *flux.SyncAction[P]) error {
	return interpreter.Register(messageType, flux.Handle(func(payload P, _ *int) *flux.Promise {
		action.Invoke(payload)
		return nil
	}))
}

func registerAsync[P any](interpreter *flux.Interpreter, messageType string, action *flux.AsyncAction[P]) error {
	return interpreter.Register(messageType, flux.Handle(func(payload P, _ *int) *flux.Promise {
		result, err := action.Invoke(payload, flux.DefaultScope)
		if err != nil {
			return flux.Rejected(err)
		}
		return result
	}))
}
