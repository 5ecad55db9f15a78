package actions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/storesync/internal/flux"
)

func TestTabActionCreatorRegistersEveryMessage(t *testing.T) {
	interpreter := flux.NewInterpreter()
	creator := NewTabActionCreator(interpreter, NewTabActionHub(), nil)

	require.NoError(t, creator.RegisterCallbacks())
	assert.ElementsMatch(t, TabMessageTypes(), interpreter.Types())
}

func TestTabActionCreatorRejectsSecondRegistration(t *testing.T) {
	interpreter := flux.NewInterpreter()
	require.NoError(t, NewTabActionCreator(interpreter, NewTabActionHub(), nil).RegisterCallbacks())

	err := NewTabActionCreator(interpreter, NewTabActionHub(), nil).RegisterCallbacks()
	assert.ErrorIs(t, err, flux.ErrDuplicateRegistration)
}

func TestTabMessagesInvokeActions(t *testing.T) {
	interpreter := flux.NewInterpreter()
	hub := NewTabActionHub()
	require.NoError(t, NewTabActionCreator(interpreter, hub, nil).RegisterCallbacks())

	var got TabPayload
	hub.Tab.NewTab.AddListener(func(p TabPayload) { got = p })

	var inspected []string
	hub.DevTools.SetInspectElement.AddListener(func(p InspectElementPayload) { inspected = p.Target })

	msg, err := flux.NewMessage(TabUpdate, TabPayload{URL: "https://example.com", Title: "Example"}, flux.TabIDPtr(3))
	require.NoError(t, err)
	result := interpreter.Interpret(msg)
	require.True(t, result.MessageHandled)
	require.NoError(t, result.Result.Wait(context.Background()))
	assert.Equal(t, TabPayload{URL: "https://example.com", Title: "Example"}, got)

	msg, err = flux.NewMessage(DevToolsInspectElement, InspectElementPayload{Target: []string{"#root", "button"}}, nil)
	require.NoError(t, err)
	require.NoError(t, interpreter.Interpret(msg).Result.Wait(context.Background()))
	assert.Equal(t, []string{"#root", "button"}, inspected)
}

func TestGlobalActionCreatorRegistersEveryMessage(t *testing.T) {
	interpreter := flux.NewInterpreter()
	creator := NewGlobalActionCreator(interpreter, NewGlobalActionHub(flux.NewScopeMutex()), nil)

	require.NoError(t, creator.RegisterCallbacks())
	assert.ElementsMatch(t, GlobalMessageTypes(), interpreter.Types())
}

func TestGlobalMessagesSettleWithListeners(t *testing.T) {
	interpreter := flux.NewInterpreter()
	hub := NewGlobalActionHub(flux.NewScopeMutex())
	require.NoError(t, NewGlobalActionCreator(interpreter, hub, nil).RegisterCallbacks())

	hub.FeatureFlags.SetFeatureFlag.AddListener(func(p FeatureFlagPayload) *flux.Promise {
		if p.Feature == "" {
			return flux.Rejected(errors.New("feature name required"))
		}
		return flux.Resolved()
	})

	ok, err := flux.NewMessage(FeatureFlagsSet, FeatureFlagPayload{Feature: "logTelemetryToConsole", Enabled: true}, nil)
	require.NoError(t, err)
	assert.NoError(t, interpreter.Interpret(ok).Result.Wait(context.Background()))

	bad, err := flux.NewMessage(FeatureFlagsSet, FeatureFlagPayload{Enabled: true}, nil)
	require.NoError(t, err)
	assert.EqualError(t, interpreter.Interpret(bad).Result.Wait(context.Background()), "feature name required")
}

func TestGlobalMessageRejectedWhileScopeHeld(t *testing.T) {
	mutex := flux.NewScopeMutex()
	interpreter := flux.NewInterpreter()
	hub := NewGlobalActionHub(mutex)
	require.NoError(t, NewGlobalActionCreator(interpreter, hub, nil).RegisterCallbacks())

	calls := 0
	hub.UserConfiguration.SetTelemetryState.AddListener(func(SetTelemetryStatePayload) *flux.Promise {
		calls++
		return nil
	})

	require.NoError(t, mutex.TryLockScope(flux.DefaultScope))
	defer mutex.UnlockScope(flux.DefaultScope)

	msg, err := flux.NewMessage(UserConfigSetTelemetryConfig, SetTelemetryStatePayload{EnableTelemetry: true}, nil)
	require.NoError(t, err)

	err = interpreter.Interpret(msg).Result.Wait(context.Background())
	assert.ErrorIs(t, err, flux.ErrReentrancy)
	assert.Zero(t, calls)
}

func TestGlobalActionsShareScope(t *testing.T) {
	hub := NewGlobalActionHub(flux.NewScopeMutex())

	var nested error
	hub.FeatureFlags.SetFeatureFlag.AddListener(func(FeatureFlagPayload) *flux.Promise {
		_, nested = hub.UserConfiguration.GetCurrentState.Invoke(NoPayload{}, flux.DefaultScope)
		return nil
	})

	p, err := hub.FeatureFlags.SetFeatureFlag.Invoke(FeatureFlagPayload{Feature: "x"}, flux.DefaultScope)
	require.NoError(t, err)
	require.NoError(t, p.Wait(context.Background()))

	var reentrancy *flux.ReentrancyError
	assert.ErrorAs(t, nested, &reentrancy)
}
