package background

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/storesync/internal/actions"
	"github.com/GriffinCanCode/storesync/internal/browser"
	"github.com/GriffinCanCode/storesync/internal/flux"
	"github.com/GriffinCanCode/storesync/internal/stores"
	"github.com/GriffinCanCode/storesync/internal/tabs"
)

type distributorFixture struct {
	distributor *Distributor
	global      *GlobalContext
	registry    *tabs.Registry
	logs        *observer.ObservedLogs
}

func newDistributorFixture(t *testing.T) distributorFixture {
	t.Helper()
	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)

	global, err := NewGlobalContext(GlobalOptions{FlagDefaults: stores.BuiltinFlagDefaults()})
	require.NoError(t, err)

	registry := tabs.NewRegistry(nil, nil)
	_, err = tabs.NewFactory(registry, nil, nil).CreateTabContext(4)
	require.NoError(t, err)

	return distributorFixture{
		distributor: NewDistributor(global.Interpreter, registry, nil, nil, logger),
		global:      global,
		registry:    registry,
		logs:        logs,
	}
}

func message(t *testing.T, messageType string, payload interface{}, tabID *int) flux.Message {
	t.Helper()
	msg, err := flux.NewMessage(messageType, payload, tabID)
	require.NoError(t, err)
	return msg
}

func TestDistributeGlobalMessage(t *testing.T) {
	f := newDistributorFixture(t)

	handled, result := f.distributor.Distribute(
		message(t, actions.FeatureFlagsSet, actions.FeatureFlagPayload{Feature: "scoping", Enabled: true}, nil),
		browser.Sender{Context: browser.ContextDetails},
	)

	assert.True(t, handled)
	require.NoError(t, result.Err())
	assert.True(t, f.global.FeatureFlags.IsEnabled("scoping"))
}

func TestDistributeFillsTabIDFromSender(t *testing.T) {
	f := newDistributorFixture(t)

	handled, result := f.distributor.Distribute(
		message(t, actions.DevToolsStatus, actions.DevToolStatusPayload{Status: true}, nil),
		browser.Sender{Context: browser.ContextDevTools, TabID: flux.TabIDPtr(4)},
	)
	require.True(t, handled)
	require.NoError(t, result.Err())

	tabCtx, ok := f.registry.Get(4)
	require.True(t, ok)
	store, ok := tabCtx.StoreHub.Get(stores.DevToolStoreName)
	require.True(t, ok)
	raw, err := store.StateJSON()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"isOpen":true`)
}

func TestDistributeStateRequestToTab(t *testing.T) {
	f := newDistributorFixture(t)

	handled, _ := f.distributor.Distribute(
		message(t, flux.GetStoreStateMessage(stores.TabStoreName), nil, flux.TabIDPtr(4)),
		browser.Sender{Context: browser.ContextDetails},
	)
	assert.True(t, handled)

	handled, _ = f.distributor.Distribute(
		message(t, flux.GetStoreStateMessage(stores.TabStoreName), nil, flux.TabIDPtr(99)),
		browser.Sender{Context: browser.ContextDetails},
	)
	assert.False(t, handled, "no context for tab 99")
}

func TestDistributeUnknownMessageLogs(t *testing.T) {
	f := newDistributorFixture(t)

	handled, result := f.distributor.Distribute(
		message(t, "insights/unknown", nil, nil),
		browser.Sender{Context: browser.ContextPopup},
	)

	assert.False(t, handled)
	assert.NoError(t, result.Err())
	entries := f.logs.FilterMessage("Unable to interpret message").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "insights/unknown", entries[0].ContextMap()["messageType"])
}

func TestDistributeLogsRejectedHandler(t *testing.T) {
	f := newDistributorFixture(t)

	handled, result := f.distributor.Distribute(
		message(t, actions.FeatureFlagsSet, actions.FeatureFlagPayload{}, nil),
		browser.Sender{Context: browser.ContextDetails},
	)

	assert.True(t, handled)
	assert.Error(t, result.Err())
	assert.Equal(t, 1, f.logs.FilterMessage("Message handler failed").Len())
}
