package background

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/storesync/internal/actions"
	"github.com/GriffinCanCode/storesync/internal/browser"
	"github.com/GriffinCanCode/storesync/internal/flux"
	"github.com/GriffinCanCode/storesync/internal/stores"
)

func startBackground(t *testing.T, adapter *fakeAdapter) *Background {
	t.Helper()
	bg, err := New(Options{
		Adapter:       adapter,
		ScopePatterns: []string{"https://**"},
		FlagDefaults:  stores.BuiltinFlagDefaults(),
	})
	require.NoError(t, err)
	require.NoError(t, bg.Start(context.Background()))
	t.Cleanup(func() { bg.Stop(context.Background()) })
	return bg
}

// settle waits until every task posted so far has run.
func settle(t *testing.T, bg *Background) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bg.Loop.Do(ctx, func() {}))
}

func TestBackgroundTracksOpenTabs(t *testing.T) {
	adapter := newFakeAdapter(
		browser.Tab{ID: 1, URL: "https://example.com", Title: "Example"},
		browser.Tab{ID: 2, URL: "about:blank"},
	)
	bg := startBackground(t, adapter)

	assert.Equal(t, []int{1}, bg.Registry.IDs())

	updates := storeUpdates(adapter.sent(), flux.TabIDPtr(1))
	require.NotEmpty(t, updates)
	last := updates[len(updates)-1]
	assert.Equal(t, stores.TabStoreName, last.StoreName)
	assert.Contains(t, string(last.State), "https://example.com")
}

func TestBackgroundRoutesInboundMessages(t *testing.T) {
	adapter := newFakeAdapter(browser.Tab{ID: 1, URL: "https://example.com"})
	bg := startBackground(t, adapter)
	adapter.reset()

	adapter.deliver(
		message(t, actions.FeatureFlagsSet, actions.FeatureFlagPayload{Feature: "scoping", Enabled: true}, nil),
		browser.Sender{Context: browser.ContextDetails},
	)
	settle(t, bg)

	assert.True(t, bg.Global.FeatureFlags.IsEnabled("scoping"))
	frames := storeUpdates(adapter.sent(), nil)
	require.Len(t, frames, 1)
	assert.Equal(t, stores.FeatureFlagStoreName, frames[0].StoreName)
	assert.Equal(t, flux.GlobalStore, frames[0].StoreType)
	assert.Len(t, storeUpdates(adapter.sent(), flux.TabIDPtr(1)), 1, "global state reaches every tab")
}

func TestBackgroundFollowsTabLifecycle(t *testing.T) {
	adapter := newFakeAdapter()
	bg := startBackground(t, adapter)

	adapter.onUpdated(browser.Tab{ID: 5, URL: "https://example.com/a"}, true)
	settle(t, bg)
	_, ok := bg.Registry.Get(5)
	require.True(t, ok)

	adapter.onRemoved(5)
	settle(t, bg)
	_, ok = bg.Registry.Get(5)
	assert.False(t, ok)
}

func TestBackgroundStopTearsDown(t *testing.T) {
	adapter := newFakeAdapter(browser.Tab{ID: 1, URL: "https://example.com"})
	bg, err := New(Options{Adapter: adapter, FlagDefaults: stores.BuiltinFlagDefaults()})
	require.NoError(t, err)
	require.NoError(t, bg.Start(context.Background()))

	tabCtx, ok := bg.Registry.Get(1)
	require.True(t, ok)

	bg.Stop(context.Background())

	assert.True(t, tabCtx.IsTornDown())
	assert.Zero(t, bg.Registry.Len())
	assert.False(t, bg.Global.Teardown(), "already torn down")
}

func TestNewRejectsInvalidScope(t *testing.T) {
	_, err := New(Options{Adapter: newFakeAdapter(), ScopePatterns: []string{"https://[bad"}})
	assert.Error(t, err)
}
