package tabs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/storesync/internal/browser"
	"github.com/GriffinCanCode/storesync/internal/flux"
	"github.com/GriffinCanCode/storesync/internal/stores"
)

type mockAdapter struct {
	mock.Mock

	onUpdated browser.TabUpdatedHandler
	onRemoved browser.TabRemovedHandler
}

func (m *mockAdapter) AddListenerOnMessage(handler browser.MessageHandler) {
	m.Called(handler)
}

func (m *mockAdapter) AddListenerToTabsOnUpdated(handler browser.TabUpdatedHandler) {
	m.onUpdated = handler
}

func (m *mockAdapter) AddListenerToTabsOnRemoved(handler browser.TabRemovedHandler) {
	m.onRemoved = handler
}

func (m *mockAdapter) TabsQuery(ctx context.Context) ([]browser.Tab, error) {
	args := m.Called(ctx)
	tabs, _ := args.Get(0).([]browser.Tab)
	return tabs, args.Error(1)
}

func (m *mockAdapter) SendMessageToTab(ctx context.Context, tabID int, msg flux.Message) error {
	return m.Called(ctx, tabID, msg).Error(0)
}

func (m *mockAdapter) SendMessageToFrames(ctx context.Context, msg flux.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func newController(t *testing.T, adapter browser.Adapter) (*Controller, *Registry) {
	t.Helper()
	scope, err := NewScope([]string{"https://**"})
	require.NoError(t, err)

	registry := NewRegistry(nil, nil)
	factory := NewFactory(registry, nil, nil)
	return NewController(adapter, registry, factory, scope, nil, nil), registry
}

func tabState(t *testing.T, registry *Registry, tabID int) (*TabContext, func() bool) {
	t.Helper()
	ctx, ok := registry.Get(tabID)
	require.True(t, ok)
	return ctx, func() bool {
		state, _ := ctx.TabState()
		return state.IsClosed
	}
}

func TestControllerInitializeTracksInScopeTabs(t *testing.T) {
	adapter := &mockAdapter{}
	adapter.On("TabsQuery", mock.Anything).Return([]browser.Tab{
		{ID: 1, URL: "https://example.com", Title: "Example"},
		{ID: 2, URL: "chrome://settings"},
		{ID: 3, URL: "https://other.example/page"},
	}, nil)

	controller, registry := newController(t, adapter)
	require.NoError(t, controller.Initialize(context.Background()))

	assert.Equal(t, []int{1, 3}, registry.IDs())
	ctx, _ := registry.Get(1)
	state, _ := ctx.TabState()
	assert.Equal(t, "Example", state.Title)

	assert.NotNil(t, adapter.onUpdated)
	assert.NotNil(t, adapter.onRemoved)
	adapter.AssertExpectations(t)
}

func TestControllerInitializeTracksTabReportedDuringQuery(t *testing.T) {
	adapter := &mockAdapter{}
	late := browser.Tab{ID: 4, URL: "https://late.example"}
	adapter.On("TabsQuery", mock.Anything).Run(func(mock.Arguments) {
		require.NotNil(t, adapter.onUpdated, "listeners must be registered before the query")
		adapter.onUpdated(late, true)
	}).Return([]browser.Tab{late}, nil)

	controller, registry := newController(t, adapter)
	require.NoError(t, controller.Initialize(context.Background()))

	tabCtx, ok := registry.Get(4)
	require.True(t, ok)
	assert.False(t, tabCtx.IsTornDown(), "the queried tab must not replace the context created by the event")
	assert.Equal(t, 1, registry.Len())
}

func TestControllerInitializeQueryError(t *testing.T) {
	adapter := &mockAdapter{}
	adapter.On("TabsQuery", mock.Anything).Return(nil, errors.New("no extension peer"))

	controller, _ := newController(t, adapter)
	assert.Error(t, controller.Initialize(context.Background()))
}

func TestControllerTabUpdates(t *testing.T) {
	controller, registry := newController(t, &mockAdapter{})

	// out of scope and untracked: ignored
	controller.OnTabUpdated(browser.Tab{ID: 4, URL: "chrome://newtab"}, true)
	assert.Zero(t, registry.Len())

	// in scope and untracked: created
	controller.OnTabUpdated(browser.Tab{ID: 4, URL: "https://a.example/", Title: "A"}, true)
	ctx, _ := tabState(t, registry, 4)
	state, _ := ctx.TabState()
	assert.Equal(t, "https://a.example/", state.URL)
	assert.False(t, state.IsChanged)

	// in scope and tracked: existing tab updated
	controller.OnTabUpdated(browser.Tab{ID: 4, URL: "https://b.example/", Title: "B"}, true)
	state, _ = ctx.TabState()
	assert.True(t, state.IsChanged)
	assert.True(t, state.IsOriginChanged)
	assert.Same(t, ctx, func() *TabContext { c, _ := registry.Get(4); return c }())

	// no navigation: visibility only
	controller.OnTabUpdated(browser.Tab{ID: 4, URL: "https://b.example/", Active: false}, false)
	state, _ = ctx.TabState()
	assert.True(t, state.IsPageHidden)

	// out of scope and tracked: torn down
	controller.OnTabUpdated(browser.Tab{ID: 4, URL: "chrome://history"}, true)
	assert.True(t, ctx.IsTornDown())
	assert.Zero(t, registry.Len())
}

func TestControllerTabRemoved(t *testing.T) {
	adapter := &mockAdapter{}
	adapter.On("TabsQuery", mock.Anything).Return([]browser.Tab{{ID: 7, URL: "https://example.com"}}, nil)

	controller, registry := newController(t, adapter)
	require.NoError(t, controller.Initialize(context.Background()))

	ctx, closed := tabState(t, registry, 7)

	var removedClosed bool
	ctx.tabStore.AddChangedListener(func(s stores.TabStoreData) { removedClosed = s.IsClosed })

	adapter.onRemoved(7)
	assert.True(t, removedClosed, "Tab.Remove must reach the store before teardown")
	assert.True(t, ctx.IsTornDown())
	assert.True(t, closed())
	assert.Zero(t, registry.Len())

	// untracked: ignored
	assert.NotPanics(t, func() { adapter.onRemoved(99) })
}

func TestControllerUsesExecutor(t *testing.T) {
	scope, err := NewScope(nil)
	require.NoError(t, err)

	adapter := &mockAdapter{}
	adapter.On("TabsQuery", mock.Anything).Return([]browser.Tab{}, nil)

	var queued []func()
	registry := NewRegistry(nil, nil)
	controller := NewController(adapter, registry, NewFactory(registry, nil, nil), scope, func(fn func()) {
		queued = append(queued, fn)
	}, nil)
	require.NoError(t, controller.Initialize(context.Background()))

	adapter.onUpdated(browser.Tab{ID: 1, URL: "about:blank"}, true)
	assert.Zero(t, registry.Len())
	require.Len(t, queued, 1)

	queued[0]()
	assert.Equal(t, 1, registry.Len())
}
