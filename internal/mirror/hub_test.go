package mirror

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/storesync/internal/flux"
)

type panelState struct {
	Open     bool     `json:"open"`
	Selected []string `json:"selected"`
}

func updateMessage(t *testing.T, name string, storeType flux.StoreType, tabID *int, state interface{}) flux.Message {
	t.Helper()
	raw, err := json.Marshal(state)
	require.NoError(t, err)
	msg, err := flux.NewStoreUpdateMessage(flux.StoreUpdate{
		StoreName: name,
		StoreType: storeType,
		TabID:     tabID,
		State:     raw,
	})
	require.NoError(t, err)
	return msg
}

func TestHubRoundTrip(t *testing.T) {
	hub := NewHub(zap.NewNop())
	m := New[panelState]("X", nil)
	require.NoError(t, hub.Register(m))

	var firstCalls, secondCalls int
	m.AddChangedListener(func(panelState) { firstCalls++ })
	m.AddChangedListener(func(panelState) { secondCalls++ })

	want := panelState{Open: true, Selected: []string{"a", "b"}}
	p := hub.HandleMessage(updateMessage(t, "X", flux.GlobalStore, nil, want))
	require.NoError(t, p.Wait(context.Background()))

	got, ok := m.GetState()
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, firstCalls)
	assert.Equal(t, 1, secondCalls)
}

func TestHubDropsUnmirroredStores(t *testing.T) {
	hub := NewHub(nil)
	m := New[panelState]("X", nil)
	require.NoError(t, hub.Register(m))

	p := hub.HandleMessage(updateMessage(t, "Y", flux.GlobalStore, nil, panelState{Open: true}))
	assert.NoError(t, p.Wait(context.Background()))

	_, ok := m.GetState()
	assert.False(t, ok)
}

func TestHubIgnoresOtherMessageTypes(t *testing.T) {
	hub := NewHub(nil)
	p := hub.HandleMessage(flux.Message{MessageType: "insights/details-view/open"})
	assert.NoError(t, p.Wait(context.Background()))
}

func TestHubRejectsMalformedUpdate(t *testing.T) {
	hub := NewHub(nil)
	p := hub.HandleMessage(flux.Message{
		MessageType: flux.StoreStateChangedMessage,
		Payload:     json.RawMessage(`{"storeName":`),
	})
	assert.Error(t, p.Wait(context.Background()))
}

func TestHubRejectsDuplicateMirror(t *testing.T) {
	hub := NewHub(nil)
	require.NoError(t, hub.Register(New[panelState]("X", nil)))
	assert.Error(t, hub.Register(New[panelState]("X", nil)))

	hub.Unregister("X")
	assert.NoError(t, hub.Register(New[panelState]("X", nil)))
}

func TestMirrorFiltersOtherTabs(t *testing.T) {
	hub := NewHub(nil)
	m := New[panelState]("TabStore", flux.TabIDPtr(1))
	require.NoError(t, hub.Register(m))

	hub.HandleMessage(updateMessage(t, "TabStore", flux.TabContextStore, flux.TabIDPtr(2), panelState{Open: true}))
	_, ok := m.GetState()
	assert.False(t, ok, "update for another tab must not apply")

	hub.HandleMessage(updateMessage(t, "TabStore", flux.TabContextStore, flux.TabIDPtr(1), panelState{Open: true}))
	state, ok := m.GetState()
	require.True(t, ok)
	assert.True(t, state.Open)
}

func TestMirrorWithTabAcceptsGlobalStores(t *testing.T) {
	m := New[panelState]("FeatureFlagStore", flux.TabIDPtr(1))

	applied, err := m.Apply(flux.StoreUpdate{
		StoreName: "FeatureFlagStore",
		StoreType: flux.GlobalStore,
		State:     json.RawMessage(`{"open":true}`),
	})
	require.NoError(t, err)
	assert.True(t, applied)
}

func TestMirrorSuppressesIdenticalState(t *testing.T) {
	m := New[panelState]("X", nil)
	calls := 0
	m.AddChangedListener(func(panelState) { calls++ })

	update := flux.StoreUpdate{StoreName: "X", StoreType: flux.GlobalStore, State: json.RawMessage(`{"open":true}`)}

	applied, err := m.Apply(update)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = m.Apply(update)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 1, calls)
}

func TestMirrorRemoveChangedListener(t *testing.T) {
	m := New[panelState]("X", nil)
	calls := 0
	id := m.AddChangedListener(func(panelState) { calls++ })
	require.True(t, m.RemoveChangedListener(id))

	_, err := m.Apply(flux.StoreUpdate{StoreName: "X", StoreType: flux.GlobalStore, State: json.RawMessage(`{}`)})
	require.NoError(t, err)
	assert.Equal(t, 0, calls)
}

type fakeReceiver struct {
	handler func(flux.Message)
}

func (r *fakeReceiver) OnReceive(handler func(flux.Message)) {
	r.handler = handler
}

func TestHubAttach(t *testing.T) {
	hub := NewHub(nil)
	m := New[panelState]("X", nil)
	require.NoError(t, hub.Register(m))

	receiver := &fakeReceiver{}
	hub.Attach(receiver)
	require.NotNil(t, receiver.handler)

	receiver.handler(updateMessage(t, "X", flux.GlobalStore, nil, panelState{Selected: []string{"z"}}))

	state, ok := m.GetState()
	require.True(t, ok)
	assert.Equal(t, []string{"z"}, state.Selected)
}
