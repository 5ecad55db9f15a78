package ws

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/storesync/internal/browser"
	"github.com/GriffinCanCode/storesync/internal/flux"
	"github.com/GriffinCanCode/storesync/internal/mirror"
)

var (
	_ flux.Sender     = (*Client)(nil)
	_ mirror.Receiver = (*Client)(nil)
)

func TestPortURL(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		kind    browser.ContextKind
		tabID   *int
		want    string
		wantErr bool
	}{
		{"host and port", "localhost:8000", browser.ContextPopup, nil, "ws://localhost:8000/port?context=popup", false},
		{"http url", "http://127.0.0.1:8000", browser.ContextContent, flux.TabIDPtr(4), "ws://127.0.0.1:8000/port?context=content&tabId=4", false},
		{"https url with path", "https://sync.example/api/", browser.ContextDetails, nil, "wss://sync.example/api/port?context=details", false},
		{"unsupported scheme", "ftp://example.com", browser.ContextPopup, nil, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PortURL(tt.addr, tt.kind, tt.tabID)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClientFeedsMirrorHub(t *testing.T) {
	hub, addr := newTestServer(t, Settings{})
	client, _ := dial(t, hub, addr, browser.ContextDetails, nil)

	type flags map[string]bool
	mirrors := mirror.NewHub(nil)
	flagMirror := mirror.New[flags]("FeatureFlagStore", nil)
	require.NoError(t, mirrors.Register(flagMirror))
	mirrors.Attach(client)

	msg, err := flux.NewStoreUpdateMessage(flux.StoreUpdate{
		StoreName: "FeatureFlagStore",
		StoreType: flux.GlobalStore,
		State:     []byte(`{"scoping":true}`),
	})
	require.NoError(t, err)
	require.NoError(t, hub.SendMessageToFrames(context.Background(), msg))

	require.Eventually(t, func() bool {
		state, ok := flagMirror.GetState()
		return ok && state["scoping"]
	}, waitFor, 5*time.Millisecond)
}

func TestClientSendAfterClose(t *testing.T) {
	hub, addr := newTestServer(t, Settings{})
	client, _ := dial(t, hub, addr, browser.ContextPopup, nil)

	require.NoError(t, client.Close())
	assert.ErrorIs(t, client.Send(context.Background(), flux.Message{MessageType: "x"}), ErrClientClosed)
}
