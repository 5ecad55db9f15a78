package stores

import (
	"github.com/GriffinCanCode/storesync/internal/actions"
	"github.com/GriffinCanCode/storesync/internal/flux"
)

// DevToolStoreData is the devtools panel state of one tab.
type DevToolStoreData struct {
	IsOpen                  bool     `json:"isOpen"`
	InspectElement          []string `json:"inspectElement,omitempty"`
	FrameURL                string   `json:"frameUrl,omitempty"`
	InspectElementRequestID int      `json:"inspectElementRequestId"`
}

// DevToolStore tracks the devtools panel attached to its tab.
type DevToolStore struct {
	*flux.BaseStore[DevToolStoreData]

	actions *actions.DevToolActions
}

// NewDevToolStore creates the DevToolStore of tabID.
func NewDevToolStore(tabID int, devtoolActions *actions.DevToolActions, opts ...flux.StoreOption) *DevToolStore {
	s := &DevToolStore{actions: devtoolActions}
	opts = append([]flux.StoreOption{flux.WithTabID(tabID)}, opts...)
	s.BaseStore = flux.NewBaseStore[DevToolStoreData](DevToolStoreName, s, opts...)
	return s
}

func (s *DevToolStore) DefaultState() DevToolStoreData {
	return DevToolStoreData{}
}

func (s *DevToolStore) AddActionListeners(store *flux.BaseStore[DevToolStoreData]) {
	flux.On(store, s.actions.GetCurrentState, func(*DevToolStoreData, actions.NoPayload) {})
	flux.On(store, s.actions.SetDevToolState, func(state *DevToolStoreData, p actions.DevToolStatusPayload) {
		state.IsOpen = p.Status
	})
	flux.On(store, s.actions.SetInspectElement, func(state *DevToolStoreData, p actions.InspectElementPayload) {
		state.InspectElement = append([]string(nil), p.Target...)
		state.FrameURL = ""
		state.InspectElementRequestID++
	})
	flux.On(store, s.actions.SetFrameURL, func(state *DevToolStoreData, p actions.InspectFrameURLPayload) {
		state.FrameURL = p.FrameURL
		state.InspectElement = nil
	})
}
