package stores

import (
	"net/url"

	"github.com/GriffinCanCode/storesync/internal/actions"
	"github.com/GriffinCanCode/storesync/internal/flux"
)

// TabStoreData is the target page record of one tab.
type TabStoreData struct {
	ID              int    `json:"id"`
	URL             string `json:"url"`
	Title           string `json:"title"`
	IsClosed        bool   `json:"isClosed"`
	IsChanged       bool   `json:"isChanged"`
	IsPageHidden    bool   `json:"isPageHidden"`
	IsOriginChanged bool   `json:"isOriginChanged"`
}

// TabStore tracks the page loaded in its tab.
type TabStore struct {
	*flux.BaseStore[TabStoreData]

	tabID   int
	actions *actions.TabActions
}

// NewTabStore creates the TabStore of tabID.
func NewTabStore(tabID int, tabActions *actions.TabActions, opts ...flux.StoreOption) *TabStore {
	s := &TabStore{tabID: tabID, actions: tabActions}
	opts = append([]flux.StoreOption{flux.WithTabID(tabID)}, opts...)
	s.BaseStore = flux.NewBaseStore[TabStoreData](TabStoreName, s, opts...)
	return s
}

func (s *TabStore) DefaultState() TabStoreData {
	return TabStoreData{ID: s.tabID}
}

func (s *TabStore) AddActionListeners(store *flux.BaseStore[TabStoreData]) {
	flux.On(store, s.actions.NewTab, s.onNewTab)
	flux.On(store, s.actions.ExistingTabUpdated, onExistingTabUpdated)
	flux.On(store, s.actions.GetCurrentState, func(*TabStoreData, actions.NoPayload) {})
	flux.On(store, s.actions.TabRemove, func(state *TabStoreData, _ actions.NoPayload) {
		state.IsClosed = true
	})
	flux.On(store, s.actions.TabVisibilityChange, func(state *TabStoreData, p actions.VisibilityChangePayload) {
		state.IsPageHidden = p.Hidden
	})
}

func (s *TabStore) onNewTab(state *TabStoreData, p actions.TabPayload) {
	*state = TabStoreData{ID: s.tabID, URL: p.URL, Title: p.Title}
}

func onExistingTabUpdated(state *TabStoreData, p actions.TabPayload) {
	state.IsOriginChanged = origin(state.URL) != origin(p.URL)
	state.URL = p.URL
	state.Title = p.Title
	state.IsChanged = true
}

// origin returns scheme://host of raw, or raw itself when it does not parse.
func origin(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Scheme + "://" + u.Host
}
