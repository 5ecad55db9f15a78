package background

import (
	"context"
	"sync"

	"github.com/GriffinCanCode/storesync/internal/browser"
	"github.com/GriffinCanCode/storesync/internal/flux"
)

type sent struct {
	tabID *int
	msg   flux.Message
}

// fakeAdapter records sends and lets tests drive browser events.
type fakeAdapter struct {
	mu        sync.Mutex
	tabs      []browser.Tab
	sends     []sent
	frameErr  error
	tabErr    map[int]error
	onMessage browser.MessageHandler
	onUpdated browser.TabUpdatedHandler
	onRemoved browser.TabRemovedHandler
}

func newFakeAdapter(tabs ...browser.Tab) *fakeAdapter {
	return &fakeAdapter{tabs: tabs, tabErr: map[int]error{}}
}

func (f *fakeAdapter) AddListenerOnMessage(handler browser.MessageHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onMessage = handler
}

func (f *fakeAdapter) AddListenerToTabsOnUpdated(handler browser.TabUpdatedHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onUpdated = handler
}

func (f *fakeAdapter) AddListenerToTabsOnRemoved(handler browser.TabRemovedHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onRemoved = handler
}

func (f *fakeAdapter) TabsQuery(context.Context) ([]browser.Tab, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]browser.Tab(nil), f.tabs...), nil
}

func (f *fakeAdapter) SendMessageToTab(_ context.Context, tabID int, msg flux.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, sent{tabID: &tabID, msg: msg})
	return f.tabErr[tabID]
}

func (f *fakeAdapter) SendMessageToFrames(_ context.Context, msg flux.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, sent{msg: msg})
	return f.frameErr
}

func (f *fakeAdapter) sent() []sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sent(nil), f.sends...)
}

func (f *fakeAdapter) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = nil
}

func (f *fakeAdapter) deliver(msg flux.Message, sender browser.Sender) {
	f.mu.Lock()
	handler := f.onMessage
	f.mu.Unlock()
	handler(msg, sender)
}

// storeUpdates decodes every store update sent to tabID, or to frames when
// tabID is nil.
func storeUpdates(sends []sent, tabID *int) []flux.StoreUpdate {
	var updates []flux.StoreUpdate
	for _, s := range sends {
		if (s.tabID == nil) != (tabID == nil) || (tabID != nil && *s.tabID != *tabID) {
			continue
		}
		if !flux.IsStoreUpdate(s.msg) {
			continue
		}
		update, err := flux.DecodePayload[flux.StoreUpdate](s.msg)
		if err == nil {
			updates = append(updates, update)
		}
	}
	return updates
}
