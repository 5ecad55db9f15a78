// Package browser defines the collaborator the background context talks to:
// the source of inbound messages and tab lifecycle events, and the sink for
// messages addressed to tabs and extension frames.
package browser

import (
	"context"
	"errors"

	"github.com/GriffinCanCode/storesync/internal/flux"
)

// ErrNoReceiver is returned by sends addressed to a surface that is not
// connected. Broadcasters treat it as expected.
var ErrNoReceiver = errors.New("could not establish connection: receiving end does not exist")

// ContextKind names the kind of surface a message came from.
type ContextKind string

const (
	ContextPopup     ContextKind = "popup"
	ContextDevTools  ContextKind = "devtools"
	ContextDetails   ContextKind = "details"
	ContextContent   ContextKind = "content"
	ContextExtension ContextKind = "extension"
)

// ParseContextKind validates s.
func ParseContextKind(s string) (ContextKind, bool) {
	switch k := ContextKind(s); k {
	case ContextPopup, ContextDevTools, ContextDetails, ContextContent, ContextExtension:
		return k, true
	}
	return "", false
}

// Reserved message types an extension peer uses to report tab lifecycle.
const (
	TabsUpdatedMessage = "browser/tabs/updated"
	TabsRemovedMessage = "browser/tabs/removed"
)

// Sender identifies the surface a message came from. TabID is set for
// surfaces bound to a tab.
type Sender struct {
	PeerID  string
	Context ContextKind
	TabID   *int
}

// Tab is a browser tab.
type Tab struct {
	ID     int    `json:"tabId"`
	URL    string `json:"url"`
	Title  string `json:"title"`
	Active bool   `json:"active"`
}

// TabRemoved is the payload of TabsRemovedMessage.
type TabRemoved struct {
	ID int `json:"tabId"`
}

// MessageHandler receives every inbound message.
type MessageHandler func(msg flux.Message, sender Sender)

// TabUpdatedHandler receives tab updates. urlChanged is true when the update
// navigated the tab.
type TabUpdatedHandler func(tab Tab, urlChanged bool)

// TabRemovedHandler receives closed tab ids.
type TabRemovedHandler func(tabID int)

// Adapter is the browser surface of the background context.
type Adapter interface {
	AddListenerOnMessage(handler MessageHandler)
	AddListenerToTabsOnUpdated(handler TabUpdatedHandler)
	AddListenerToTabsOnRemoved(handler TabRemovedHandler)
	TabsQuery(ctx context.Context) ([]Tab, error)
	SendMessageToTab(ctx context.Context, tabID int, msg flux.Message) error
	SendMessageToFrames(ctx context.Context, msg flux.Message) error
}
