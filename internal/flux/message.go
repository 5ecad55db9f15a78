package flux

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
)

// Reserved message types owned by the core.
const (
	StoreStateChangedMessage = "insights/store/state/changed"
	storeStateRequestPrefix  = "insights/store/state/current/"
)

// GetStoreStateMessage is the message type a surface sends to ask the owner of
// storeName to re-broadcast its current state.
func GetStoreStateMessage(storeName string) string {
	return storeStateRequestPrefix + storeName
}

// Message is the unit carried by the transport. It has no identity beyond its
// fields and must not be modified after it is sent.
type Message struct {
	MessageType string          `json:"messageType"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	TabID       *int            `json:"tabId,omitempty"`
}

// Sender is the outbound half of a transport channel.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewMessage encodes payload into a message. A nil payload is left empty.
func NewMessage(messageType string, payload interface{}, tabID *int) (Message, error) {
	msg := Message{MessageType: messageType, TabID: tabID}
	if payload == nil {
		return msg, nil
	}
	raw, err := sonic.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("failed to encode %s payload: %w", messageType, err)
	}
	msg.Payload = raw
	return msg, nil
}

// WithTabID returns a copy of msg addressed to tabID.
func (m Message) WithTabID(tabID int) Message {
	m.TabID = &tabID
	return m
}

// DecodePayload decodes the payload of msg into P.
func DecodePayload[P any](msg Message) (P, error) {
	return decodeRaw[P](msg.MessageType, msg.Payload)
}

func decodeRaw[P any](messageType string, raw json.RawMessage) (P, error) {
	var payload P
	if len(raw) == 0 {
		return payload, nil
	}
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return payload, fmt.Errorf("failed to decode %s payload: %w", messageType, err)
	}
	return payload, nil
}

// TabIDPtr returns a pointer to id, for building messages inline.
func TabIDPtr(id int) *int {
	return &id
}

// StoreType distinguishes stores owned by the background for all tabs from
// stores owned by a single TabContext.
type StoreType string

const (
	GlobalStore     StoreType = "global"
	TabContextStore StoreType = "tab"
)

// StoreUpdate is the payload of a StoreStateChangedMessage.
type StoreUpdate struct {
	StoreName string          `json:"storeName"`
	StoreType StoreType       `json:"storeType"`
	TabID     *int            `json:"tabId,omitempty"`
	State     json.RawMessage `json:"state"`
}

// NewStoreUpdateMessage wraps update in a StoreStateChangedMessage.
func NewStoreUpdateMessage(update StoreUpdate) (Message, error) {
	return NewMessage(StoreStateChangedMessage, update, update.TabID)
}

// IsStoreUpdate reports whether msg carries a StoreUpdate.
func IsStoreUpdate(msg Message) bool {
	return msg.MessageType == StoreStateChangedMessage
}
