package mirror

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/storesync/internal/flux"
)

// Receiver is the inbound half of a transport channel.
type Receiver interface {
	OnReceive(handler func(msg flux.Message))
}

// Hub routes store-changed broadcasts to registered mirrors.
type Hub struct {
	logger *zap.Logger

	mu      sync.RWMutex
	mirrors map[string]Target
}

// NewHub creates a hub with no mirrors.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:  logger,
		mirrors: make(map[string]Target),
	}
}

// Register adds target under its store name. A name can be mirrored once per hub.
func (h *Hub) Register(target Target) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.mirrors[target.StoreName()]; exists {
		return fmt.Errorf("mirror already registered for %s", target.StoreName())
	}
	h.mirrors[target.StoreName()] = target
	return nil
}

// Unregister removes the mirror for storeName.
func (h *Hub) Unregister(storeName string) {
	h.mu.Lock()
	delete(h.mirrors, storeName)
	h.mu.Unlock()
}

// Attach subscribes the hub to every message r receives.
func (h *Hub) Attach(r Receiver) {
	r.OnReceive(func(msg flux.Message) {
		h.HandleMessage(msg)
	})
}

// HandleMessage applies a store update to its mirror. Messages that are not
// store updates, and updates for unmirrored stores, are dropped.
func (h *Hub) HandleMessage(msg flux.Message) *flux.Promise {
	if !flux.IsStoreUpdate(msg) {
		return flux.Resolved()
	}

	update, err := flux.DecodePayload[flux.StoreUpdate](msg)
	if err != nil {
		return flux.Rejected(err)
	}

	h.mu.RLock()
	target, ok := h.mirrors[update.StoreName]
	h.mu.RUnlock()

	if !ok {
		h.logger.Debug("No mirror for store update", zap.String("store", update.StoreName))
		return flux.Resolved()
	}

	applied, err := target.Apply(update)
	if err != nil {
		h.logger.Warn("Failed to apply store update", zap.String("store", update.StoreName), zap.Error(err))
		return flux.Rejected(err)
	}
	if applied {
		h.logger.Debug("Mirror updated", zap.String("store", update.StoreName))
	}
	return flux.Resolved()
}
