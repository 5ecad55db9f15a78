package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/storesync/internal/background"
	"github.com/GriffinCanCode/storesync/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/storesync/internal/stores"
	"github.com/GriffinCanCode/storesync/internal/transport/ws"
)

// TabInfo is one entry of GET /tabs.
type TabInfo struct {
	TabID int                  `json:"tabId"`
	State *stores.TabStoreData `json:"state,omitempty"`
}

// Handlers serves the read-only HTTP API.
type Handlers struct {
	background *background.Background
	hub        *ws.Hub
	metrics    *monitoring.Metrics
	logger     *zap.Logger
}

// NewHandlers creates the handlers.
func NewHandlers(bg *background.Background, hub *ws.Hub, metrics *monitoring.Metrics, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{background: bg, hub: hub, metrics: metrics, logger: logger}
}

// Health reports liveness
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"tabs":    h.background.Registry.Len(),
		"peers":   len(h.hub.Peers()),
		"metrics": h.metrics.Snapshot(),
	})
}

// ListTabs lists live tab contexts
func (h *Handlers) ListTabs(c *gin.Context) {
	ids := h.background.Registry.IDs()
	tabs := make([]TabInfo, 0, len(ids))
	for _, tabID := range ids {
		info := TabInfo{TabID: tabID}
		if tabCtx, ok := h.background.Registry.Get(tabID); ok {
			if state, ok := tabCtx.TabState(); ok {
				info.State = &state
			}
		}
		tabs = append(tabs, info)
	}

	c.JSON(http.StatusOK, gin.H{
		"tabs":  tabs,
		"count": len(tabs),
	})
}

// ListPeers lists connected surfaces
func (h *Handlers) ListPeers(c *gin.Context) {
	peers := h.hub.Peers()
	c.JSON(http.StatusOK, gin.H{
		"peers": peers,
		"count": len(peers),
	})
}

// GlobalStores returns the state of every global store
func (h *Handlers) GlobalStores(c *gin.Context) {
	states, err := h.background.Global.States()
	if err != nil {
		h.logger.Error("Failed to encode global stores", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stores": states})
}
