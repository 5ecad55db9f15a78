package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/storesync/internal/browser"
	"github.com/GriffinCanCode/storesync/internal/flux"
	"github.com/GriffinCanCode/storesync/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/storesync/internal/shared/id"
)

var (
	// ErrNoPeer is returned when no connected surface matches a send.
	ErrNoPeer = fmt.Errorf("%w: no peer connected", browser.ErrNoReceiver)
	// ErrSlowPeer is returned when a peer's send buffer is full. The peer is
	// disconnected.
	ErrSlowPeer = errors.New("peer send buffer full")
	// ErrHubClosed is returned by sends after Close.
	ErrHubClosed = errors.New("hub closed")
)

// Settings tunes connections. Zero values take defaults.
type Settings struct {
	WriteTimeout    time.Duration
	PingInterval    time.Duration
	MaxMessageBytes int64
	SendBuffer      int
	// RateLimit bounds inbound messages per peer per second. Zero disables.
	RateLimit rate.Limit
	RateBurst int
}

func (s Settings) withDefaults() Settings {
	if s.WriteTimeout <= 0 {
		s.WriteTimeout = 10 * time.Second
	}
	if s.PingInterval <= 0 {
		s.PingInterval = 30 * time.Second
	}
	if s.MaxMessageBytes <= 0 {
		s.MaxMessageBytes = 1 << 20
	}
	if s.SendBuffer <= 0 {
		s.SendBuffer = 256
	}
	if s.RateLimit > 0 && s.RateBurst <= 0 {
		s.RateBurst = int(s.RateLimit)
	}
	return s
}

// PeerInfo describes a connected surface.
type PeerInfo struct {
	ID          id.PeerID           `json:"id"`
	Context     browser.ContextKind `json:"context"`
	TabID       *int                `json:"tabId,omitempty"`
	ConnectedAt time.Time           `json:"connectedAt"`
}

// Hub tracks connected surfaces and the tabs the extension peer reported.
type Hub struct {
	settings Settings
	metrics  *monitoring.Metrics
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu        sync.RWMutex
	peers     map[id.PeerID]*peer
	tabs      map[int]browser.Tab
	onMessage []browser.MessageHandler
	onUpdated []browser.TabUpdatedHandler
	onRemoved []browser.TabRemovedHandler
	closed    bool
}

var _ browser.Adapter = (*Hub)(nil)

// NewHub creates a hub with no peers.
func NewHub(settings Settings, metrics *monitoring.Metrics, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		settings: settings.withDefaults(),
		metrics:  metrics,
		logger:   logger,
		upgrader: websocket.Upgrader{
			// surfaces connect from extension origins
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		peers: make(map[id.PeerID]*peer),
		tabs:  make(map[int]browser.Tab),
	}
}

// HandleConnection upgrades GET /port?context=<kind>&tabId=<n> and serves
// the peer until it disconnects.
func (h *Hub) HandleConnection(c *gin.Context) {
	kind, ok := browser.ParseContextKind(c.Query("context"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid context"})
		return
	}

	var tabID *int
	if raw := c.Query("tabId"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tabId"})
			return
		}
		tabID = &n
	}
	if kind == browser.ContextContent && tabID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content peers require tabId"})
		return
	}

	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "shutting down"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	p := newPeer(h, conn, kind, tabID)
	if !h.register(p) {
		conn.Close()
		return
	}
	defer h.unregister(p)

	go p.writePump()
	p.readPump()
}

func (h *Hub) register(p *peer) bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return false
	}
	h.peers[p.id] = p
	h.mu.Unlock()

	h.metrics.IncWSConnections(string(p.context))
	h.logger.Info("Peer connected", p.fields()...)
	return true
}

func (h *Hub) unregister(p *peer) {
	h.mu.Lock()
	_, ok := h.peers[p.id]
	delete(h.peers, p.id)
	h.mu.Unlock()

	p.close()
	if ok {
		h.metrics.DecWSConnections(string(p.context))
		h.logger.Info("Peer disconnected", p.fields()...)
	}
}

// AddListenerOnMessage registers handler for every inbound message.
func (h *Hub) AddListenerOnMessage(handler browser.MessageHandler) {
	h.mu.Lock()
	h.onMessage = append(h.onMessage, handler)
	h.mu.Unlock()
}

// AddListenerToTabsOnUpdated registers handler for tab updates.
func (h *Hub) AddListenerToTabsOnUpdated(handler browser.TabUpdatedHandler) {
	h.mu.Lock()
	h.onUpdated = append(h.onUpdated, handler)
	h.mu.Unlock()
}

// AddListenerToTabsOnRemoved registers handler for closed tabs.
func (h *Hub) AddListenerToTabsOnRemoved(handler browser.TabRemovedHandler) {
	h.mu.Lock()
	h.onRemoved = append(h.onRemoved, handler)
	h.mu.Unlock()
}

// TabsQuery returns the open tabs last reported by the extension peer.
func (h *Hub) TabsQuery(ctx context.Context) ([]browser.Tab, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.mu.RLock()
	tabs := make([]browser.Tab, 0, len(h.tabs))
	for _, tab := range h.tabs {
		tabs = append(tabs, tab)
	}
	h.mu.RUnlock()

	sort.Slice(tabs, func(i, j int) bool { return tabs[i].ID < tabs[j].ID })
	return tabs, nil
}

// SendMessageToTab sends msg to the content peers of tabID.
func (h *Hub) SendMessageToTab(ctx context.Context, tabID int, msg flux.Message) error {
	return h.send(ctx, msg, func(p *peer) bool {
		return p.context == browser.ContextContent && p.tabID != nil && *p.tabID == tabID
	})
}

// SendMessageToFrames sends msg to every extension page: popup, devtools,
// details and the extension peer itself.
func (h *Hub) SendMessageToFrames(ctx context.Context, msg flux.Message) error {
	return h.send(ctx, msg, func(p *peer) bool {
		return p.context != browser.ContextContent
	})
}

func (h *Hub) send(ctx context.Context, msg flux.Message, match func(*peer) bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return ErrHubClosed
	}
	var targets []*peer
	for _, p := range h.peers {
		if match(p) {
			targets = append(targets, p)
		}
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return ErrNoPeer
	}

	data, err := sonic.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", msg.MessageType, err)
	}

	var errs error
	for _, p := range targets {
		if err := p.enqueue(data); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("peer %s: %w", p.id, err))
		}
	}
	return errs
}

// Peers lists the connected surfaces.
func (h *Hub) Peers() []PeerInfo {
	h.mu.RLock()
	infos := make([]PeerInfo, 0, len(h.peers))
	for _, p := range h.peers {
		infos = append(infos, p.info())
	}
	h.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Close disconnects every peer and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	peers := make([]*peer, 0, len(h.peers))
	for _, p := range h.peers {
		peers = append(peers, p)
	}
	h.mu.Unlock()

	for _, p := range peers {
		p.close()
	}
	h.logger.Info("Hub closed", zap.Int("peers", len(peers)))
}

// dispatch routes one decoded inbound message.
func (h *Hub) dispatch(p *peer, msg flux.Message) {
	if p.context == browser.ContextExtension {
		switch msg.MessageType {
		case browser.TabsUpdatedMessage:
			h.tabUpdated(msg)
			return
		case browser.TabsRemovedMessage:
			h.tabRemoved(msg)
			return
		}
	}

	h.mu.RLock()
	handlers := append([]browser.MessageHandler(nil), h.onMessage...)
	h.mu.RUnlock()

	sender := browser.Sender{PeerID: string(p.id), Context: p.context, TabID: p.tabID}
	for _, handler := range handlers {
		handler(msg, sender)
	}
}

func (h *Hub) tabUpdated(msg flux.Message) {
	tab, err := flux.DecodePayload[browser.Tab](msg)
	if err != nil {
		h.logger.Warn("Dropping malformed tab update", zap.Error(err))
		return
	}

	h.mu.Lock()
	previous, known := h.tabs[tab.ID]
	h.tabs[tab.ID] = tab
	handlers := append([]browser.TabUpdatedHandler(nil), h.onUpdated...)
	h.mu.Unlock()

	urlChanged := !known || previous.URL != tab.URL
	for _, handler := range handlers {
		handler(tab, urlChanged)
	}
}

func (h *Hub) tabRemoved(msg flux.Message) {
	removed, err := flux.DecodePayload[browser.TabRemoved](msg)
	if err != nil {
		h.logger.Warn("Dropping malformed tab removal", zap.Error(err))
		return
	}

	h.mu.Lock()
	delete(h.tabs, removed.ID)
	handlers := append([]browser.TabRemovedHandler(nil), h.onRemoved...)
	h.mu.Unlock()

	for _, handler := range handlers {
		handler(removed.ID)
	}
}
