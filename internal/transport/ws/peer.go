package ws

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/storesync/internal/browser"
	"github.com/GriffinCanCode/storesync/internal/flux"
	"github.com/GriffinCanCode/storesync/internal/shared/id"
)

type peer struct {
	hub         *Hub
	id          id.PeerID
	context     browser.ContextKind
	tabID       *int
	connectedAt time.Time

	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter

	done      chan struct{}
	closeOnce sync.Once
}

func newPeer(h *Hub, conn *websocket.Conn, kind browser.ContextKind, tabID *int) *peer {
	p := &peer{
		hub:         h,
		id:          id.NewPeerID(),
		context:     kind,
		tabID:       tabID,
		connectedAt: time.Now(),
		conn:        conn,
		send:        make(chan []byte, h.settings.SendBuffer),
		done:        make(chan struct{}),
	}
	if h.settings.RateLimit > 0 {
		p.limiter = rate.NewLimiter(h.settings.RateLimit, h.settings.RateBurst)
	}
	return p
}

func (p *peer) fields() []zap.Field {
	fields := []zap.Field{
		zap.String("peer_id", string(p.id)),
		zap.String("context", string(p.context)),
	}
	if p.tabID != nil {
		fields = append(fields, zap.Int("tabId", *p.tabID))
	}
	return fields
}

func (p *peer) info() PeerInfo {
	return PeerInfo{ID: p.id, Context: p.context, TabID: p.tabID, ConnectedAt: p.connectedAt}
}

// enqueue never blocks. A full buffer disconnects the peer.
func (p *peer) enqueue(data []byte) error {
	select {
	case <-p.done:
		return ErrNoPeer
	default:
	}

	select {
	case p.send <- data:
		p.hub.metrics.RecordWSMessage("out", string(p.context))
		return nil
	default:
		p.hub.metrics.RecordWSDropped("slow_peer")
		p.hub.logger.Warn("Disconnecting slow peer", p.fields()...)
		p.close()
		return ErrSlowPeer
	}
}

// close signals writePump to send a close frame and drop the connection.
func (p *peer) close() {
	p.closeOnce.Do(func() { close(p.done) })
}

func (p *peer) readPump() {
	settings := p.hub.settings
	pongWait := settings.PingInterval + settings.WriteTimeout

	p.conn.SetReadLimit(settings.MaxMessageBytes)
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				p.hub.logger.Debug("Peer read failed", append(p.fields(), zap.Error(err))...)
			}
			return
		}
		p.conn.SetReadDeadline(time.Now().Add(pongWait))

		if p.limiter != nil && !p.limiter.Allow() {
			p.hub.metrics.RecordWSDropped("rate_limited")
			continue
		}

		var msg flux.Message
		if err := sonic.Unmarshal(data, &msg); err != nil || msg.MessageType == "" {
			p.hub.metrics.RecordWSDropped("malformed")
			p.hub.logger.Debug("Dropping malformed frame", p.fields()...)
			continue
		}

		p.hub.metrics.RecordWSMessage("in", string(p.context))
		p.hub.dispatch(p, msg)
	}
}

func (p *peer) writePump() {
	settings := p.hub.settings
	ticker := time.NewTicker(settings.PingInterval)
	defer func() {
		ticker.Stop()
		p.close()
		p.conn.Close()
	}()

	for {
		select {
		case data := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(settings.WriteTimeout))
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(settings.WriteTimeout)
			if err := p.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		case <-p.done:
			deadline := time.Now().Add(settings.WriteTimeout)
			_ = p.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			return
		}
	}
}
