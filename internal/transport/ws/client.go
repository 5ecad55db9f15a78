package ws

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/storesync/internal/browser"
	"github.com/GriffinCanCode/storesync/internal/flux"
)

// ErrClientClosed is returned by Send after Close.
var ErrClientClosed = errors.New("client closed")

// Client is a surface's connection to the daemon.
type Client struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	logger       *zap.Logger

	writeMu sync.Mutex

	mu       sync.RWMutex
	handlers []func(flux.Message)

	done      chan struct{}
	closeOnce sync.Once
}

// ClientOption configures Dial.
type ClientOption func(*Client)

// WithClientLogger sets the client logger.
func WithClientLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithWriteTimeout bounds every frame write.
func WithWriteTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.writeTimeout = d }
}

// PortURL builds the /port URL of the daemon at addr for a surface.
// addr may be host:port or an http(s) or ws(s) URL.
func PortURL(addr string, kind browser.ContextKind, tabID *int) (string, error) {
	if !strings.Contains(addr, "://") {
		addr = "ws://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return "", fmt.Errorf("invalid address %q: %w", addr, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + "/port"
	q := url.Values{}
	q.Set("context", string(kind))
	if tabID != nil {
		q.Set("tabId", strconv.Itoa(*tabID))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Dial connects to the daemon at addr as a surface of kind, bound to tabID
// when set.
func Dial(ctx context.Context, addr string, kind browser.ContextKind, tabID *int, opts ...ClientOption) (*Client, error) {
	target, err := PortURL(addr, kind, tabID)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", target, err)
	}

	c := &Client{
		conn:         conn,
		writeTimeout: 10 * time.Second,
		logger:       zap.NewNop(),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Send writes msg as one frame.
func (c *Client) Send(ctx context.Context, msg flux.Message) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	data, err := sonic.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", msg.MessageType, err)
	}

	deadline := time.Now().Add(c.writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(deadline)
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to send %s: %w", msg.MessageType, err)
	}
	return nil
}

// OnReceive registers handler for every inbound message. Handlers run on
// the Run goroutine, in registration order.
func (c *Client) OnReceive(handler func(msg flux.Message)) {
	c.mu.Lock()
	c.handlers = append(c.handlers, handler)
	c.mu.Unlock()
}

// Run reads frames until the connection closes or ctx ends. A normal close
// returns nil.
func (c *Client) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				return ctx.Err()
			default:
			}
			c.Close()
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("connection lost: %w", err)
		}

		var msg flux.Message
		if err := sonic.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("Dropping malformed frame", zap.Error(err))
			continue
		}

		c.mu.RLock()
		handlers := append(([]func(flux.Message))(nil), c.handlers...)
		c.mu.RUnlock()
		for _, handler := range handlers {
			handler(msg)
		}
	}
}

// Close sends a close frame and drops the connection.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(c.writeTimeout))
		err = c.conn.Close()
	})
	return err
}
