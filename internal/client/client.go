package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/BioHazard786/relayroom/internal/dns"
)

const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMessageSize   = 64 * 1024
	handshakeTimeout = 10 * time.Second
	closeGrace       = time.Second
)

// Client is one peer's WebSocket connection to a room.
type Client struct {
	conn     *websocket.Conn
	incoming chan []byte
	outgoing chan []byte
	done     chan struct{}
	readDone chan struct{}

	closeOnce sync.Once
	mu        sync.Mutex
	status    error
}

// RoomURL builds the relay endpoint for room on server. http and https
// server URLs are mapped to ws and wss.
func RoomURL(server, room string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid server URL: unsupported scheme %q", u.Scheme)
	}
	if room == "" {
		return "", errors.New("room name is required")
	}

	base := strings.TrimSuffix(u.EscapedPath(), "/")
	u.Path = strings.TrimSuffix(u.Path, "/") + "/api/room/" + room + "/websocket"
	u.RawPath = base + "/api/room/" + url.PathEscape(room) + "/websocket"
	return u.String(), nil
}

// Dial connects to room on server. A nil resolver uses the system resolver
// with public DNS fallback.
func Dial(ctx context.Context, server, room string, resolver *dns.Resolver) (*Client, error) {
	target, err := RoomURL(server, room)
	if err != nil {
		return nil, newError("connect to server", err)
	}
	if resolver == nil {
		resolver = &dns.Resolver{}
	}

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: handshakeTimeout,
		NetDialContext:   resolver.DialContext,
	}

	conn, resp, err := dialer.DialContext(ctx, target, nil)
	if err != nil {
		return nil, handshakeError(resp, err)
	}

	c := &Client{
		conn:     conn,
		incoming: make(chan []byte, 16),
		outgoing: make(chan []byte, 16),
		done:     make(chan struct{}),
		readDone: make(chan struct{}),
	}
	conn.SetReadLimit(maxMessageSize)
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.readPump()
	go c.writePump()
	return c, nil
}

// handshakeError maps a refused upgrade onto the server's fixed answers.
func handshakeError(resp *http.Response, err error) error {
	if resp == nil {
		return newError("connect to server", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	details := strings.TrimSpace(string(body))

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return wrapError("join room", ErrRoomFull, details)
	case http.StatusNotFound:
		return wrapError("join room", ErrRoomNotFound, details)
	case http.StatusBadRequest, http.StatusMethodNotAllowed:
		return wrapError("join room", ErrBadRequest, details)
	default:
		return wrapError("connect to server", err, resp.Status)
	}
}

// readPump reads messages from the WebSocket connection.
func (c *Client) readPump() {
	defer func() {
		close(c.readDone)
		close(c.incoming)
		c.shutdown()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.setStatus(err)
			return
		}
		select {
		case c.incoming <- data:
		case <-c.done:
			return
		}
	}
}

// writePump writes queued messages and sends periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data := <-c.outgoing:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.setStatus(err)
				c.shutdown()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.setStatus(err)
				c.shutdown()
				return
			}

		case <-c.done:
			return
		}
	}
}

// Send queues data for the peer.
func (c *Client) Send(data []byte) error {
	select {
	case <-c.done:
		return newError("send", ErrClosed)
	default:
	}
	select {
	case c.outgoing <- data:
		return nil
	case <-c.done:
		return newError("send", ErrClosed)
	}
}

// Incoming returns the channel of messages from the peer. It is closed
// when the connection ends.
func (c *Client) Incoming() <-chan []byte {
	return c.incoming
}

// Done is closed once the connection has ended.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// CloseStatus returns why the connection ended: a *websocket.CloseError
// when the server closed it (for example "Peer disconnected"), or the
// transport error otherwise. It is nil while the connection is open.
func (c *Client) CloseStatus() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Close sends a normal close frame and releases the connection.
func (c *Client) Close() error {
	err := c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))

	select {
	case <-c.readDone:
	case <-time.After(closeGrace):
	}
	c.shutdown()

	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		return newError("close", err)
	}
	return nil
}

func (c *Client) setStatus(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == nil {
		var ce *websocket.CloseError
		if errors.As(err, &ce) {
			c.status = ce
			return
		}
		c.status = wrapError("read", ErrConnectionLost, err.Error())
	}
}

func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}
