package transport

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/BioHazard786/relayroom/internal/room"
)

var (
	ErrClosed     = errors.New("connection closed")
	ErrBufferFull = errors.New("send buffer full")
)

// Events receives the lifecycle of one connection. Exactly one of OnClose
// or OnError is delivered, after which no further events arrive. Callbacks
// run on the connection's read goroutine.
type Events interface {
	OnMessage(c *Conn, msg room.Message)
	OnClose(c *Conn, code int, reason string, clean bool)
	OnError(c *Conn, err error)
}

type closeFrame struct {
	code   int
	reason string
}

// Conn is a wrapper for a single websocket connection. It satisfies
// room.Conn.
type Conn struct {
	id     string
	ws     *websocket.Conn
	cfg    Config
	events Events
	logger *slog.Logger

	// send is a buffered channel for all outbound messages. writePump is
	// the only writer to the socket.
	send chan room.Message

	// done is closed once Close has been requested.
	done     chan struct{}
	readDone chan struct{}

	mu     sync.RWMutex
	closed bool
	frame  closeFrame
}

// NewConn wraps an upgraded websocket. Nothing is read or written until
// Start is called.
func NewConn(ws *websocket.Conn, cfg Config, events Events, logger *slog.Logger) *Conn {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	id := uuid.NewString()

	return &Conn{
		id:       id,
		ws:       ws,
		cfg:      cfg,
		events:   events,
		logger:   logger.With("conn", id),
		send:     make(chan room.Message, cfg.SendBuffer),
		done:     make(chan struct{}),
		readDone: make(chan struct{}),
	}
}

// ID returns the connection's unique id.
func (c *Conn) ID() string {
	return c.id
}

// Start launches the read and write pumps.
func (c *Conn) Start() {
	go c.writePump()
	go c.readPump()
}

// Send queues msg for delivery. It never blocks: a closed connection or a
// full buffer is reported immediately.
func (c *Conn) Send(msg room.Message) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- msg:
		return nil
	default:
		return ErrBufferFull
	}
}

// Close asks writePump to send a close frame and shut the socket down.
// Only the first call has any effect.
func (c *Conn) Close(code int, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.closed = true
	c.frame = closeFrame{code: code, reason: reason}
	close(c.done)
	return nil
}

func (c *Conn) markClosed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.done)
	}
}

// readPump pumps messages from the websocket connection to the events sink.
//
// The application runs readPump in a per-connection goroutine. It is the
// only reader on the connection.
func (c *Conn) readPump() {
	defer close(c.readDone)

	c.ws.SetReadLimit(c.cfg.MaxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		return nil
	})

	for {
		kind, data, err := c.ws.ReadMessage()
		if err != nil {
			c.markClosed()

			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				c.logger.Debug("websocket closed by remote", "code", ce.Code, "reason", ce.Text)
				c.events.OnClose(c, ce.Code, ce.Text, ce.Code != websocket.CloseAbnormalClosure)
				return
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read failed", "error", err)
			}
			c.events.OnError(c, err)
			return
		}

		c.events.OnMessage(c, room.Message{Data: data, Text: kind == websocket.TextMessage})
	}
}

// writePump pumps messages from the send buffer to the websocket.
//
// A goroutine running writePump is started for each connection. It is the
// only writer on the connection.
func (c *Conn) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			if err := c.write(msg); err != nil {
				c.markClosed()
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.markClosed()
				return
			}

		case <-c.done:
			if c.drain() {
				c.writeClose()
			}
			return
		}
	}
}

func (c *Conn) write(msg room.Message) error {
	kind := websocket.BinaryMessage
	if msg.Text {
		kind = websocket.TextMessage
	}
	c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
	if err := c.ws.WriteMessage(kind, msg.Data); err != nil {
		c.logger.Debug("websocket write failed", "error", err)
		return err
	}
	return nil
}

// drain writes every message Send accepted before the connection closed.
// Send refuses new messages once done is closed, so the buffer only
// shrinks. It reports false when the socket failed along the way.
func (c *Conn) drain() bool {
	for {
		select {
		case msg := <-c.send:
			if err := c.write(msg); err != nil {
				return false
			}
		default:
			return true
		}
	}
}

// writeClose sends the requested close frame, if any, and gives the remote
// side CloseGrace to answer before the socket is torn down.
func (c *Conn) writeClose() {
	c.mu.RLock()
	frame := c.frame
	c.mu.RUnlock()

	if frame.code == 0 {
		return
	}

	msg := websocket.FormatCloseMessage(frame.code, frame.reason)
	if err := c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.cfg.WriteWait)); err != nil {
		c.logger.Debug("write close frame", "error", err)
		return
	}

	select {
	case <-c.readDone:
	case <-time.After(c.cfg.CloseGrace):
	}
}
