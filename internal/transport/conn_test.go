package transport

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/BioHazard786/relayroom/internal/room"
)

type recorder struct {
	mu       sync.Mutex
	messages []room.Message
	closes   []int
	errs     []error
	ended    chan struct{}
	echo     bool
}

func newRecorder() *recorder {
	return &recorder{ended: make(chan struct{})}
}

func (r *recorder) OnMessage(c *Conn, msg room.Message) {
	r.mu.Lock()
	r.messages = append(r.messages, msg)
	r.mu.Unlock()
	if r.echo {
		_ = c.Send(msg)
	}
}

func (r *recorder) OnClose(c *Conn, code int, reason string, clean bool) {
	r.mu.Lock()
	r.closes = append(r.closes, code)
	r.mu.Unlock()
	close(r.ended)
}

func (r *recorder) OnError(c *Conn, err error) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
	close(r.ended)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// serve starts a test server that wraps every upgrade in a Conn.
func serve(t *testing.T, cfg Config, events Events, conns chan<- *Conn) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		c := NewConn(ws, cfg, events, quietLogger())
		c.Start()
		if conns != nil {
			conns <- c
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func TestConnPreservesFrameType(t *testing.T) {
	rec := newRecorder()
	rec.echo = true
	srv := serve(t, Config{}, rec, nil)
	ws := dial(t, srv)

	if err := ws.WriteMessage(websocket.TextMessage, []byte("hello")); err != nil {
		t.Fatal(err)
	}
	if err := ws.WriteMessage(websocket.BinaryMessage, []byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, data, err := ws.ReadMessage()
	if err != nil || kind != websocket.TextMessage || string(data) != "hello" {
		t.Fatalf("first echo = %d %q %v", kind, data, err)
	}
	kind, data, err = ws.ReadMessage()
	if err != nil || kind != websocket.BinaryMessage || len(data) != 3 {
		t.Fatalf("second echo = %d %v %v", kind, data, err)
	}
}

func TestConnCloseSendsCodeAndReason(t *testing.T) {
	rec := newRecorder()
	conns := make(chan *Conn, 1)
	srv := serve(t, Config{}, rec, conns)
	ws := dial(t, srv)
	c := <-conns

	if err := c.Close(room.CloseNormal, room.PeerDisconnected); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.Close(room.CloseNormal, "again"); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close() error = %v, want ErrClosed", err)
	}
	if err := c.Send(room.Message{Data: []byte("late")}); !errors.Is(err, ErrClosed) {
		t.Errorf("Send() after close error = %v, want ErrClosed", err)
	}

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := ws.ReadMessage()
	var ce *websocket.CloseError
	if !errors.As(err, &ce) {
		t.Fatalf("read error = %v, want close error", err)
	}
	if ce.Code != room.CloseNormal || ce.Text != room.PeerDisconnected {
		t.Errorf("close = %d %q", ce.Code, ce.Text)
	}

	select {
	case <-rec.ended:
	case <-time.After(3 * time.Second):
		t.Fatal("no terminal event delivered")
	}
}

func TestConnFlushesQueueBeforeClose(t *testing.T) {
	const queued = 50
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		c := NewConn(ws, Config{}, newRecorder(), quietLogger())
		for i := range queued {
			if err := c.Send(room.Message{Data: []byte(strconv.Itoa(i)), Text: true}); err != nil {
				t.Errorf("Send(%d) error = %v", i, err)
			}
		}
		c.Close(room.CloseNormal, room.PeerDisconnected)
		c.Start()
	}))
	t.Cleanup(srv.Close)
	ws := dial(t, srv)

	ws.SetReadDeadline(time.Now().Add(3 * time.Second))
	for i := 0; ; i++ {
		_, data, err := ws.ReadMessage()
		if err != nil {
			var ce *websocket.CloseError
			if !errors.As(err, &ce) || ce.Text != room.PeerDisconnected {
				t.Fatalf("read error = %v, want close", err)
			}
			if i != queued {
				t.Fatalf("received %d of %d queued messages before the close", i, queued)
			}
			return
		}
		if string(data) != strconv.Itoa(i) {
			t.Fatalf("message %d = %q", i, data)
		}
	}
}

func TestConnReportsRemoteClose(t *testing.T) {
	rec := newRecorder()
	srv := serve(t, Config{}, rec, nil)
	ws := dial(t, srv)

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "bye")
	if err := ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)); err != nil {
		t.Fatal(err)
	}

	select {
	case <-rec.ended:
	case <-time.After(2 * time.Second):
		t.Fatal("OnClose not delivered")
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.closes) != 1 || rec.closes[0] != websocket.CloseGoingAway {
		t.Errorf("closes = %v, errs = %v", rec.closes, rec.errs)
	}
}

func TestSendFailsWhenBufferFull(t *testing.T) {
	c := NewConn(nil, Config{SendBuffer: 1}, newRecorder(), quietLogger())

	if err := c.Send(room.Message{Data: []byte("a")}); err != nil {
		t.Fatalf("first Send() error = %v", err)
	}
	if err := c.Send(room.Message{Data: []byte("b")}); !errors.Is(err, ErrBufferFull) {
		t.Errorf("second Send() error = %v, want ErrBufferFull", err)
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{PongWait: 10 * time.Second, PingPeriod: 20 * time.Second}.withDefaults()
	if cfg.PingPeriod != 9*time.Second {
		t.Errorf("PingPeriod = %v, want 9s", cfg.PingPeriod)
	}
	if cfg.SendBuffer != DefaultSendBuffer || cfg.MaxMessageSize != DefaultMaxMessageSize {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}
