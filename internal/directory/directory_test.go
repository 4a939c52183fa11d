package directory

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/BioHazard786/relayroom/internal/room"
)

type stubConn struct {
	id string

	mu     sync.Mutex
	sent   [][]byte
	closed []string
}

func (s *stubConn) ID() string { return s.id }

func (s *stubConn) Send(msg room.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg.Data)
	return nil
}

func (s *stubConn) Close(code int, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = append(s.closed, reason)
	return nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestDirectory(t *testing.T) (*Directory, *clock) {
	t.Helper()
	clk := &clock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	d := New(Config{IdleTimeout: time.Minute}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	d.now = clk.Now
	return d, clk
}

func admit(t *testing.T, d *Directory, id ID, c room.Conn) {
	t.Helper()
	var err error
	d.Do(id, func(r *room.Room) {
		_, err = r.Admit(func() (room.Conn, error) {
			d.Attach(id, c)
			return c, nil
		})
	})
	if err != nil {
		t.Fatalf("admit %s: %v", c.ID(), err)
	}
}

func TestResolve(t *testing.T) {
	hexID := strings.Repeat("ab", 32)

	tests := []struct {
		name    string
		input   string
		want    ID
		wantErr error
	}{
		{name: "global id", input: hexID, want: ID(hexID)},
		{name: "short name", input: "abc", want: "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{name: "max length name", input: strings.Repeat("x", MaxNameLength)},
		{name: "uppercase hex is a name", input: strings.ToUpper(hexID), wantErr: ErrNameTooLong},
		{name: "too long", input: strings.Repeat("x", MaxNameLength+1), wantErr: ErrNameTooLong},
		{name: "multibyte name counts characters", input: strings.Repeat("猫", 20)},
		{name: "multibyte max length", input: strings.Repeat("é", MaxNameLength)},
		{name: "multibyte too long", input: strings.Repeat("é", MaxNameLength+1), wantErr: ErrNameTooLong},
		{name: "empty", input: "", wantErr: ErrNameEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if len(got) != 64 {
				t.Errorf("Resolve() = %q, want 64 hex chars", got)
			}
			if tt.want != "" && got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveIsStable(t *testing.T) {
	a, _ := Resolve("lobby")
	b, _ := Resolve("lobby")
	c, _ := Resolve("lobby2")
	if a != b {
		t.Error("same name resolved to different ids")
	}
	if a == c {
		t.Error("different names resolved to the same id")
	}
}

func TestDoReusesRoom(t *testing.T) {
	d, _ := newTestDirectory(t)
	id, _ := Resolve("abc")

	var first, second *room.Room
	d.Do(id, func(r *room.Room) { first = r })
	d.Do(id, func(r *room.Room) { second = r })

	if first == nil || first != second {
		t.Error("Do should reuse the active room")
	}
	if s := d.Stats(); s.Rooms != 1 || s.Active != 1 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestHibernatedRoomRecoversPairing(t *testing.T) {
	d, clk := newTestDirectory(t)
	id, _ := Resolve("abc")
	conn1, conn2 := &stubConn{id: "conn1"}, &stubConn{id: "conn2"}

	admit(t, d, id, conn1)
	admit(t, d, id, conn2)

	clk.Advance(2 * time.Minute)
	if hibernated, _ := d.Sweep(); hibernated != 1 {
		t.Fatalf("Sweep() hibernated = %d, want 1", hibernated)
	}
	if s := d.Stats(); s.Hibernating != 1 || s.Connections != 2 {
		t.Fatalf("Stats() = %+v", s)
	}

	d.Do(id, func(r *room.Room) {
		if p, ok := r.Peer(conn1); !ok || p != conn2 {
			t.Errorf("peer of conn1 = %v, want conn2", p)
		}
		if p, ok := r.Peer(conn2); !ok || p != conn1 {
			t.Errorf("peer of conn2 = %v, want conn1", p)
		}
		r.Relay(conn1, room.Message{Data: []byte("hello")})
	})

	conn2.mu.Lock()
	defer conn2.mu.Unlock()
	if len(conn2.sent) != 1 || string(conn2.sent[0]) != "hello" {
		t.Errorf("conn2 received %q", conn2.sent)
	}
}

func TestWokenRoomStillEnforcesCapacity(t *testing.T) {
	d, clk := newTestDirectory(t)
	id, _ := Resolve("abc")
	admit(t, d, id, &stubConn{id: "conn1"})
	admit(t, d, id, &stubConn{id: "conn2"})

	clk.Advance(2 * time.Minute)
	d.Sweep()

	var err error
	d.Do(id, func(r *room.Room) {
		_, err = r.Admit(func() (room.Conn, error) { return &stubConn{id: "conn3"}, nil })
	})
	if !errors.Is(err, room.ErrRoomFull) {
		t.Errorf("Admit() error = %v, want ErrRoomFull", err)
	}
}

func TestSweepRemovesEmptyRooms(t *testing.T) {
	d, clk := newTestDirectory(t)
	id, _ := Resolve("abc")
	conn1 := &stubConn{id: "conn1"}
	admit(t, d, id, conn1)

	d.Do(id, func(r *room.Room) { r.Disconnect(conn1, "closed") })
	d.Detach(id, conn1)

	if _, removed := d.Sweep(); removed != 0 {
		t.Fatal("a recently used room must not be removed")
	}

	clk.Advance(2 * time.Minute)
	if _, removed := d.Sweep(); removed != 1 {
		t.Fatalf("Sweep() removed = %d, want 1", removed)
	}
	if s := d.Stats(); s.Rooms != 0 {
		t.Errorf("Stats() = %+v, want no rooms", s)
	}
}

func TestSweepSkipsRoomsInUse(t *testing.T) {
	d, clk := newTestDirectory(t)
	id, _ := Resolve("abc")
	admit(t, d, id, &stubConn{id: "conn1"})

	d.Do(id, func(r *room.Room) {
		clk.Advance(2 * time.Minute)
		if hibernated, _ := d.Sweep(); hibernated != 0 {
			t.Error("room hibernated while in use")
		}
	})
}

func TestLiveChannelsKeepsAdmissionOrder(t *testing.T) {
	d, _ := newTestDirectory(t)
	id, _ := Resolve("abc")
	conn1, conn2 := &stubConn{id: "conn1"}, &stubConn{id: "conn2"}
	d.Attach(id, conn1)
	d.Attach(id, conn2)
	d.Attach(id, conn1)

	live := d.LiveChannels(id)
	if len(live) != 2 || live[0] != conn1 || live[1] != conn2 {
		t.Fatalf("LiveChannels() = %v", live)
	}

	d.Detach(id, conn1)
	if live := d.LiveChannels(id); len(live) != 1 || live[0] != conn2 {
		t.Errorf("after Detach LiveChannels() = %v", live)
	}
}
