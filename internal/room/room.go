package room

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Room relays messages between at most two connected peers.
//
// Admit, Relay and Disconnect are serialised by one mutex, so no two of
// them interleave their reads and writes of the session table. Rooms share
// no state with each other.
type Room struct {
	mu       sync.Mutex
	sessions table
	logger   *slog.Logger
}

// New creates an empty room.
func New(logger *slog.Logger) *Room {
	if logger == nil {
		logger = slog.Default()
	}
	return &Room{logger: logger}
}

// Recover rebuilds a room from channels that outlived its previous actor.
// Each one becomes a session with no peer, and two survivors are paired
// straight away, so a recovered room is indistinguishable from one that
// reached the same count through Admit.
func Recover(logger *slog.Logger, live []Conn) *Room {
	r := New(logger)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range live {
		if r.sessions.get(c) != nil {
			continue
		}
		if r.sessions.full() {
			r.logger.Warn("dropping surplus channel on recovery", "conn", c.ID())
			if err := c.Close(CloseTryAgainLater, RoomFullCloseMessage); err != nil {
				r.logger.Debug("close surplus channel", "conn", c.ID(), "error", err)
			}
			continue
		}
		r.sessions.insert(c)
	}
	paired := r.sessions.pair()

	r.logger.Debug("room recovered", "sessions", r.sessions.len(), "paired", paired)
	return r
}

// Admit registers a new peer. accept performs the host upgrade and runs
// while the room is locked, so a concurrent admit cannot slip past the
// capacity check. The second admission pairs both sessions before Admit
// returns. Pairing is silent: neither peer is notified.
func (r *Room) Admit(accept Acceptor) (Conn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sessions.full() {
		return nil, ErrRoomFull
	}

	c, err := accept()
	if err != nil {
		return nil, fmt.Errorf("accept connection: %w", err)
	}
	if c == nil {
		return nil, errors.New("accept connection: no channel returned")
	}
	if r.sessions.get(c) != nil {
		return c, nil
	}

	r.sessions.insert(c)
	if r.sessions.pair() {
		r.logger.Info("peers paired", "conn", c.ID())
	} else {
		r.logger.Info("peer admitted", "conn", c.ID())
	}
	return c, nil
}

// Relay forwards msg from src to its peer. A message from a connection with
// no peer is dropped. A failed delivery is never reported to src; the peer
// is treated as disconnected instead.
func (r *Room) Relay(src Conn, msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.sessions.get(src)
	if s == nil || s.Peer == nil {
		return
	}

	peer := s.Peer
	if err := peer.Send(msg); err != nil {
		r.logger.Warn("relay failed, dropping peer",
			"from", src.ID(),
			"to", peer.ID(),
			"error", fmt.Errorf("%w: %w", ErrSendFailed, err),
		)
		if cerr := peer.Close(CloseInternalError, DeliveryFailed); cerr != nil {
			r.logger.Debug("close unreachable peer", "conn", peer.ID(), "error", cerr)
		}
		r.disconnect(peer, "delivery failed")
	}
}

// Disconnect removes c and tears down its peer. It is safe to call more
// than once and for connections the room never admitted.
func (r *Room) Disconnect(c Conn, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disconnect(c, reason)
}

func (r *Room) disconnect(c Conn, reason string) {
	s := r.sessions.remove(c)
	if s == nil {
		return
	}
	r.logger.Info("peer left", "conn", c.ID(), "reason", reason)

	if s.Peer == nil {
		return
	}
	if err := s.Peer.Close(CloseNormal, PeerDisconnected); err != nil {
		r.logger.Debug("close peer", "conn", s.Peer.ID(), "error", err)
	}
	r.sessions.remove(s.Peer)
}

// Len returns the number of sessions.
func (r *Room) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions.len()
}

// Sessions returns a copy of the session table in admission order.
func (r *Room) Sessions() []Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions.sessions()
}

// Peer returns the peer assigned to c, if any.
func (r *Room) Peer(c Conn) (Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.sessions.get(c)
	if s == nil || s.Peer == nil {
		return nil, false
	}
	return s.Peer, true
}
