package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/BioHazard786/relayroom/internal/directory"
	"github.com/BioHazard786/relayroom/internal/room"
	"github.com/BioHazard786/relayroom/internal/transport"
)

// RelayPath is the only path a room serves.
const RelayPath = "/websocket"

// checkRelayRequest validates a request forwarded to a room before any
// upgrade is attempted.
func checkRelayRequest(r *http.Request, path string) error {
	if path != RelayPath {
		return room.ErrNotFound
	}
	if !websocket.IsWebSocketUpgrade(r) {
		return room.ErrNotAWebSocketUpgrade
	}
	return nil
}

// serveRoom admits the request into room id. The upgrade runs inside
// Admit, so the room decides before the handshake completes; the pumps
// start only once the connection is registered.
func (s *Server) serveRoom(w http.ResponseWriter, r *http.Request, id directory.ID, path string) {
	if err := checkRelayRequest(r, path); err != nil {
		reject(w, err)
		return
	}

	logger := s.logger.With("room", id.Short())

	var (
		conn *transport.Conn
		err  error
	)
	s.dir.Do(id, func(rm *room.Room) {
		_, err = rm.Admit(func() (room.Conn, error) {
			ws, uerr := s.upgrader.Upgrade(w, r, nil)
			if uerr != nil {
				return nil, uerr
			}
			conn = transport.NewConn(ws, s.transport, s.dir.Events(id), logger)
			s.dir.Attach(id, conn)
			return conn, nil
		})
	})

	switch {
	case errors.Is(err, room.ErrRoomFull):
		logger.Info("room full, rejecting", slog.String("remote", r.RemoteAddr))
		reject(w, err)
	case err != nil:
		// The upgrader has already answered the client.
		logger.Warn("upgrade failed", slog.Any("error", err))
	default:
		conn.Start()
	}
}
