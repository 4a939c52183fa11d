package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/BioHazard786/relayroom/internal/config"
	"github.com/BioHazard786/relayroom/internal/directory"
	"github.com/BioHazard786/relayroom/internal/room"
	"github.com/BioHazard786/relayroom/internal/transport"
	"github.com/BioHazard786/relayroom/internal/version"
)

// Server is the front door: it validates room names and hands relay
// requests to the directory.
type Server struct {
	dir       *directory.Directory
	upgrader  *websocket.Upgrader
	transport transport.Config
	logger    *slog.Logger
}

// StatsResponse is the body of GET /api/stats.
type StatsResponse struct {
	Version string `json:"version"`
	directory.Stats
}

// New creates a Server backed by dir.
func New(cfg *config.Config, dir *directory.Directory, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		dir:       dir,
		upgrader:  newUpgrader(cfg.WebSocket),
		transport: cfg.Transport(),
		logger:    logger.With("component", "server"),
	}
}

func newUpgrader(cfg config.WebSocketConfig) *websocket.Upgrader {
	origins := slices.Clone(cfg.AllowedOrigins)
	return &websocket.Upgrader{
		ReadBufferSize:   cfg.ReadBufferSize,
		WriteBufferSize:  cfg.WriteBufferSize,
		HandshakeTimeout: cfg.HandshakeTimeout,

		// No configured origins means any origin may connect.
		CheckOrigin: func(r *http.Request) bool {
			if len(origins) == 0 {
				return true
			}
			return slices.Contains(origins, r.Header.Get("Origin"))
		},
	}
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/", s.handleAPI)

	return Chain(mux,
		NewRequestLogger(s.logger),
		NewRecoverer(s.logger, s.upgrader),
	)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Relay server is running."))
}

// Health Check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Relay server is healthy."))
}

// handleAPI dispatches /api/room/<name>/<rest...> and /api/stats.
func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	// Split the escaped path so an encoded "/" stays inside the room name.
	path := strings.Split(strings.TrimPrefix(r.URL.EscapedPath(), "/api/"), "/")

	switch path[0] {
	case "room":
		if len(path) < 2 || path[1] == "" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		name, err := url.PathUnescape(path[1])
		if err != nil {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		id, err := directory.Resolve(name)
		if err != nil {
			http.Error(w, "Name too long", http.StatusNotFound)
			return
		}
		s.serveRoom(w, r, id, "/"+strings.Join(path[2:], "/"))

	case "stats":
		s.handleStats(w, r)

	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(StatsResponse{
		Version: version.Version,
		Stats:   s.dir.Stats(),
	}); err != nil {
		s.logger.Warn("write stats", slog.Any("error", err))
	}
}

// reject answers a refused relay request with its fixed status and reason.
func reject(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, room.ErrNotAWebSocketUpgrade):
		http.Error(w, "expected websocket", http.StatusBadRequest)
	case errors.Is(err, room.ErrRoomFull):
		http.Error(w, "Room is full.", http.StatusTooManyRequests)
	case errors.Is(err, room.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	default:
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
