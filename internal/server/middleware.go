package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gorilla/websocket"
)

// Close sent on the best-effort socket opened for a failed upgrade.
const (
	closeSetupFailed  = websocket.CloseInternalServerErr
	setupFailedReason = "Uncaught exception during session setup"
)

type Middleware func(http.Handler) http.Handler

// Chain applies middlewares to h. The first middleware in the list is the
// outermost one and sees the request first.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// NewRequestLogger logs each incoming request.
func NewRequestLogger(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("http request",
				slog.String("method", r.Method),
				slog.String("uri", r.RequestURI),
				slog.String("remote", r.RemoteAddr),
				slog.Bool("upgrade", websocket.IsWebSocketUpgrade(r)),
				slog.Duration("elapsed", time.Since(start)),
			)
		})
	}
}

// diagnostic is the payload sent to a client whose upgrade panicked.
type diagnostic struct {
	Error string `json:"error"`
}

// NewRecoverer is the single fault barrier for request handling. A panic
// anywhere below it becomes a failure response and the server carries on.
// Upgrade requests get a socket that carries the diagnostic and is closed
// straight away; other requests get a 500 with the diagnostic as body.
func NewRecoverer(logger *slog.Logger, upgrader *websocket.Upgrader) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				stack := fmt.Sprintf("%v\n%s", rec, debug.Stack())
				logger.Error("uncaught panic while handling request",
					slog.String("uri", r.RequestURI),
					slog.Any("panic", rec),
				)

				if websocket.IsWebSocketUpgrade(r) {
					if err := sendDiagnostic(w, r, upgrader, stack); err != nil {
						logger.Warn("could not deliver diagnostic", slog.Any("error", err))
					}
					return
				}
				http.Error(w, stack, http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func sendDiagnostic(w http.ResponseWriter, r *http.Request, upgrader *websocket.Upgrader, stack string) error {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("upgrade: %w", err)
	}
	defer ws.Close()

	deadline := time.Now().Add(time.Second)
	ws.SetWriteDeadline(deadline)
	werr := ws.WriteJSON(diagnostic{Error: stack})
	cerr := ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(closeSetupFailed, setupFailedReason), deadline)
	return errors.Join(werr, cerr)
}
