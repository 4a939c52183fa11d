package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	logLevels  = []string{"debug", "dev", "development", "info", "warn", "warning", "error", "prod", "production"}
	logFormats = []string{"text", "json"}
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return errors.New("server.address is required")
	}
	if c.Server.ReadTimeout < 0 {
		return errors.New("server.readTimeout must be >= 0")
	}

	if c.WebSocket.ReadBufferSize < 0 || c.WebSocket.WriteBufferSize < 0 {
		return errors.New("websocket buffer sizes must be >= 0")
	}
	if c.WebSocket.HandshakeTimeout <= 0 {
		return errors.New("websocket.handshakeTimeout must be > 0")
	}
	if c.WebSocket.MaxMessageSize < 1 {
		return errors.New("websocket.maxMessageSize must be >= 1")
	}
	if c.WebSocket.SendBuffer < 1 {
		return errors.New("websocket.sendBuffer must be >= 1")
	}
	if c.WebSocket.PongWait <= 0 {
		return errors.New("websocket.pongWait must be > 0")
	}

	if c.Rooms.IdleTimeout <= 0 {
		return errors.New("rooms.idleTimeout must be > 0")
	}
	if c.Rooms.SweepInterval <= 0 {
		return errors.New("rooms.sweepInterval must be > 0")
	}

	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("log.level %q is not one of %s", c.Log.Level, strings.Join(logLevels, ", "))
	}
	if !slices.Contains(logFormats, strings.ToLower(c.Log.Format)) {
		return fmt.Errorf("log.format %q must be text or json", c.Log.Format)
	}
	return nil
}
