package config

import (
	"time"

	"github.com/BioHazard786/relayroom/internal/directory"
	"github.com/BioHazard786/relayroom/internal/transport"
)

// Config is the relay server configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Rooms     RoomsConfig     `mapstructure:"rooms"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"readTimeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

// WebSocketConfig configures upgrades and per-connection pumps.
type WebSocketConfig struct {
	ReadBufferSize   int           `mapstructure:"readBufferSize"`
	WriteBufferSize  int           `mapstructure:"writeBufferSize"`
	HandshakeTimeout time.Duration `mapstructure:"handshakeTimeout"`
	AllowedOrigins   []string      `mapstructure:"allowedOrigins"` // empty allows any origin
	MaxMessageSize   int64         `mapstructure:"maxMessageSize"`
	SendBuffer       int           `mapstructure:"sendBuffer"`
	WriteWait        time.Duration `mapstructure:"writeWait"`
	PongWait         time.Duration `mapstructure:"pongWait"`
	CloseGrace       time.Duration `mapstructure:"closeGrace"`
}

// RoomsConfig controls room hibernation.
type RoomsConfig struct {
	IdleTimeout   time.Duration `mapstructure:"idleTimeout"`
	SweepInterval time.Duration `mapstructure:"sweepInterval"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" or "json"
}

// Transport converts the websocket settings for the transport package.
func (c *Config) Transport() transport.Config {
	return transport.Config{
		WriteWait:      c.WebSocket.WriteWait,
		PongWait:       c.WebSocket.PongWait,
		MaxMessageSize: c.WebSocket.MaxMessageSize,
		SendBuffer:     c.WebSocket.SendBuffer,
		CloseGrace:     c.WebSocket.CloseGrace,
	}
}

// Directory converts the room settings for the directory package.
func (c *Config) Directory() directory.Config {
	return directory.Config{
		IdleTimeout:   c.Rooms.IdleTimeout,
		SweepInterval: c.Rooms.SweepInterval,
	}
}
