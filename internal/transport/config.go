package transport

import "time"

// Default values for Config fields left at zero.
const (
	// Time allowed to write a message to the peer.
	DefaultWriteWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	DefaultPongWait = 60 * time.Second

	// Maximum message size allowed from peer.
	DefaultMaxMessageSize = 64 * 1024

	// Outbound messages queued per connection before Send fails.
	DefaultSendBuffer = 256

	// Time given to the remote side to answer our close frame.
	DefaultCloseGrace = time.Second
)

// Config tunes a websocket connection.
type Config struct {
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration // must be less than PongWait
	MaxMessageSize int64
	SendBuffer     int
	CloseGrace     time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.WriteWait <= 0 {
		c.WriteWait = DefaultWriteWait
	}
	if c.PongWait <= 0 {
		c.PongWait = DefaultPongWait
	}
	if c.PingPeriod <= 0 || c.PingPeriod >= c.PongWait {
		c.PingPeriod = (c.PongWait * 9) / 10
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = DefaultMaxMessageSize
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = DefaultSendBuffer
	}
	if c.CloseGrace <= 0 {
		c.CloseGrace = DefaultCloseGrace
	}
	return c
}
