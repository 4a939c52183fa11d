package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/BioHazard786/relayroom/internal/directory"
	"github.com/BioHazard786/relayroom/internal/transport"
)

// Default values for optional configuration fields.
const (
	DefaultAddress          = ":8080"
	DefaultReadTimeout      = 10 * time.Second
	DefaultShutdownTimeout  = 10 * time.Second
	DefaultBufferSize       = 64 * 1024
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", DefaultAddress)
	v.SetDefault("server.readTimeout", DefaultReadTimeout)
	v.SetDefault("server.shutdownTimeout", DefaultShutdownTimeout)

	v.SetDefault("websocket.readBufferSize", DefaultBufferSize)
	v.SetDefault("websocket.writeBufferSize", DefaultBufferSize)
	v.SetDefault("websocket.handshakeTimeout", DefaultHandshakeTimeout)
	v.SetDefault("websocket.allowedOrigins", []string{})
	v.SetDefault("websocket.maxMessageSize", transport.DefaultMaxMessageSize)
	v.SetDefault("websocket.sendBuffer", transport.DefaultSendBuffer)
	v.SetDefault("websocket.writeWait", transport.DefaultWriteWait)
	v.SetDefault("websocket.pongWait", transport.DefaultPongWait)
	v.SetDefault("websocket.closeGrace", transport.DefaultCloseGrace)

	v.SetDefault("rooms.idleTimeout", directory.DefaultIdleTimeout)
	v.SetDefault("rooms.sweepInterval", directory.DefaultSweepInterval)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
}
