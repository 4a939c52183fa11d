package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultServerURL   = "ws://localhost:8080"
	DefaultDialTimeout = 15 * time.Second
)

// ClientConfig configures the relayroom command-line client.
type ClientConfig struct {
	Server      string        `mapstructure:"server"`
	DialTimeout time.Duration `mapstructure:"dialTimeout"`
}

// LoadClient resolves client settings: the --server flag when set, then
// RELAYROOM_SERVER and RELAYROOM_DIALTIMEOUT, then defaults.
func LoadClient(flags *pflag.FlagSet) (*ClientConfig, error) {
	v := viper.New()
	v.SetDefault("server", DefaultServerURL)
	v.SetDefault("dialTimeout", DefaultDialTimeout)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if f := flags.Lookup("server"); f != nil {
			if err := v.BindPFlag("server", f); err != nil {
				return nil, fmt.Errorf("bind flag server: %w", err)
			}
		}
	}

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse client config: %w", err)
	}
	if cfg.Server == "" {
		return nil, fmt.Errorf("server URL is required")
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	return &cfg, nil
}
