package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. RELAYROOM_SERVER_ADDRESS.
const EnvPrefix = "RELAYROOM"

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"addr":      "server.address",
	"log-level": "log.level",
}

// Load reads configuration with the following priority:
// 1. Command-line flags that were set explicitly
// 2. Environment variables (RELAYROOM_*)
// 3. The config file (path, or relayroom.yaml in the working directory)
// 4. Defaults
func Load(logger *slog.Logger, path string, flags *pflag.FlagSet) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("relayroom")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		logger.Debug("config file not found, relying on defaults and env vars")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// LoadAndValidate loads config and validates it.
func LoadAndValidate(logger *slog.Logger, path string, flags *pflag.FlagSet) (*Config, error) {
	cfg, err := Load(logger, path, flags)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
