package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadClientDefaults(t *testing.T) {
	cfg, err := LoadClient(nil)
	if err != nil {
		t.Fatalf("LoadClient() error = %v", err)
	}
	if cfg.Server != DefaultServerURL || cfg.DialTimeout != DefaultDialTimeout {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadClientPriority(t *testing.T) {
	t.Setenv("RELAYROOM_SERVER", "wss://env.example")
	t.Setenv("RELAYROOM_DIALTIMEOUT", "3s")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("server", DefaultServerURL, "")

	cfg, err := LoadClient(flags)
	if err != nil {
		t.Fatalf("LoadClient() error = %v", err)
	}
	if cfg.Server != "wss://env.example" {
		t.Errorf("Server = %q, want env value when the flag is unset", cfg.Server)
	}
	if cfg.DialTimeout != 3*time.Second {
		t.Errorf("DialTimeout = %v", cfg.DialTimeout)
	}

	if err := flags.Parse([]string{"--server", "ws://flag.example"}); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadClient(flags)
	if err != nil {
		t.Fatalf("LoadClient() error = %v", err)
	}
	if cfg.Server != "ws://flag.example" {
		t.Errorf("Server = %q, want flag value", cfg.Server)
	}
}
