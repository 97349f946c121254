// Package config loads bankflow settings from YAML. All fields are
// optional; zero values fall back to the reference behavior.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rpatil/bankflow/pkg/api"
)

// Config is the on-disk configuration.
type Config struct {
	// MaxPINAttempts is the lockout threshold. Default 3.
	MaxPINAttempts int `yaml:"max_pin_attempts"`

	// ReferencePIN is the PIN the simulated gateway accepts. Default "1234".
	ReferencePIN string `yaml:"reference_pin"`

	// Latencies are the simulated round-trip delays, in milliseconds.
	Latencies LatenciesMS `yaml:"latencies_ms"`

	// HTTP configures the reference HTTP host.
	HTTP HTTPConfig `yaml:"http"`

	// Redis configures the optional Redis session store. An empty Addr
	// means "not used".
	Redis RedisConfig `yaml:"redis"`
}

// LatenciesMS mirrors api.Latencies with millisecond integers, which read
// better in YAML than duration strings.
type LatenciesMS struct {
	SendOTP        int `yaml:"send_otp"`
	VerifyOTP      int `yaml:"verify_otp"`
	VerifyPIN      int `yaml:"verify_pin"`
	FetchBalance   int `yaml:"fetch_balance"`
	SubmitTransfer int `yaml:"submit_transfer"`
}

// HTTPConfig configures the HTTP host.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// RedisConfig configures the Redis session store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTLHours int    `yaml:"ttl_hours"`
}

// Default returns the reference configuration.
func Default() Config {
	lat := api.DefaultLatencies()
	return Config{
		MaxPINAttempts: 3,
		ReferencePIN:   "1234",
		Latencies: LatenciesMS{
			SendOTP:        int(lat.SendOTP / time.Millisecond),
			VerifyOTP:      int(lat.VerifyOTP / time.Millisecond),
			VerifyPIN:      int(lat.VerifyPIN / time.Millisecond),
			FetchBalance:   int(lat.FetchBalance / time.Millisecond),
			SubmitTransfer: int(lat.SubmitTransfer / time.Millisecond),
		},
		HTTP: HTTPConfig{Addr: ":8080"},
	}
}

// Load reads path and overlays it on Default. A missing file is not an
// error: the defaults are returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// EngineLatencies converts the millisecond values into api.Latencies.
func (c Config) EngineLatencies() api.Latencies {
	return api.Latencies{
		SendOTP:        time.Duration(c.Latencies.SendOTP) * time.Millisecond,
		VerifyOTP:      time.Duration(c.Latencies.VerifyOTP) * time.Millisecond,
		VerifyPIN:      time.Duration(c.Latencies.VerifyPIN) * time.Millisecond,
		FetchBalance:   time.Duration(c.Latencies.FetchBalance) * time.Millisecond,
		SubmitTransfer: time.Duration(c.Latencies.SubmitTransfer) * time.Millisecond,
	}
}
