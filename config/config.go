package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	nativecommon "dropchain/native/common"
)

type Config struct {
	RPCAddress           string `toml:"RPCAddress"`
	DataDir              string `toml:"DataDir"`
	GenesisFile          string `toml:"GenesisFile"`
	Environment          string `toml:"Environment"`
	ShutdownGraceSeconds int    `toml:"ShutdownGraceSeconds"`

	Logging   Logging   `toml:"logging"`
	Auth      Auth      `toml:"auth"`
	Mint      Mint      `toml:"mint"`
	RateLimit RateLimit `toml:"rate_limit"`
	Pauses    Pauses    `toml:"pauses"`
	Telemetry Telemetry `toml:"telemetry"`
}

// Default returns the configuration written on first start.
func Default() *Config {
	return &Config{
		RPCAddress:           ":8080",
		DataDir:              "./dropchain-data",
		Environment:          "local",
		ShutdownGraceSeconds: 10,
		Logging:              Logging{Level: "info", MaxSizeMB: 100, MaxBackups: 5, MaxAgeDays: 14},
		Auth:                 Auth{HMACSecretEnv: "DROPCHAIN_RPC_JWT_SECRET", ClockSkewSeconds: 120},
		Mint:                 Mint{Method: "nft_mint", Workers: 4, QueueSize: 256, TimeoutSeconds: 30, MaxAttempts: 3},
		RateLimit:            RateLimit{RequestsPerMinute: 600, Burst: 50},
		Telemetry:            Telemetry{Endpoint: "localhost:4318", Insecure: true, Metrics: true, Traces: true},
	}
}

// Load loads the configuration from the given path, writing the defaults
// there first when the file does not exist.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config path must be provided")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	} else if err != nil {
		return nil, err
	}

	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config file %s has unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := Default()
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// JWTSecret resolves the signing secret, preferring the environment.
func (a Auth) JWTSecret() string {
	if name := strings.TrimSpace(a.HMACSecretEnv); name != "" {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return strings.TrimSpace(a.HMACSecret)
}

func (a Auth) ClockSkew() time.Duration {
	return time.Duration(a.ClockSkewSeconds) * time.Second
}

// Token resolves the mint service bearer token from the environment.
func (m Mint) Token() string {
	if name := strings.TrimSpace(m.TokenEnv); name != "" {
		return strings.TrimSpace(os.Getenv(name))
	}
	return ""
}

func (m Mint) Timeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// View exposes the switches to the native modules.
func (p Pauses) View() nativecommon.StaticPauses {
	return nativecommon.StaticPauses{
		nativecommon.ModuleDrops:  p.Drops,
		nativecommon.ModuleVendor: p.Vendor,
	}
}

func (c *Config) ShutdownGrace() time.Duration {
	if c.ShutdownGraceSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ShutdownGraceSeconds) * time.Second
}
