package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Validate rejects configurations the node cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("DataDir must be set")
	}
	if _, _, err := net.SplitHostPort(c.RPCAddress); err != nil {
		return fmt.Errorf("RPCAddress %q: %w", c.RPCAddress, err)
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging: unknown Level %q", c.Logging.Level)
	}
	if c.Auth.Enabled && c.Auth.JWTSecret() == "" {
		return fmt.Errorf("auth: enabled without a secret (set %s or HMACSecret)", c.Auth.HMACSecretEnv)
	}
	if c.Auth.ClockSkewSeconds < 0 {
		return fmt.Errorf("auth: ClockSkewSeconds must not be negative")
	}
	if endpoint := strings.TrimSpace(c.Mint.Endpoint); endpoint != "" {
		u, err := url.Parse(endpoint)
		if err != nil || u.Host == "" {
			return fmt.Errorf("mint: Endpoint %q is not an absolute URL", endpoint)
		}
		switch u.Scheme {
		case "http", "https", "ws", "wss":
		default:
			return fmt.Errorf("mint: unsupported Endpoint scheme %q", u.Scheme)
		}
	}
	if c.Mint.Workers < 0 || c.Mint.QueueSize < 0 || c.Mint.TimeoutSeconds < 0 || c.Mint.MaxAttempts < 0 {
		return fmt.Errorf("mint: Workers, QueueSize, TimeoutSeconds and MaxAttempts must not be negative")
	}
	if c.RateLimit.RequestsPerMinute < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit: values must not be negative")
	}
	if c.Telemetry.Enabled && strings.TrimSpace(c.Telemetry.Endpoint) == "" {
		return fmt.Errorf("telemetry: Endpoint required when enabled")
	}
	return nil
}
