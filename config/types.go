package config

// Auth configures bearer-token authentication on the RPC endpoint.
type Auth struct {
	Enabled bool `toml:"Enabled"`
	// HMACSecretEnv names the environment variable holding the signing
	// secret. HMACSecret is only used when the variable is unset.
	HMACSecret       string `toml:"HMACSecret,omitempty"`
	HMACSecretEnv    string `toml:"HMACSecretEnv,omitempty"`
	Issuer           string `toml:"Issuer,omitempty"`
	Audience         string `toml:"Audience,omitempty"`
	ClockSkewSeconds int    `toml:"ClockSkewSeconds"`
}

// Mint configures the external NFT mint service. An empty Endpoint leaves
// mint requests pending until an operator resolves them.
type Mint struct {
	Endpoint       string `toml:"Endpoint"`
	TokenEnv       string `toml:"TokenEnv,omitempty"`
	Method         string `toml:"Method"`
	Workers        int    `toml:"Workers"`
	QueueSize      int    `toml:"QueueSize"`
	TimeoutSeconds int    `toml:"TimeoutSeconds"`
	MaxAttempts    int    `toml:"MaxAttempts"`
}

// RateLimit bounds RPC requests per client address. Zero disables it.
// TrustForwarded keys clients by X-Real-IP / X-Forwarded-For and must only be
// set behind a proxy that overwrites those headers.
type RateLimit struct {
	RequestsPerMinute float64 `toml:"RequestsPerMinute"`
	Burst             int     `toml:"Burst"`
	TrustForwarded    bool    `toml:"TrustForwarded"`
}

// Pauses switch modules to read-only.
type Pauses struct {
	Drops  bool `toml:"Drops"`
	Vendor bool `toml:"Vendor"`
}

// Telemetry configures the OTLP exporters.
type Telemetry struct {
	Enabled  bool   `toml:"Enabled"`
	Endpoint string `toml:"Endpoint,omitempty"`
	Insecure bool   `toml:"Insecure"`
	// Headers uses the OTEL key=value,key2=value2 form.
	Headers string `toml:"Headers,omitempty"`
	Metrics bool   `toml:"Metrics"`
	Traces  bool   `toml:"Traces"`
}

// Logging controls the structured logger.
type Logging struct {
	Level      string `toml:"Level"`
	File       string `toml:"File,omitempty"`
	MaxSizeMB  int    `toml:"MaxSizeMB"`
	MaxBackups int    `toml:"MaxBackups"`
	MaxAgeDays int    `toml:"MaxAgeDays"`
}
