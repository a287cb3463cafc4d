package config

// Auth controls how RPC callers prove which address they act for. Tokens are
// HMAC-signed JWTs whose subject is the caller address.
type Auth struct {
	JWTSecret    string `toml:"JWTSecret"`
	JWTSecretEnv string `toml:"JWTSecretEnv"`
	Issuer       string `toml:"Issuer"`
	// AllowAnonymousReads lets query methods through without a token.
	AllowAnonymousReads bool `toml:"AllowAnonymousReads"`
}

// RateLimit bounds requests per client IP.
type RateLimit struct {
	RequestsPerSecond float64 `toml:"RequestsPerSecond"`
	Burst             int     `toml:"Burst"`
}

type Log struct {
	Level      string `toml:"Level"`
	File       string `toml:"File"`
	MaxSizeMB  int    `toml:"MaxSizeMB"`
	MaxBackups int    `toml:"MaxBackups"`
	MaxAgeDays int    `toml:"MaxAgeDays"`
}

// Telemetry mirrors the OTLP exporter options.
type Telemetry struct {
	Endpoint string `toml:"Endpoint"`
	Insecure bool   `toml:"Insecure"`
	Headers  string `toml:"Headers"`
	Metrics  bool   `toml:"Metrics"`
	Traces   bool   `toml:"Traces"`

	// SampleRatio is the share of root spans kept, between 0 and 1.
	SampleRatio           float64 `toml:"SampleRatio"`
	MetricIntervalSeconds int     `toml:"MetricIntervalSeconds"`
}

// Indexer configures the SQL event journal.
type Indexer struct {
	Enabled bool   `toml:"Enabled"`
	Driver  string `toml:"Driver"`
	DSN     string `toml:"DSN"`
}
