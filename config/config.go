package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	RPCAddress           string `toml:"RPCAddress"`
	DataDir              string `toml:"DataDir"`
	StateBackend         string `toml:"StateBackend"`
	GenesisFile          string `toml:"GenesisFile"`
	Environment          string `toml:"Environment"`
	RPCReadHeaderTimeout int    `toml:"RPCReadHeaderTimeout"`
	RPCReadTimeout       int    `toml:"RPCReadTimeout"`
	RPCWriteTimeout      int    `toml:"RPCWriteTimeout"`
	RPCIdleTimeout       int    `toml:"RPCIdleTimeout"`

	Auth      Auth      `toml:"auth"`
	RateLimit RateLimit `toml:"rate_limit"`
	Log       Log       `toml:"log"`
	Telemetry Telemetry `toml:"telemetry"`
	Indexer   Indexer   `toml:"indexer"`
}

// Default returns the configuration written on first start.
func Default() *Config {
	return &Config{
		RPCAddress:           ":8545",
		DataDir:              "./seedswap-data",
		StateBackend:         "leveldb",
		Environment:          "local",
		RPCReadHeaderTimeout: 5,
		RPCReadTimeout:       15,
		RPCWriteTimeout:      15,
		RPCIdleTimeout:       60,
		Auth: Auth{
			JWTSecretEnv:        "SEEDSWAP_JWT_SECRET",
			Issuer:              "seedswap",
			AllowAnonymousReads: true,
		},
		RateLimit: RateLimit{RequestsPerSecond: 20, Burst: 40},
		Log:       Log{Level: "info"},
		Telemetry: Telemetry{SampleRatio: 1, MetricIntervalSeconds: 15},
		Indexer:   Indexer{Enabled: true, Driver: "sqlite"},
	}
}

// Load loads the configuration from the given path. A missing file is
// created with defaults.
func Load(path string) (*Config, error) {
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
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Indexer.DSN) == "" && strings.EqualFold(c.Indexer.Driver, "sqlite") {
		c.Indexer.DSN = filepath.Join(c.DataDir, "events.db")
	}
	if strings.TrimSpace(c.StateBackend) == "" {
		c.StateBackend = "leveldb"
	}
	if strings.TrimSpace(c.Log.Level) == "" {
		c.Log.Level = "info"
	}
	if c.Telemetry.MetricIntervalSeconds == 0 {
		c.Telemetry.MetricIntervalSeconds = 15
	}
}

// JWTSecretValue resolves the signing secret, preferring the environment
// variable when one is configured and set.
func (c *Config) JWTSecretValue() string {
	if env := strings.TrimSpace(c.Auth.JWTSecretEnv); env != "" {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	return strings.TrimSpace(c.Auth.JWTSecret)
}

// StatePath is where the ledger state lives inside DataDir.
func (c *Config) StatePath() string {
	if strings.EqualFold(strings.TrimSpace(c.StateBackend), "bolt") {
		return filepath.Join(c.DataDir, "state.bolt")
	}
	return filepath.Join(c.DataDir, "state")
}

func seconds(v int) time.Duration { return time.Duration(v) * time.Second }

func (c *Config) ReadHeaderTimeout() time.Duration { return seconds(c.RPCReadHeaderTimeout) }
func (c *Config) ReadTimeout() time.Duration       { return seconds(c.RPCReadTimeout) }
func (c *Config) WriteTimeout() time.Duration      { return seconds(c.RPCWriteTimeout) }
func (c *Config) IdleTimeout() time.Duration       { return seconds(c.RPCIdleTimeout) }

// MetricInterval is how often OTLP metrics are pushed.
func (c *Config) MetricInterval() time.Duration { return seconds(c.Telemetry.MetricIntervalSeconds) }

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := Default()
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
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
