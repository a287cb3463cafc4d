package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCAddress != ":8545" || cfg.Indexer.Driver != "sqlite" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Indexer.DSN != filepath.Join(cfg.DataDir, "events.db") {
		t.Fatalf("sqlite dsn should default under the data dir, got %q", cfg.Indexer.DSN)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not persisted: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.RateLimit != cfg.RateLimit || reloaded.Auth != cfg.Auth {
		t.Fatalf("persisted config differs: %+v vs %+v", reloaded, cfg)
	}
}

func TestLoadParsesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	contents := `RPCAddress = "127.0.0.1:9000"
DataDir = "/var/lib/seedswap"
StateBackend = "bolt"
GenesisFile = "genesis.yaml"
Environment = "staging"
RPCReadTimeout = 30

[auth]
JWTSecret = "file-secret"
JWTSecretEnv = "SEEDSWAP_TEST_SECRET"
AllowAnonymousReads = false

[rate_limit]
RequestsPerSecond = 5.5
Burst = 11

[log]
Level = "debug"
File = "/var/log/seedswap.log"

[telemetry]
Endpoint = "otel:4318"
Headers = "x-api-key=abc"
Traces = true
SampleRatio = 0.25

[indexer]
Enabled = true
Driver = "postgres"
DSN = "postgres://seed@db/seed"
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCAddress != "127.0.0.1:9000" || cfg.GenesisFile != "genesis.yaml" || cfg.Environment != "staging" {
		t.Fatalf("unexpected top level %+v", cfg)
	}
	if cfg.ReadTimeout() != 30*time.Second || cfg.WriteTimeout() != 15*time.Second {
		t.Fatalf("timeouts not merged with defaults: read=%s write=%s", cfg.ReadTimeout(), cfg.WriteTimeout())
	}
	if cfg.RateLimit.RequestsPerSecond != 5.5 || cfg.RateLimit.Burst != 11 {
		t.Fatalf("unexpected rate limit %+v", cfg.RateLimit)
	}
	if cfg.Log.Level != "debug" || !cfg.Telemetry.Traces || cfg.Telemetry.Metrics {
		t.Fatalf("unexpected log/telemetry %+v %+v", cfg.Log, cfg.Telemetry)
	}
	if cfg.Telemetry.SampleRatio != 0.25 || cfg.MetricInterval() != 15*time.Second {
		t.Fatalf("unexpected sampling %v / %s", cfg.Telemetry.SampleRatio, cfg.MetricInterval())
	}
	if cfg.Indexer.DSN != "postgres://seed@db/seed" {
		t.Fatalf("unexpected dsn %q", cfg.Indexer.DSN)
	}
	if cfg.StateBackend != "bolt" || cfg.StatePath() != filepath.Join("/var/lib/seedswap", "state.bolt") {
		t.Fatalf("unexpected state path %s", cfg.StatePath())
	}

	t.Setenv("SEEDSWAP_TEST_SECRET", "")
	if cfg.JWTSecretValue() != "file-secret" {
		t.Fatalf("expected file secret when env is empty")
	}
	t.Setenv("SEEDSWAP_TEST_SECRET", "env-secret")
	if cfg.JWTSecretValue() != "env-secret" {
		t.Fatalf("expected env secret to win")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"unknown key":       "RPCAdress = \":1\"\n",
		"bad driver":        "[indexer]\nEnabled = true\nDriver = \"mysql\"\n",
		"postgres no dsn":   "[indexer]\nEnabled = true\nDriver = \"postgres\"\n",
		"burst missing":     "[rate_limit]\nRequestsPerSecond = 3.0\nBurst = 0\n",
		"negative timeout":  "RPCIdleTimeout = -1\n",
		"empty rpc address": "RPCAddress = \"\"\n",
		"bad backend":       "StateBackend = \"rocksdb\"\n",
		"sample ratio":      "[telemetry]\nSampleRatio = 1.5\n",
	}
	for name, contents := range cases {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Fatalf("%s: expected error", name)
		} else if !strings.Contains(err.Error(), path) {
			t.Fatalf("%s: error should name the file: %v", name, err)
		}
	}
}
