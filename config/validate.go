package config

import (
	"fmt"
	"strings"
)

// Validate checks values that would otherwise fail at runtime.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RPCAddress) == "" {
		return fmt.Errorf("RPCAddress must be set")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("DataDir must be set")
	}
	switch strings.ToLower(strings.TrimSpace(c.StateBackend)) {
	case "leveldb", "bolt":
	default:
		return fmt.Errorf("StateBackend must be leveldb or bolt, got %q", c.StateBackend)
	}
	for name, v := range map[string]int{
		"RPCReadHeaderTimeout": c.RPCReadHeaderTimeout,
		"RPCReadTimeout":       c.RPCReadTimeout,
		"RPCWriteTimeout":      c.RPCWriteTimeout,
		"RPCIdleTimeout":       c.RPCIdleTimeout,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit: values must not be negative")
	}
	if c.RateLimit.RequestsPerSecond > 0 && c.RateLimit.Burst == 0 {
		return fmt.Errorf("rate_limit: Burst must be positive when RequestsPerSecond is set")
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry: SampleRatio must be between 0 and 1")
	}
	if c.Telemetry.MetricIntervalSeconds < 0 {
		return fmt.Errorf("telemetry: MetricIntervalSeconds must not be negative")
	}
	if c.Indexer.Enabled {
		switch strings.ToLower(strings.TrimSpace(c.Indexer.Driver)) {
		case "sqlite":
		case "postgres":
			if strings.TrimSpace(c.Indexer.DSN) == "" {
				return fmt.Errorf("indexer: DSN required for postgres")
			}
		default:
			return fmt.Errorf("indexer: unsupported driver %q", c.Indexer.Driver)
		}
	}
	return nil
}
