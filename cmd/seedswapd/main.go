package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"seedswap/config"
	"seedswap/core"
	"seedswap/core/genesis"
	"seedswap/crypto"
	"seedswap/indexer"
	"seedswap/observability/logging"
	telemetry "seedswap/observability/otel"
	"seedswap/rpc"
	"seedswap/storage"
)

const (
	genesisPathEnv = "SEEDSWAP_GENESIS"
	shutdownGrace  = 10 * time.Second
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	genesisFlag := flag.String("genesis", "", "Path to a genesis YAML file (overrides SEEDSWAP_GENESIS and config GenesisFile)")
	devOwner := flag.String("dev-owner", "", "DEV ONLY: seed the default sale owned by this address when no genesis file is configured")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.SetupWithOptions("seedswapd", cfg.Environment, logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})

	if err := run(cfg, logger, resolveGenesisPath(*genesisFlag, cfg.GenesisFile), *devOwner); err != nil {
		logger.Error("seedswapd exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, genesisPath, devOwner string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    "seedswapd",
		Environment:    cfg.Environment,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		Headers:        telemetry.ParseHeaders(cfg.Telemetry.Headers),
		Metrics:        cfg.Telemetry.Metrics,
		Traces:         cfg.Telemetry.Traces,
		SampleRatio:    cfg.Telemetry.SampleRatio,
		MetricInterval: cfg.MetricInterval(),
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", slog.Any("error", err))
		}
	}()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("prepare data dir: %w", err)
	}
	db, err := storage.Open(cfg.StateBackend, cfg.StatePath())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	node := core.NewNode(db)
	defer node.Close()
	node.SetLogger(logger)

	if cfg.Indexer.Enabled {
		stopIndexer, err := startIndexer(ctx, cfg.Indexer, node, logger)
		if err != nil {
			return err
		}
		defer stopIndexer()
	}

	if err := ensureGenesis(ctx, node, logger, genesisPath, devOwner); err != nil {
		return err
	}

	secret := cfg.JWTSecretValue()
	if secret == "" {
		logger.Warn("no RPC signing secret configured; authenticated methods are unavailable",
			slog.String("env", cfg.Auth.JWTSecretEnv))
	}
	server := rpc.NewServer(node, rpc.ServerConfig{
		JWTSecret:           secret,
		Issuer:              cfg.Auth.Issuer,
		AllowAnonymousReads: cfg.Auth.AllowAnonymousReads,
		RequestsPerSecond:   cfg.RateLimit.RequestsPerSecond,
		Burst:               cfg.RateLimit.Burst,
		ReadHeaderTimeout:   cfg.ReadHeaderTimeout(),
		ReadTimeout:         cfg.ReadTimeout(),
		WriteTimeout:        cfg.WriteTimeout(),
		IdleTimeout:         cfg.IdleTimeout(),
		Logger:              logger,
	})
	listener, err := net.Listen("tcp", cfg.RPCAddress)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.RPCAddress, err)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("rpc shutdown: %w", err)
	}
	return <-serveErr
}

func resolveGenesisPath(flagValue, configValue string) string {
	if trimmed := strings.TrimSpace(flagValue); trimmed != "" {
		return trimmed
	}
	if env := strings.TrimSpace(os.Getenv(genesisPathEnv)); env != "" {
		return env
	}
	return strings.TrimSpace(configValue)
}

func ensureGenesis(ctx context.Context, node *core.Node, logger *slog.Logger, path, devOwner string) error {
	initialised, err := node.Initialised()
	if err != nil {
		return fmt.Errorf("inspect state: %w", err)
	}
	if initialised {
		root, err := node.StateRoot()
		if err != nil {
			return err
		}
		logger.Info("resuming sale", slog.String("state_root", fmt.Sprintf("%x", root)))
		return nil
	}

	var spec *genesis.Spec
	switch {
	case path != "":
		spec, err = genesis.LoadSpec(path)
		if err != nil {
			return fmt.Errorf("load genesis: %w", err)
		}
	case strings.TrimSpace(devOwner) != "":
		owner, err := crypto.ParseAddress(devOwner)
		if err != nil {
			return fmt.Errorf("parse dev owner: %w", err)
		}
		logger.Warn("seeding default development sale", slog.String("owner", crypto.FormatAddress(owner)))
		spec = genesis.DefaultSpec(owner, owner)
	default:
		return errors.New("state is empty and no genesis file was provided")
	}
	if err := node.Genesis(ctx, spec); err != nil {
		return fmt.Errorf("apply genesis: %w", err)
	}
	logger.Info("genesis applied", slog.String("vault", crypto.FormatAddress(node.Vault())))
	return nil
}

func startIndexer(ctx context.Context, cfg config.Indexer, node *core.Node, logger *slog.Logger) (func(), error) {
	db, err := indexer.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	idx, err := indexer.New(db, logger)
	if err != nil {
		return nil, err
	}
	updates, cancel := node.Events().Subscribe(1024)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := idx.Run(ctx, updates); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("indexer stopped", slog.Any("error", err))
		}
	}()
	return func() {
		cancel()
		<-done
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}, nil
}
