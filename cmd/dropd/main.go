package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"dropchain/config"
	"dropchain/core"
	"dropchain/core/genesis"
	"dropchain/integrations/nftmint"
	"dropchain/observability/logging"
	telemetry "dropchain/observability/otel"
	"dropchain/rpc"
	"dropchain/storage"
)

const genesisPathEnv = "DROPCHAIN_GENESIS"

type envLookupFunc func(string) (string, bool)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	genesisFlag := flag.String("genesis", "", "Path to a genesis JSON or YAML file (overrides DROPCHAIN_GENESIS and config GenesisFile)")
	flag.Parse()

	if err := run(*configFile, *genesisFlag); err != nil {
		fmt.Fprintf(os.Stderr, "dropd: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile, genesisFlag string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.Setup("dropd", cfg.Environment, logging.Options{
		Level:      logging.ParseLevel(cfg.Logging.Level),
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName: "dropd",
		Environment: cfg.Environment,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		Headers:     telemetry.ParseHeaders(cfg.Telemetry.Headers),
		Metrics:     cfg.Telemetry.Enabled && cfg.Telemetry.Metrics,
		Traces:      cfg.Telemetry.Enabled && cfg.Telemetry.Traces,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			logger.Warn("telemetry shutdown failed", slog.Any("error", err))
		}
	}()

	var spec *genesis.GenesisSpec
	if path := resolveGenesisPath(genesisFlag, cfg.GenesisFile, os.LookupEnv); path != "" {
		spec, err = genesis.LoadGenesisSpec(path)
		if err != nil {
			return err
		}
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	node, err := core.NewNode(db, spec)
	if err != nil {
		return err
	}
	node.SetLogger(logger)
	node.SetPauses(cfg.Pauses.View())
	logger.Info("state opened", slog.String("root", node.StateRoot().Hex()), slog.String("dataDir", cfg.DataDir))

	if endpoint := strings.TrimSpace(cfg.Mint.Endpoint); endpoint != "" {
		client, err := nftmint.Dial(ctx, endpoint, cfg.Mint.Token(),
			nftmint.WithMethod(cfg.Mint.Method),
			nftmint.WithRetryPolicy(cfg.Mint.MaxAttempts, 0, 0),
		)
		if err != nil {
			return err
		}
		defer client.Close()
		dispatcher := core.NewMintDispatcher(client, core.MintConfig{
			Workers:   cfg.Mint.Workers,
			QueueSize: cfg.Mint.QueueSize,
			Timeout:   cfg.Mint.Timeout(),
		}, logger)
		if err := node.StartMinting(ctx, dispatcher); err != nil {
			return fmt.Errorf("start minting: %w", err)
		}
		defer node.StopMinting()
		logger.Info("mint dispatcher started", slog.String("endpoint", endpoint))
	} else {
		logger.Warn("no mint endpoint configured; NFT claims wait for drop_resolveMint")
	}

	server, err := rpc.NewServer(node, rpc.ServerConfig{
		Auth: rpc.AuthConfig{
			Enabled:    cfg.Auth.Enabled,
			HMACSecret: cfg.Auth.JWTSecret(),
			Issuer:     cfg.Auth.Issuer,
			Audience:   cfg.Auth.Audience,
			ClockSkew:  cfg.Auth.ClockSkew(),
		},
		RateLimit: rpc.RateLimitConfig{
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
			Burst:             cfg.RateLimit.Burst,
			TrustForwarded:    cfg.RateLimit.TrustForwarded,
		},
	}, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.RPCAddress,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("JSON-RPC server listening", slog.String("addr", cfg.RPCAddress))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("rpc server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace())
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("rpc server shutdown incomplete", slog.Any("error", err))
	}
	return nil
}

// resolveGenesisPath picks the genesis file: the CLI flag, then the
// environment, then the config. An empty result means no genesis is applied,
// which is only meaningful when the data directory already holds state.
func resolveGenesisPath(cliPath, cfgPath string, lookup envLookupFunc) string {
	if trimmed := strings.TrimSpace(cliPath); trimmed != "" {
		return trimmed
	}
	if lookup != nil {
		if value, ok := lookup(genesisPathEnv); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return strings.TrimSpace(cfgPath)
}
