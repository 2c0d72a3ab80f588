package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aigents/relay/internal/config"
	"github.com/aigents/relay/internal/gateway"
	"github.com/aigents/relay/internal/metrics"
	"github.com/aigents/relay/internal/relay"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("relay v%s\n", version)
	case "init":
		path := config.Path()
		if err := config.CreateFromExample(path); err != nil {
			slog.Error("fatal", "error", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", path)
	case "serve":
		if err := serve(); err != nil {
			slog.Error("fatal", "error", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("AIGents Relay - webhook message relay with failover")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  relay serve     Start the relay gateway")
	fmt.Println("  relay init      Write an example config file")
	fmt.Println("  relay version   Show version info")
}

func serve() error {
	// Setup structured logging
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	// Load config
	cfgPath := config.ResolveConfigPath("")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Warn("config not found, using defaults", "path", cfgPath, "error", err)
		cfg = config.DefaultConfig()
	}
	config.Set(cfg)

	slog.Info("relay starting", "version", version, "config", cfgPath)

	// Endpoint registry, shared by the forwarder and prober
	registry, err := relay.NewRegistry(cfg.Webhooks.Endpoints)
	if err != nil {
		return err
	}

	m := metrics.NewRelay()
	m.SetEndpoints(registry.Len())

	forwarder := relay.NewForwarder(registry, cfg.Webhooks.MessageTimeout, m)
	prober := relay.NewProber(registry, cfg.Webhooks.ProbeTimeout)

	// Rebuild the endpoint list when the config file changes
	config.RegisterOnReload(func(c *config.Config) {
		if err := registry.Reload(c.Webhooks.Endpoints); err != nil {
			slog.Warn("endpoint registry reload skipped", "error", err)
			return
		}
		m.SetEndpoints(registry.Len())
	})

	// Start gateway with graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutdown signal received", "signal", sig)
		cancel()
	}()

	go config.Watch(ctx)

	srv := gateway.NewServer(cfg, registry, forwarder, prober, m)
	return srv.Start(ctx)
}
