package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/geolog-mcp/internal/cascade"
	"github.com/dshills/geolog-mcp/internal/config"
	"github.com/dshills/geolog-mcp/internal/httpapi"
	"github.com/dshills/geolog-mcp/internal/logger"
	"github.com/dshills/geolog-mcp/internal/mcp"
	"github.com/dshills/geolog-mcp/internal/metrics"
	"github.com/dshills/geolog-mcp/internal/report"
	"github.com/dshills/geolog-mcp/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("Geolog MCP Server\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", storage.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "geolog: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// stdout is reserved for the MCP protocol; the logger writes to stderr
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	log.Info("geolog mcp server starting", "version", version,
		"build_mode", storage.BuildMode, "driver", storage.DriverName)

	dbFile, err := cfg.DBFile()
	if err != nil {
		return err
	}
	store, err := storage.NewSQLiteStorage(dbFile)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()
	log.Info("database opened", "path", dbFile)

	m := metrics.New()
	engine, err := cascade.New(store, cfg.Engine(), cascade.WithLogger(log), cascade.WithObserver(m))
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	reports := report.New(store, cfg.Display(), report.DefaultWorkers, log)

	server, err := mcp.NewServer(engine, reports, log)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 2)
	go func() {
		log.Info("mcp server ready, listening on stdio")
		errChan <- server.Serve(ctx)
	}()

	if cfg.HTTP.Addr != "" {
		api := httpapi.NewServer(engine, reports, httpapi.Options{
			AllowedOrigins: cfg.HTTP.AllowedOrigins,
			Metrics:        m.Handler(),
			Logger:         log,
		})
		go func() {
			if err := api.Run(ctx, cfg.HTTP.Addr); err != nil {
				errChan <- fmt.Errorf("http api: %w", err)
			}
		}()
	}

	// Wait for shutdown signal or error
	select {
	case sig := <-sigChan:
		log.Info("received signal, shutting down", "signal", sig.String())
		cancel()
	case err := <-errChan:
		if err != nil {
			return err
		}
	}

	log.Info("server stopped")
	return nil
}
