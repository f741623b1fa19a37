package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/soltixdb/curvecast/internal/cache"
	"github.com/soltixdb/curvecast/internal/config"
	"github.com/soltixdb/curvecast/internal/logging"
	"github.com/soltixdb/curvecast/internal/queue"
	"github.com/soltixdb/curvecast/internal/router"
	"github.com/soltixdb/curvecast/internal/utils"
	"github.com/soltixdb/curvecast/internal/worker"
)

var (
	Version   = utils.Version // Injected via ldflags during build
	GitCommit = "unknown"     // Injected via ldflags during build
	BuildTime = "unknown"     // Injected via ldflags during build
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file")
	envFile := flag.String("env-file", ".env", "Optional dotenv file loaded before the configuration")
	flag.Parse()

	// Environment from .env; variables already set win
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", *envFile, err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	logger.Info("Curvecast service starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	// Result cache and job store
	store, err := cache.NewStoreFromConfig(cfg.Cache)
	if err != nil {
		logger.Fatal("Failed to initialize cache", "type", cfg.Cache.Type, "error", err)
	}
	defer func() { _ = store.Close() }()
	logger.Info("Cache initialized", "type", cfg.Cache.Type, "compression", cfg.Cache.Compression, "ttl", cfg.Cache.TTL)

	// Connect to Queue (configurable backend)
	logger.Info("Connecting to Queue", "type", cfg.Queue.Type, "url", cfg.Queue.URL)
	queueClient, err := queue.NewQueue(cfg.Queue)
	if err != nil {
		logger.Fatal("Failed to connect to Queue", "error", err)
	}
	defer func() { _ = queueClient.Close() }()
	logger.Info("Queue connection established")

	// Log authentication status
	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Auth.APIKeys))
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	// Initialize router
	app, h := router.New(logger, store, queueClient, cfg)

	// Start the fit worker in this process when enabled
	var fitWorker *worker.FitWorker
	if cfg.Worker.Enabled {
		fitWorker = worker.New(worker.Config{
			JobSubject:    cfg.Queue.JobSubject,
			ResultSubject: cfg.Queue.ResultSubject,
			Concurrency:   cfg.Worker.Concurrency,
			JobTimeout:    cfg.Worker.JobTimeout,
		}, queueClient, h.JobService(), logger)
		if err := fitWorker.Start(); err != nil {
			logger.Fatal("Failed to start fit worker", "error", err)
		}
	} else {
		logger.Info("Fit worker disabled; jobs wait for an external worker", "subject", cfg.Queue.JobSubject)
	}

	// Start server in goroutine
	go func() {
		addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.HTTPPort))
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), utils.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	if fitWorker != nil {
		fitWorker.Stop()
	}

	logger.Info("Server exited")
}
