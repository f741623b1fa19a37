package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/soltixdb/curvecast/internal/cache"
	"github.com/soltixdb/curvecast/internal/config"
	"github.com/soltixdb/curvecast/internal/logging"
	"github.com/soltixdb/curvecast/internal/queue"
	"github.com/soltixdb/curvecast/internal/services"
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

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", *envFile, err)
		os.Exit(1)
	}

	// 1. Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize logger
	if cfg.Logging.Service == "" || cfg.Logging.Service == config.DefaultConfig().Logging.Service {
		cfg.Logging.Service = "curvecast-worker"
	}
	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)

	logger.Info("Fit worker starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	// 3. Job store; must be shared with the API service
	if cfg.Cache.Type == "" || cfg.Cache.Type == string(utils.CacheTypeMemory) {
		logger.Warn("Memory cache is not shared between processes; job records will not reach the API")
	}
	store, err := cache.NewStoreFromConfig(cfg.Cache)
	if err != nil {
		logger.Fatal("Failed to initialize cache", "type", cfg.Cache.Type, "error", err)
	}
	defer func() { _ = store.Close() }()

	// 4. Connect to Queue
	logger.Info("Connecting to Queue", "type", cfg.Queue.Type, "url", cfg.Queue.URL)
	queueClient, err := queue.NewQueue(cfg.Queue)
	if err != nil {
		logger.Fatal("Failed to connect to Queue", "error", err)
	}
	defer func() { _ = queueClient.Close() }()

	// 5. Services
	forecasts := services.NewForecastService(logger, cfg.Fitter, cfg.Forecast, store)
	jobs := services.NewJobService(logger, queueClient, store, forecasts, cfg.Queue.JobSubject)

	// 6. Start worker pool
	concurrency := cfg.Worker.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	fitWorker := worker.New(worker.Config{
		JobSubject:    cfg.Queue.JobSubject,
		ResultSubject: cfg.Queue.ResultSubject,
		Concurrency:   concurrency,
		JobTimeout:    cfg.Worker.JobTimeout,
	}, queueClient, jobs, logger)
	if err := fitWorker.Start(); err != nil {
		logger.Fatal("Failed to start fit worker", "error", err)
	}

	// 7. Wait for shutdown signal
	waitForShutdown(logger)
	fitWorker.Stop()

	logger.Info("Fit worker stopped")
}

// waitForShutdown blocks until an interrupt or SIGTERM arrives
func waitForShutdown(logger *logging.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info("Received shutdown signal", "signal", sig.String())
}
