package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")              // Current directory
		v.AddConfigPath("./configs")      // Project configs directory
		v.AddConfigPath("./config")       // Alternative config directory
		v.AddConfigPath("/etc/curvecast") // System-wide config
	}

	// Set defaults
	setDefaults(v)

	// Enable environment variable overrides (CURVECAST_QUEUE_TYPE -> queue.type)
	v.SetEnvPrefix("CURVECAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found; use defaults
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	// Server defaults
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.http_port", d.Server.HTTPPort)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.body_limit", d.Server.BodyLimit)

	// Auth defaults
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.api_keys", []string{})

	// Fitter defaults
	v.SetDefault("fitter.max_iterations", d.Fitter.MaxIterations)
	v.SetDefault("fitter.max_evaluations", d.Fitter.MaxEvaluations)
	v.SetDefault("fitter.tolerance", d.Fitter.Tolerance)
	v.SetDefault("fitter.peak_bracket_from", d.Fitter.PeakBracketFrom)
	v.SetDefault("fitter.peak_bracket_to", d.Fitter.PeakBracketTo)

	// Forecast defaults
	v.SetDefault("forecast.default_curve", d.Forecast.DefaultCurve)
	v.SetDefault("forecast.default_mode", d.Forecast.DefaultMode)
	v.SetDefault("forecast.checkpoint_offsets", d.Forecast.CheckpointOffsets)

	// Extrema defaults
	v.SetDefault("extrema.sample_window", d.Extrema.SampleWindow)

	// Cache defaults
	v.SetDefault("cache.type", d.Cache.Type)
	v.SetDefault("cache.url", d.Cache.URL)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.key_prefix", d.Cache.KeyPrefix)
	v.SetDefault("cache.compression", d.Cache.Compression)

	// Queue defaults
	v.SetDefault("queue.type", d.Queue.Type)
	v.SetDefault("queue.url", d.Queue.URL)
	v.SetDefault("queue.job_subject", d.Queue.JobSubject)
	v.SetDefault("queue.result_subject", d.Queue.ResultSubject)
	v.SetDefault("queue.redis_stream", d.Queue.RedisStream)
	v.SetDefault("queue.redis_group", d.Queue.RedisGroup)
	v.SetDefault("queue.kafka_group_id", d.Queue.KafkaGroupID)

	// Worker defaults
	v.SetDefault("worker.enabled", d.Worker.Enabled)
	v.SetDefault("worker.concurrency", d.Worker.Concurrency)
	v.SetDefault("worker.job_timeout", d.Worker.JobTimeout)

	// Logging defaults
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_path", d.Logging.OutputPath)
	v.SetDefault("logging.time_format", d.Logging.TimeFormat)
	v.SetDefault("logging.service", d.Logging.Service)
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration from file or returns default config
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		// Return default configuration
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			HTTPPort:     5555,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			BodyLimit:    8 * 1024 * 1024,
		},
		Fitter: FitterConfig{
			MaxIterations:   10000,
			MaxEvaluations:  50000,
			Tolerance:       1e-9,
			PeakBracketFrom: 0,
			PeakBracketTo:   200,
		},
		Forecast: ForecastConfig{
			DefaultCurve:      "logistic",
			DefaultMode:       "cumulative",
			CheckpointOffsets: []int{7, 14, 28},
		},
		Extrema: ExtremaConfig{
			SampleWindow: 7,
		},
		Cache: CacheConfig{
			Type:        "memory",
			URL:         "redis://localhost:6379",
			TTL:         time.Hour,
			KeyPrefix:   "curvecast:",
			Compression: "snappy",
		},
		Queue: QueueConfig{
			Type:          "memory",
			URL:           "nats://localhost:4222",
			JobSubject:    "curvecast.jobs.fit",
			ResultSubject: "curvecast.jobs.result",
			RedisStream:   "curvecast",
			RedisGroup:    "curvecast-group",
			KafkaGroupID:  "curvecast-workers",
		},
		Worker: WorkerConfig{
			Enabled:     true,
			Concurrency: 2,
			JobTimeout:  2 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
			TimeFormat: "RFC3339",
			Service:    "curvecast",
		},
	}
}
