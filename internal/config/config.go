package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Fitter   FitterConfig   `mapstructure:"fitter"`
	Forecast ForecastConfig `mapstructure:"forecast"`
	Extrema  ExtremaConfig  `mapstructure:"extrema"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`  // Enable/disable API key authentication
	APIKeys []string `mapstructure:"api_keys"` // List of valid API keys
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`      // Bind address for server (e.g., 0.0.0.0 for all interfaces)
	HTTPPort     int           `mapstructure:"http_port"` // HTTP server port
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	BodyLimit    int           `mapstructure:"body_limit"` // Max request body in bytes
}

// FitterConfig bounds the curve optimizer
type FitterConfig struct {
	MaxIterations   int     `mapstructure:"max_iterations"`
	MaxEvaluations  int     `mapstructure:"max_evaluations"`
	Tolerance       float64 `mapstructure:"tolerance"`         // Relative cost and parameter tolerance
	PeakBracketFrom float64 `mapstructure:"peak_bracket_from"` // Days since day zero
	PeakBracketTo   float64 `mapstructure:"peak_bracket_to"`
}

// ForecastConfig holds forecast defaults applied when a request omits them
type ForecastConfig struct {
	DefaultCurve      string `mapstructure:"default_curve"`      // Curve kind or "auto"
	DefaultMode       string `mapstructure:"default_mode"`       // cumulative, daily
	CheckpointOffsets []int  `mapstructure:"checkpoint_offsets"` // Days after the fit window
}

// ExtremaConfig represents extrema detection configuration
type ExtremaConfig struct {
	SampleWindow int `mapstructure:"sample_window"`
}

// CacheConfig represents forecast/job result cache configuration
type CacheConfig struct {
	Type        string        `mapstructure:"type"` // memory (default), redis
	URL         string        `mapstructure:"url"`  // Redis URL (e.g., redis://localhost:6379)
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	TTL         time.Duration `mapstructure:"ttl"`
	KeyPrefix   string        `mapstructure:"key_prefix"`
	Compression string        `mapstructure:"compression"` // none, snappy
}

// QueueConfig represents message queue configuration
type QueueConfig struct {
	Type     string `mapstructure:"type"`     // Queue type: memory (default), nats, redis, kafka
	URL      string `mapstructure:"url"`      // Queue server URL (e.g., nats://localhost:4222, redis://localhost:6379)
	Username string `mapstructure:"username"` // Optional authentication
	Password string `mapstructure:"password"` // Optional authentication

	JobSubject    string `mapstructure:"job_subject"`    // Subject carrying fit jobs
	ResultSubject string `mapstructure:"result_subject"` // Subject carrying job results

	// Redis-specific options
	RedisDB       int    `mapstructure:"redis_db"`       // Redis database number (default: 0)
	RedisStream   string `mapstructure:"redis_stream"`   // Redis stream prefix (default: "curvecast")
	RedisGroup    string `mapstructure:"redis_group"`    // Redis consumer group (default: "curvecast-group")
	RedisConsumer string `mapstructure:"redis_consumer"` // Redis consumer name (default: hostname)

	// Kafka-specific options
	KafkaBrokers []string `mapstructure:"kafka_brokers"`  // Kafka broker addresses
	KafkaGroupID string   `mapstructure:"kafka_group_id"` // Kafka consumer group ID
}

// WorkerConfig represents background fit worker configuration
type WorkerConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Concurrency int           `mapstructure:"concurrency"` // Jobs processed in parallel
	JobTimeout  time.Duration `mapstructure:"job_timeout"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, UnixMs, Kitchen
	Service    string `mapstructure:"service"`     // service field on every line
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Fitter.Validate(); err != nil {
		return fmt.Errorf("fitter config: %w", err)
	}

	if err := c.Forecast.Validate(); err != nil {
		return fmt.Errorf("forecast config: %w", err)
	}

	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}

	if err := c.Queue.Validate(); err != nil {
		return fmt.Errorf("queue config: %w", err)
	}

	if err := c.Worker.Validate(); err != nil {
		return fmt.Errorf("worker config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}

	if c.BodyLimit < 0 {
		return fmt.Errorf("body_limit cannot be negative")
	}

	return nil
}

// Validate validates fitter configuration
func (c *FitterConfig) Validate() error {
	if c.MaxIterations < 1 {
		return fmt.Errorf("fitter.max_iterations must be at least 1")
	}

	if c.MaxEvaluations < 1 {
		return fmt.Errorf("fitter.max_evaluations must be at least 1")
	}

	if c.Tolerance <= 0 || c.Tolerance >= 1 {
		return fmt.Errorf("fitter.tolerance must be in (0, 1)")
	}

	if c.PeakBracketTo-c.PeakBracketFrom < 2 {
		return fmt.Errorf("fitter.peak_bracket_to must exceed peak_bracket_from by at least 2 days")
	}

	return nil
}

// Validate validates forecast configuration
func (c *ForecastConfig) Validate() error {
	if c.DefaultCurve == "" {
		return fmt.Errorf("forecast.default_curve is required")
	}

	if c.DefaultMode != "cumulative" && c.DefaultMode != "daily" {
		return fmt.Errorf("forecast.default_mode must be 'cumulative' or 'daily'")
	}

	return nil
}

// Validate validates cache configuration
func (c *CacheConfig) Validate() error {
	switch c.Type {
	case "", "memory":
	case "redis":
		if c.URL == "" {
			return fmt.Errorf("cache.url is required for redis")
		}
	default:
		return fmt.Errorf("cache.type must be 'memory' or 'redis'")
	}

	if c.Compression != "" && c.Compression != "none" && c.Compression != "snappy" {
		return fmt.Errorf("cache.compression must be 'none' or 'snappy'")
	}

	if c.TTL < 0 {
		return fmt.Errorf("cache.ttl cannot be negative")
	}

	return nil
}

// Validate validates queue configuration
func (c *QueueConfig) Validate() error {
	switch c.Type {
	case "", "nats", "redis", "kafka", "memory":
	default:
		return fmt.Errorf("queue.type must be one of: nats, redis, kafka, memory")
	}

	if c.JobSubject == "" || c.ResultSubject == "" {
		return fmt.Errorf("queue.job_subject and queue.result_subject are required")
	}

	if c.JobSubject == c.ResultSubject {
		return fmt.Errorf("queue.job_subject and queue.result_subject cannot be the same")
	}

	return nil
}

// Validate validates worker configuration
func (c *WorkerConfig) Validate() error {
	if c.Enabled && c.Concurrency < 1 {
		return fmt.Errorf("worker.concurrency must be at least 1")
	}

	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
