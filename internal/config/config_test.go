package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfigValidation(t *testing.T) {
	withDefaults := func(mutate func(c *Config)) *Config {
		c := DefaultConfig()
		mutate(c)
		return c
	}

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "default config should be valid",
			config:  DefaultConfig(),
			wantErr: false,
		},
		{
			name:    "invalid http port",
			config:  withDefaults(func(c *Config) { c.Server.HTTPPort = 0 }),
			wantErr: true,
		},
		{
			name:    "zero max iterations",
			config:  withDefaults(func(c *Config) { c.Fitter.MaxIterations = 0 }),
			wantErr: true,
		},
		{
			name:    "tolerance out of range",
			config:  withDefaults(func(c *Config) { c.Fitter.Tolerance = 2 }),
			wantErr: true,
		},
		{
			name: "peak bracket too narrow",
			config: withDefaults(func(c *Config) {
				c.Fitter.PeakBracketFrom = 10
				c.Fitter.PeakBracketTo = 11
			}),
			wantErr: true,
		},
		{
			name:    "invalid forecast mode",
			config:  withDefaults(func(c *Config) { c.Forecast.DefaultMode = "weekly" }),
			wantErr: true,
		},
		{
			name:    "unknown cache type",
			config:  withDefaults(func(c *Config) { c.Cache.Type = "memcached" }),
			wantErr: true,
		},
		{
			name: "redis cache without url",
			config: withDefaults(func(c *Config) {
				c.Cache.Type = "redis"
				c.Cache.URL = ""
			}),
			wantErr: true,
		},
		{
			name:    "unknown compression",
			config:  withDefaults(func(c *Config) { c.Cache.Compression = "zstd" }),
			wantErr: true,
		},
		{
			name:    "unknown queue type",
			config:  withDefaults(func(c *Config) { c.Queue.Type = "rabbitmq" }),
			wantErr: true,
		},
		{
			name:    "same job and result subject",
			config:  withDefaults(func(c *Config) { c.Queue.ResultSubject = c.Queue.JobSubject }),
			wantErr: true,
		},
		{
			name:    "worker without concurrency",
			config:  withDefaults(func(c *Config) { c.Worker.Concurrency = 0 }),
			wantErr: true,
		},
		{
			name: "disabled worker ignores concurrency",
			config: withDefaults(func(c *Config) {
				c.Worker.Enabled = false
				c.Worker.Concurrency = 0
			}),
			wantErr: false,
		},
		{
			name: "invalid logging level",
			config: withDefaults(func(c *Config) {
				c.Logging = LoggingConfig{Level: "invalid", Format: "json"}
			}),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.HTTPPort != 5555 {
		t.Errorf("expected HTTPPort 5555, got %d", cfg.Server.HTTPPort)
	}

	if cfg.Fitter.MaxIterations != 10000 || cfg.Fitter.MaxEvaluations != 50000 {
		t.Errorf("unexpected fitter caps: %+v", cfg.Fitter)
	}

	if cfg.Cache.TTL != time.Hour {
		t.Errorf("expected cache TTL 1h, got %v", cfg.Cache.TTL)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfigHelpers(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.IsProduction() {
		t.Error("default config should be production mode")
	}

	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "console"

	if !cfg.IsDevelopment() {
		t.Error("config with debug/console should be development mode")
	}

	if got := cfg.GetServerAddress(); got != "0.0.0.0:5555" {
		t.Errorf("expected '0.0.0.0:5555', got %s", got)
	}

	opts := cfg.Fitter.Options()
	if opts.MaxIterations != 10000 || opts.Tolerance != 1e-9 {
		t.Errorf("unexpected fitter options: %+v", opts)
	}

	if b := cfg.Fitter.Bracket(); b.From != 0 || b.To != 200 {
		t.Errorf("unexpected bracket: %+v", b)
	}

	if !cfg.Cache.CompressionEnabled() {
		t.Error("snappy compression should be enabled by default")
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  http_port: 7000
fitter:
  max_iterations: 500
forecast:
  default_curve: gompertz
  checkpoint_offsets: [3, 10]
queue:
  type: nats
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("CURVECAST_LOGGING_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.HTTPPort != 7000 {
		t.Errorf("expected http_port 7000, got %d", cfg.Server.HTTPPort)
	}
	if cfg.Fitter.MaxIterations != 500 {
		t.Errorf("expected max_iterations 500, got %d", cfg.Fitter.MaxIterations)
	}
	if cfg.Fitter.MaxEvaluations != 50000 {
		t.Errorf("expected default max_evaluations, got %d", cfg.Fitter.MaxEvaluations)
	}
	if cfg.Forecast.DefaultCurve != "gompertz" {
		t.Errorf("expected gompertz, got %s", cfg.Forecast.DefaultCurve)
	}
	if len(cfg.Forecast.CheckpointOffsets) != 2 || cfg.Forecast.CheckpointOffsets[1] != 10 {
		t.Errorf("unexpected checkpoint offsets: %v", cfg.Forecast.CheckpointOffsets)
	}
	if cfg.Queue.Type != "nats" || cfg.Queue.JobSubject != "curvecast.jobs.fit" {
		t.Errorf("unexpected queue config: %+v", cfg.Queue)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected env override of logging level, got %s", cfg.Logging.Level)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("fitter:\n  tolerance: 5\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected validation error")
	}

	cfg := LoadOrDefault(path)
	if cfg.Fitter.Tolerance != 1e-9 {
		t.Errorf("expected default config on error, got tolerance %v", cfg.Fitter.Tolerance)
	}
}
