package config

import (
	"net"
	"strconv"

	"github.com/soltixdb/curvecast/internal/analytics/fitter"
)

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Logging.Level == "debug" && c.Logging.Format == "console"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Logging.Level == "info" && c.Logging.Format == "json"
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.HTTPPort))
}

// Options converts the fitter section into optimizer options
func (c *FitterConfig) Options() fitter.Options {
	return fitter.Options{
		Tolerance:      c.Tolerance,
		MaxIterations:  c.MaxIterations,
		MaxEvaluations: c.MaxEvaluations,
	}
}

// Bracket returns the default peak search range
func (c *FitterConfig) Bracket() fitter.Bracket {
	return fitter.Bracket{From: c.PeakBracketFrom, To: c.PeakBracketTo}
}

// CompressionEnabled reports whether cached payloads are compressed
func (c *CacheConfig) CompressionEnabled() bool {
	return c.Compression == "snappy"
}
