package cache

import (
	"fmt"
	"strings"
	"time"

	"github.com/soltixdb/curvecast/internal/compression"
	"github.com/soltixdb/curvecast/internal/config"
	"github.com/soltixdb/curvecast/internal/utils"
)

// sweepInterval is how often the memory backend drops expired entries
const sweepInterval = time.Minute

// NewCache creates a backend based on configuration
// Default is memory if type is not specified
func NewCache(cfg config.CacheConfig) (Cache, error) {
	cacheType := utils.CacheType(strings.ToLower(cfg.Type))
	if cacheType == "" {
		cacheType = utils.CacheTypeMemory
	}

	switch cacheType {
	case utils.CacheTypeMemory:
		return NewMemoryCache(sweepInterval), nil

	case utils.CacheTypeRedis:
		return NewRedisCache(RedisConfig{
			URL:      cfg.URL,
			Password: cfg.Password,
			DB:       cfg.DB,
		})

	default:
		return nil, fmt.Errorf("unsupported cache type: %s (supported: memory, redis)", cacheType)
	}
}

// NewStoreFromConfig builds the backend and wraps it in a Store
func NewStoreFromConfig(cfg config.CacheConfig) (*Store, error) {
	algo, err := compression.ParseAlgorithm(cfg.Compression)
	if err != nil {
		return nil, err
	}
	compressor, err := compression.GetCompressor(algo)
	if err != nil {
		return nil, err
	}

	backend, err := NewCache(cfg)
	if err != nil {
		return nil, err
	}
	return NewStore(backend, compressor, cfg.KeyPrefix, cfg.TTL), nil
}
