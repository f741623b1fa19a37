// Package cache stores forecast results and fit job records. Backends hold
// opaque bytes; Store layers JSON encoding, payload compression and key
// prefixing on top of them.
package cache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/soltixdb/curvecast/internal/compression"
)

// Cache is a byte-oriented key/value store with per-entry expiry
type Cache interface {
	// Get returns the value stored under key and whether it was present
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key; ttl <= 0 keeps it until deleted
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key
	Delete(ctx context.Context, key string) error

	// Close releases the backend
	Close() error
}

// Store encodes values as compressed JSON inside a Cache
type Store struct {
	backend    Cache
	compressor compression.Compressor
	prefix     string
	ttl        time.Duration
}

// NewStore wraps backend. ttl is used by Put when no explicit ttl is given.
func NewStore(backend Cache, compressor compression.Compressor, prefix string, ttl time.Duration) *Store {
	if compressor == nil {
		compressor = &compression.NoneCompressor{}
	}
	return &Store{
		backend:    backend,
		compressor: compressor,
		prefix:     prefix,
		ttl:        ttl,
	}
}

// TTL returns the default entry lifetime
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Put stores v under key with the default ttl
func (s *Store) Put(ctx context.Context, key string, v interface{}) error {
	return s.PutTTL(ctx, key, v, s.ttl)
}

// PutTTL stores v under key with an explicit ttl
func (s *Store) PutTTL(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %s: %w", key, err)
	}
	frame, err := compression.Encode(s.compressor, data)
	if err != nil {
		return fmt.Errorf("failed to compress cache entry %s: %w", key, err)
	}
	return s.backend.Set(ctx, s.prefix+key, frame, ttl)
}

// Fetch decodes the entry under key into v and reports whether it existed
func (s *Store) Fetch(ctx context.Context, key string, v interface{}) (bool, error) {
	frame, ok, err := s.backend.Get(ctx, s.prefix+key)
	if err != nil || !ok {
		return false, err
	}
	data, err := compression.Decode(frame)
	if err != nil {
		return false, fmt.Errorf("failed to decompress cache entry %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode cache entry %s: %w", key, err)
	}
	return true, nil
}

// Remove deletes the entry under key
func (s *Store) Remove(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, s.prefix+key)
}

// Close closes the backend
func (s *Store) Close() error {
	return s.backend.Close()
}

// Key hashes the JSON form of v into a stable cache key
func Key(namespace string, v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to build cache key: %w", err)
	}
	var sum [8]byte
	h := xxhash.Sum64(data)
	for i := range sum {
		sum[i] = byte(h >> (56 - 8*i))
	}
	return namespace + hex.EncodeToString(sum[:]), nil
}
