package cache

import (
	"context"
	"testing"
	"time"

	"github.com/soltixdb/curvecast/internal/compression"
	"github.com/soltixdb/curvecast/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name  string    `json:"name"`
	Value []float64 `json:"value"`
}

func TestStore_PutFetch(t *testing.T) {
	for _, c := range []compression.Compressor{nil, compression.NewSnappyCompressor()} {
		backend := NewMemoryCache(0)
		store := NewStore(backend, c, "curvecast:", time.Hour)
		ctx := context.Background()

		in := entry{Name: "logistic", Value: []float64{1, 2, 3}}
		require.NoError(t, store.Put(ctx, "k1", in))

		// entries live under the prefix
		_, ok, _ := backend.Get(ctx, "curvecast:k1")
		assert.True(t, ok)

		var out entry
		found, err := store.Fetch(ctx, "k1", &out)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, in, out)

		require.NoError(t, store.Remove(ctx, "k1"))
		found, err = store.Fetch(ctx, "k1", &out)
		require.NoError(t, err)
		assert.False(t, found)
	}
}

func TestStore_ReadsOtherCompression(t *testing.T) {
	backend := NewMemoryCache(0)
	ctx := context.Background()

	writer := NewStore(backend, compression.NewSnappyCompressor(), "", 0)
	reader := NewStore(backend, nil, "", 0)

	require.NoError(t, writer.Put(ctx, "k", entry{Name: "gompertz"}))

	var out entry
	found, err := reader.Fetch(ctx, "k", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "gompertz", out.Name)
}

func TestStore_CorruptEntry(t *testing.T) {
	backend := NewMemoryCache(0)
	ctx := context.Background()
	store := NewStore(backend, nil, "", 0)

	require.NoError(t, backend.Set(ctx, "bad", []byte{0, '{'}, 0))

	var out entry
	_, err := store.Fetch(ctx, "bad", &out)
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	a, err := Key("forecast:", map[string]interface{}{"kind": "logistic", "values": []int{1, 2}})
	require.NoError(t, err)
	b, err := Key("forecast:", map[string]interface{}{"values": []int{1, 2}, "kind": "logistic"})
	require.NoError(t, err)
	c, err := Key("forecast:", map[string]interface{}{"kind": "gompertz", "values": []int{1, 2}})
	require.NoError(t, err)

	assert.Equal(t, a, b, "map key order must not change the key")
	assert.NotEqual(t, a, c)
	assert.Len(t, a, len("forecast:")+16)

	_, err = Key("x", func() {})
	assert.Error(t, err)
}

func TestNewCache(t *testing.T) {
	c, err := NewCache(config.CacheConfig{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)
	_ = c.Close()

	_, err = NewCache(config.CacheConfig{Type: "memcached"})
	assert.Error(t, err)

	_, err = NewStoreFromConfig(config.CacheConfig{Compression: "zstd"})
	assert.Error(t, err)

	store, err := NewStoreFromConfig(config.CacheConfig{Type: "memory", Compression: "snappy", TTL: time.Minute, KeyPrefix: "p:"})
	require.NoError(t, err)
	assert.Equal(t, time.Minute, store.TTL())
	_ = store.Close()
}
