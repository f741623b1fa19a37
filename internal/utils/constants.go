package utils

import "time"

// Version is reported by the health endpoint and the CLI
const Version = "1.0.0"

// =============================================================================
// Timeout Constants
// =============================================================================

// HTTP Handler Timeouts
const (
	// DefaultRequestTimeout is the default timeout for HTTP requests
	DefaultRequestTimeout = 30 * time.Second

	// EnqueueTimeout bounds publishing a fit job to the queue
	EnqueueTimeout = 5 * time.Second

	// CacheTimeout bounds a single cache round-trip
	CacheTimeout = 2 * time.Second

	// ShutdownTimeout is the grace period for the HTTP server and worker
	ShutdownTimeout = 10 * time.Second
)

// =============================================================================
// Job Constants
// =============================================================================

const (
	// DefaultJobTimeout is the default time budget of one background fit job
	DefaultJobTimeout = 2 * time.Minute

	// DefaultJobTTL is how long job status and results stay in the cache
	DefaultJobTTL = 24 * time.Hour

	// JobKeyPrefix namespaces job records in the cache
	JobKeyPrefix = "job:"

	// ForecastKeyPrefix namespaces cached forecasts
	ForecastKeyPrefix = "forecast:"
)

// =============================================================================
// Retry and Backoff Constants
// =============================================================================

const (
	// DefaultMaxRetries is the default number of retry attempts
	DefaultMaxRetries = 3

	// DefaultRetryBackoff is the default backoff duration between retries
	DefaultRetryBackoff = 100 * time.Millisecond
)

// =============================================================================
// Buffer and Batch Size Constants
// =============================================================================

const (
	// DefaultBufferSize is the default buffer size for channels
	DefaultBufferSize = 100

	// MemoryQueueCapacity is the per-subject buffer of the in-memory queue
	MemoryQueueCapacity = 10000

	// MaxSeriesLength caps the number of values accepted in one series payload
	MaxSeriesLength = 100000
)

// =============================================================================
// Queue Type Constants
// =============================================================================
// QueueType represents the type of message queue
type QueueType string

const (
	// QueueTypeNATS represents NATS JetStream queue
	QueueTypeNATS QueueType = "nats"

	// QueueTypeRedis represents Redis Streams queue
	QueueTypeRedis QueueType = "redis"

	// QueueTypeKafka represents Apache Kafka queue
	QueueTypeKafka QueueType = "kafka"

	// QueueTypeMemory represents in-memory queue (default)
	QueueTypeMemory QueueType = "memory"
)

// =============================================================================
// Cache Type Constants
// =============================================================================
// CacheType represents the backing store of the result cache
type CacheType string

const (
	// CacheTypeMemory keeps results in process (default)
	CacheTypeMemory CacheType = "memory"

	// CacheTypeRedis stores results in Redis
	CacheTypeRedis CacheType = "redis"
)
