// Package worker consumes fit jobs from the queue and runs them on a fixed
// pool of goroutines.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/soltixdb/curvecast/internal/logging"
	"github.com/soltixdb/curvecast/internal/models"
	"github.com/soltixdb/curvecast/internal/queue"
	"github.com/soltixdb/curvecast/internal/utils"
)

// JobRunner records job state and runs forecasts. *services.JobService
// implements it.
type JobRunner interface {
	MarkRunning(ctx context.Context, job *models.FitJob) (*models.JobResponse, error)
	Execute(ctx context.Context, job *models.FitJob) (*models.ForecastResponse, error)
	Complete(ctx context.Context, job *models.FitJob, result *models.ForecastResponse) (*models.JobResponse, error)
	Fail(ctx context.Context, job *models.FitJob, cause error) (*models.JobResponse, error)
}

// Config holds worker pool settings
type Config struct {
	JobSubject    string        // subject to consume jobs from
	ResultSubject string        // subject finished records are published to; empty disables
	Concurrency   int           // number of worker goroutines (default: 1)
	JobTimeout    time.Duration // per-job deadline (default: utils.DefaultJobTimeout)
	BufferSize    int           // pending job buffer (default: utils.DefaultBufferSize)
}

// FitWorker is a pool of goroutines running fit jobs
type FitWorker struct {
	cfg     Config
	queue   queue.Queue
	runner  JobRunner
	logger  *logging.Logger
	jobs    chan *models.FitJob
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
	stopped bool
}

// New creates a worker pool. Call Start to begin consuming.
func New(cfg Config, q queue.Queue, runner JobRunner, logger *logging.Logger) *FitWorker {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = utils.DefaultJobTimeout
	}
	if cfg.BufferSize < 1 {
		cfg.BufferSize = utils.DefaultBufferSize
	}
	return &FitWorker{
		cfg:    cfg,
		queue:  q,
		runner: runner,
		logger: logger,
		jobs:   make(chan *models.FitJob, cfg.BufferSize),
		stopCh: make(chan struct{}),
	}
}

// Start launches the workers and subscribes to the job subject
func (w *FitWorker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return fmt.Errorf("worker already started")
	}
	if w.cfg.JobSubject == "" {
		return fmt.Errorf("job subject is not configured")
	}

	for i := 0; i < w.cfg.Concurrency; i++ {
		w.wg.Add(1)
		go w.run(i)
	}

	if err := w.queue.Subscribe(w.cfg.JobSubject, w.handleMessage); err != nil {
		close(w.stopCh)
		w.wg.Wait()
		return fmt.Errorf("failed to subscribe to %s: %w", w.cfg.JobSubject, err)
	}

	w.started = true
	w.logger.Info("Fit worker started",
		"subject", w.cfg.JobSubject,
		"concurrency", w.cfg.Concurrency,
		"job_timeout", w.cfg.JobTimeout)
	return nil
}

// Stop unsubscribes and waits for running jobs to finish. Jobs still
// buffered are dropped; their records stay pending.
func (w *FitWorker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started || w.stopped {
		return
	}
	w.stopped = true

	if err := w.queue.Unsubscribe(w.cfg.JobSubject); err != nil {
		w.logger.Warn("Failed to unsubscribe job subject", "subject", w.cfg.JobSubject, "error", err)
	}
	close(w.stopCh)
	w.wg.Wait()

	if dropped := len(w.jobs); dropped > 0 {
		w.logger.Warn("Fit worker stopped with buffered jobs", "dropped", dropped)
	}
	w.logger.Info("Fit worker stopped")
}

// handleMessage decodes a job and hands it to the pool. Undecodable messages
// are logged and acknowledged so they are not redelivered.
func (w *FitWorker) handleMessage(ctx context.Context, subject string, data []byte) error {
	var job models.FitJob
	if err := json.Unmarshal(data, &job); err != nil {
		w.logger.Error("Failed to parse fit job",
			"subject", subject,
			"error", err,
			"data_preview", string(data[:min(200, len(data))]))
		return nil
	}
	if job.JobID == "" {
		w.logger.Error("Fit job without id", "subject", subject)
		return nil
	}

	select {
	case w.jobs <- &job:
		return nil
	default:
	}

	w.logger.Warn("Fit worker buffer full, applying backpressure",
		"job_id", job.JobID,
		"buffer_size", w.cfg.BufferSize)

	timer := time.NewTimer(utils.EnqueueTimeout)
	defer timer.Stop()

	select {
	case w.jobs <- &job:
		return nil
	case <-timer.C:
		return fmt.Errorf("fit worker buffer full")
	case <-w.stopCh:
		return fmt.Errorf("fit worker stopping")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run processes jobs until Stop
func (w *FitWorker) run(id int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopCh:
			return
		case job := <-w.jobs:
			w.process(id, job)
		}
	}
}

// process runs one job and records its outcome
func (w *FitWorker) process(workerID int, job *models.FitJob) {
	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.JobTimeout)
	defer cancel()

	ctx = logging.WithJobID(logging.WithLogger(ctx, w.logger), job.JobID)
	start := time.Now()

	if _, err := w.runner.MarkRunning(ctx, job); err != nil {
		logging.WarnCtx(ctx, "Failed to mark job running", "error", err)
	}

	var record *models.JobResponse
	result, err := w.runner.Execute(ctx, job)
	if err != nil {
		logging.WarnCtx(ctx, "Fit job failed",
			"worker", workerID,
			"error", err,
			"latency_ms", time.Since(start).Milliseconds())
		record, err = w.runner.Fail(ctx, job, err)
	} else {
		logging.InfoCtx(ctx, "Fit job completed",
			"worker", workerID,
			"algorithm", result.Algorithm,
			"cached", result.Cached,
			"latency_ms", time.Since(start).Milliseconds())
		record, err = w.runner.Complete(ctx, job, result)
	}
	if err != nil {
		logging.ErrorCtx(ctx, "Failed to store job record", "error", err)
	}

	w.publishResult(ctx, record)
}

// publishResult announces a finished record on the result subject
func (w *FitWorker) publishResult(ctx context.Context, record *models.JobResponse) {
	if w.cfg.ResultSubject == "" || record == nil {
		return
	}
	data, err := json.Marshal(record)
	if err != nil {
		logging.ErrorCtx(ctx, "Failed to encode job result", "error", err)
		return
	}

	pubCtx, cancel := context.WithTimeout(context.Background(), utils.EnqueueTimeout)
	defer cancel()
	if err := w.queue.Publish(pubCtx, w.cfg.ResultSubject, data); err != nil {
		logging.WarnCtx(ctx, "Failed to publish job result", "subject", w.cfg.ResultSubject, "error", err)
	}
}
