package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/curvecast/internal/analytics/growth"
	"github.com/soltixdb/curvecast/internal/cache"
	"github.com/soltixdb/curvecast/internal/config"
	"github.com/soltixdb/curvecast/internal/logging"
	"github.com/soltixdb/curvecast/internal/models"
	"github.com/soltixdb/curvecast/internal/queue"
	"github.com/soltixdb/curvecast/internal/services"
)

const (
	jobSubject    = "test.jobs"
	resultSubject = "test.results"
)

// fakeRunner records lifecycle calls
type fakeRunner struct {
	mu        sync.Mutex
	running   []string
	completed []string
	failed    []string
	execErr   error
	block     chan struct{}
}

func (r *fakeRunner) MarkRunning(_ context.Context, job *models.FitJob) (*models.JobResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = append(r.running, job.JobID)
	return &models.JobResponse{JobID: job.JobID, Status: models.JobRunning}, nil
}

func (r *fakeRunner) Execute(ctx context.Context, _ *models.FitJob) (*models.ForecastResponse, error) {
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if r.execErr != nil {
		return nil, r.execErr
	}
	return &models.ForecastResponse{Algorithm: "fake"}, nil
}

func (r *fakeRunner) Complete(_ context.Context, job *models.FitJob, result *models.ForecastResponse) (*models.JobResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, job.JobID)
	return &models.JobResponse{JobID: job.JobID, Status: models.JobCompleted, Result: result}, nil
}

func (r *fakeRunner) Fail(_ context.Context, job *models.FitJob, cause error) (*models.JobResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, job.JobID)
	return &models.JobResponse{
		JobID:  job.JobID,
		Status: models.JobFailed,
		Error:  &models.ErrorDetail{Code: services.CodeInternal, Message: cause.Error()},
	}, nil
}

func (r *fakeRunner) counts() (running, completed, failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.running), len(r.completed), len(r.failed)
}

func newMemoryQueue(t *testing.T) queue.Queue {
	t.Helper()
	q, err := queue.NewQueue(config.QueueConfig{Type: "memory"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = q.Close() })
	return q
}

func publishJob(t *testing.T, q queue.Queue, job models.FitJob) {
	t.Helper()
	data, err := json.Marshal(job)
	require.NoError(t, err)
	require.NoError(t, q.Publish(context.Background(), jobSubject, data))
}

func TestFitWorker_ProcessesJobs(t *testing.T) {
	q := newMemoryQueue(t)
	runner := &fakeRunner{}

	var resultsMu sync.Mutex
	var results []models.JobResponse
	require.NoError(t, q.Subscribe(resultSubject, func(_ context.Context, _ string, data []byte) error {
		var record models.JobResponse
		if err := json.Unmarshal(data, &record); err != nil {
			return err
		}
		resultsMu.Lock()
		results = append(results, record)
		resultsMu.Unlock()
		return nil
	}))

	w := New(Config{JobSubject: jobSubject, ResultSubject: resultSubject, Concurrency: 2}, q, runner, logging.NewNop())
	require.NoError(t, w.Start())
	defer w.Stop()

	for i := 0; i < 5; i++ {
		publishJob(t, q, models.FitJob{JobID: uuid.New().String()})
	}

	assert.Eventually(t, func() bool {
		_, completed, _ := runner.counts()
		return completed == 5
	}, 5*time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		resultsMu.Lock()
		defer resultsMu.Unlock()
		return len(results) == 5
	}, 5*time.Second, 10*time.Millisecond)

	running, _, failed := runner.counts()
	assert.Equal(t, 5, running)
	assert.Equal(t, 0, failed)

	resultsMu.Lock()
	defer resultsMu.Unlock()
	for _, r := range results {
		assert.Equal(t, models.JobCompleted, r.Status)
		assert.Equal(t, "fake", r.Result.Algorithm)
	}
}

func TestFitWorker_FailedJob(t *testing.T) {
	q := newMemoryQueue(t)
	runner := &fakeRunner{execErr: errors.New("fit exploded")}

	w := New(Config{JobSubject: jobSubject}, q, runner, logging.NewNop())
	require.NoError(t, w.Start())
	defer w.Stop()

	publishJob(t, q, models.FitJob{JobID: uuid.New().String()})

	assert.Eventually(t, func() bool {
		_, _, failed := runner.counts()
		return failed == 1
	}, 5*time.Second, 10*time.Millisecond)

	_, completed, _ := runner.counts()
	assert.Equal(t, 0, completed)
}

func TestFitWorker_JobTimeout(t *testing.T) {
	q := newMemoryQueue(t)
	runner := &fakeRunner{block: make(chan struct{})}

	w := New(Config{JobSubject: jobSubject, JobTimeout: 50 * time.Millisecond}, q, runner, logging.NewNop())
	require.NoError(t, w.Start())
	defer w.Stop()

	publishJob(t, q, models.FitJob{JobID: uuid.New().String()})

	assert.Eventually(t, func() bool {
		_, _, failed := runner.counts()
		return failed == 1
	}, 5*time.Second, 10*time.Millisecond)
}

func TestFitWorker_PoisonMessages(t *testing.T) {
	w := New(Config{JobSubject: jobSubject}, nil, &fakeRunner{}, logging.NewNop())
	ctx := context.Background()

	assert.NoError(t, w.handleMessage(ctx, jobSubject, []byte("not json")))
	assert.NoError(t, w.handleMessage(ctx, jobSubject, []byte(`{"submitted_at":"2020-03-01T00:00:00Z"}`)))
	assert.Equal(t, 0, len(w.jobs))

	assert.NoError(t, w.handleMessage(ctx, jobSubject, []byte(`{"job_id":"abc"}`)))
	assert.Equal(t, 1, len(w.jobs))
}

func TestFitWorker_BufferFullWhileStopping(t *testing.T) {
	w := New(Config{JobSubject: jobSubject, BufferSize: 1}, nil, &fakeRunner{}, logging.NewNop())
	ctx := context.Background()

	require.NoError(t, w.handleMessage(ctx, jobSubject, []byte(`{"job_id":"a"}`)))
	close(w.stopCh)

	err := w.handleMessage(ctx, jobSubject, []byte(`{"job_id":"b"}`))
	assert.Error(t, err, "a full buffer should refuse the message so it is redelivered")
}

func TestFitWorker_BufferFullCancelled(t *testing.T) {
	w := New(Config{JobSubject: jobSubject, BufferSize: 1}, nil, &fakeRunner{}, logging.NewNop())

	require.NoError(t, w.handleMessage(context.Background(), jobSubject, []byte(`{"job_id":"a"}`)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := w.handleMessage(ctx, jobSubject, []byte(`{"job_id":"b"}`))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFitWorker_StartStop(t *testing.T) {
	q := newMemoryQueue(t)

	w := New(Config{}, q, &fakeRunner{}, logging.NewNop())
	assert.Error(t, w.Start(), "start without a subject")

	w = New(Config{JobSubject: jobSubject}, q, &fakeRunner{}, logging.NewNop())
	require.NoError(t, w.Start())
	assert.Error(t, w.Start(), "second start")

	w.Stop()
	w.Stop()

	// the subject is free again once the worker has stopped
	w2 := New(Config{JobSubject: jobSubject}, q, &fakeRunner{}, logging.NewNop())
	require.NoError(t, w2.Start())
	w2.Stop()
}

func TestFitWorker_Defaults(t *testing.T) {
	w := New(Config{JobSubject: jobSubject, Concurrency: -3}, nil, &fakeRunner{}, logging.NewNop())
	assert.Equal(t, 1, w.cfg.Concurrency)
	assert.Positive(t, w.cfg.JobTimeout)
	assert.Positive(t, cap(w.jobs))
}

func TestFitWorker_EndToEnd(t *testing.T) {
	q := newMemoryQueue(t)
	cfg := config.DefaultConfig()

	backend := cache.NewMemoryCache(time.Minute)
	defer backend.Close()
	store := cache.NewStore(backend, nil, "test:", time.Hour)

	forecasts := services.NewForecastService(logging.NewNop(), cfg.Fitter, cfg.Forecast, store)
	jobs := services.NewJobService(logging.NewNop(), q, store, forecasts, jobSubject)

	w := New(Config{JobSubject: jobSubject}, q, jobs, logging.NewNop())
	require.NoError(t, w.Start())
	defer w.Stop()

	p := growth.NewParams(growth.Logistic, 1000, 0.1, 50, 0)
	values := make([]models.Float, 101)
	for i := range values {
		values[i] = models.Float(growth.Evaluate(p, float64(i)))
	}
	req := models.ForecastRequest{
		FitRequest: models.FitRequest{
			Series: models.SeriesPayload{Start: "2020-03-01", Values: values},
			Curve:  "logistic",
		},
	}

	ctx := context.Background()
	submitted, err := jobs.Submit(ctx, &req)
	require.NoError(t, err)

	var record *models.JobResponse
	require.Eventually(t, func() bool {
		record, err = jobs.Get(ctx, submitted.JobID)
		return err == nil && record.Status == models.JobCompleted
	}, 30*time.Second, 20*time.Millisecond)

	require.NotNil(t, record.Result)
	assert.Equal(t, growth.Logistic, record.Result.Params.Kind)
	assert.InDelta(t, 1000, record.Result.Params.L, 1)
	require.NotNil(t, record.Result.Peak)
	assert.Equal(t, "2020-04-20", record.Result.Peak.Date)
}
