package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/soltixdb/curvecast/internal/cache"
	"github.com/soltixdb/curvecast/internal/logging"
	"github.com/soltixdb/curvecast/internal/models"
	"github.com/soltixdb/curvecast/internal/queue"
	"github.com/soltixdb/curvecast/internal/utils"
)

// JobService runs forecasts in the background. Jobs are published to the
// queue and their records live in the cache until DefaultJobTTL passes.
type JobService struct {
	logger    *logging.Logger
	publisher queue.Publisher
	store     *cache.Store
	forecasts *ForecastService
	subject   string
}

// NewJobService creates a new JobService
func NewJobService(
	logger *logging.Logger,
	publisher queue.Publisher,
	store *cache.Store,
	forecasts *ForecastService,
	subject string,
) *JobService {
	return &JobService{
		logger:    logger,
		publisher: publisher,
		store:     store,
		forecasts: forecasts,
		subject:   subject,
	}
}

// jobKey returns the cache key of a job record
func jobKey(id string) string {
	return utils.JobKeyPrefix + id
}

// timestamp formats t for job records
func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ready reports whether the queue and the record store are configured
func (s *JobService) ready() *ServiceError {
	if s.publisher == nil {
		return NewServiceError(CodeQueueUnavailable, "job queue is not configured")
	}
	if s.store == nil {
		return NewServiceError(CodeCacheUnavailable, "job store is not configured")
	}
	return nil
}

// newJob validates req and builds its queue message and pending record
func (s *JobService) newJob(req *models.ForecastRequest, now time.Time) (*models.FitJob, *models.JobResponse, error) {
	if err := s.forecasts.Validate(req); err != nil {
		return nil, nil, err
	}
	job := &models.FitJob{
		JobID:       uuid.New().String(),
		SubmittedAt: timestamp(now),
		Request:     *req,
	}
	record := &models.JobResponse{
		JobID:       job.JobID,
		Status:      models.JobPending,
		SubmittedAt: job.SubmittedAt,
	}
	return job, record, nil
}

// Submit validates a forecast request and queues it as a job
func (s *JobService) Submit(ctx context.Context, req *models.ForecastRequest) (*models.JobResponse, error) {
	if svcErr := s.ready(); svcErr != nil {
		return nil, svcErr
	}

	job, record, err := s.newJob(req, time.Now())
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(job)
	if err != nil {
		return nil, NewServiceError(CodeInternal, fmt.Sprintf("failed to encode job: %v", err))
	}

	if err := s.store.PutTTL(ctx, jobKey(job.JobID), record, utils.DefaultJobTTL); err != nil {
		s.logger.Error("Failed to store job record", "job_id", job.JobID, "error", err)
		return nil, NewServiceError(CodeCacheUnavailable, "failed to store job record")
	}

	if err := s.publisher.Publish(ctx, s.subject, data); err != nil {
		s.logger.Error("Failed to publish job", "job_id", job.JobID, "subject", s.subject, "error", err)
		if rmErr := s.store.Remove(ctx, jobKey(job.JobID)); rmErr != nil {
			s.logger.Warn("Failed to remove orphaned job record", "job_id", job.JobID, "error", rmErr)
		}
		return nil, NewServiceError(CodeQueueUnavailable, "failed to queue job")
	}

	s.logger.Info("Job submitted", "job_id", job.JobID, "subject", s.subject)
	return record, nil
}

// SubmitBatch validates every request before queueing any of them. A partial
// publish returns QUEUE_UNAVAILABLE with the published count; the records of
// unqueued jobs stay pending until they expire.
func (s *JobService) SubmitBatch(ctx context.Context, reqs []models.ForecastRequest) ([]models.JobResponse, error) {
	if svcErr := s.ready(); svcErr != nil {
		return nil, svcErr
	}
	if len(reqs) == 0 {
		return nil, invalidRequest("batch must not be empty")
	}

	now := time.Now()
	jobs := make([]*models.FitJob, len(reqs))
	records := make([]models.JobResponse, len(reqs))
	messages := make([]queue.BatchMessage, len(reqs))
	for i := range reqs {
		job, record, err := s.newJob(&reqs[i], now)
		if err != nil {
			var svcErr *ServiceError
			if errors.As(err, &svcErr) {
				return nil, NewServiceErrorWithDetails(svcErr.Code, svcErr.Message,
					map[string]interface{}{"index": i})
			}
			return nil, err
		}
		data, err := json.Marshal(job)
		if err != nil {
			return nil, NewServiceError(CodeInternal, fmt.Sprintf("failed to encode job: %v", err))
		}
		jobs[i] = job
		records[i] = *record
		messages[i] = queue.BatchMessage{Subject: s.subject, Data: data}
	}

	for i, job := range jobs {
		if err := s.store.PutTTL(ctx, jobKey(job.JobID), &records[i], utils.DefaultJobTTL); err != nil {
			s.logger.Error("Failed to store job record", "job_id", job.JobID, "error", err)
			return nil, NewServiceError(CodeCacheUnavailable, "failed to store job record")
		}
	}

	published, err := s.publisher.PublishBatch(ctx, messages)
	if err != nil || published < len(messages) {
		s.logger.Error("Failed to publish job batch",
			"requested", len(messages),
			"published", published,
			"error", err)
		return nil, NewServiceErrorWithDetails(CodeQueueUnavailable, "failed to queue every job",
			map[string]interface{}{"requested": len(messages), "published": published})
	}

	s.logger.Info("Job batch submitted", "count", len(records), "subject", s.subject)
	return records, nil
}

// Get returns the record of a job
func (s *JobService) Get(ctx context.Context, id string) (*models.JobResponse, error) {
	if s.store == nil {
		return nil, NewServiceError(CodeCacheUnavailable, "job store is not configured")
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, invalidRequest("invalid job id: %q", id)
	}

	var record models.JobResponse
	found, err := s.store.Fetch(ctx, jobKey(id), &record)
	if err != nil {
		s.logger.Error("Failed to read job record", "job_id", id, "error", err)
		return nil, NewServiceError(CodeCacheUnavailable, "failed to read job record")
	}
	if !found {
		return nil, NewServiceErrorWithDetails(CodeJobNotFound, "job not found",
			map[string]interface{}{"job_id": id})
	}
	return &record, nil
}

// MarkRunning moves a job to running
func (s *JobService) MarkRunning(ctx context.Context, job *models.FitJob) (*models.JobResponse, error) {
	record := &models.JobResponse{
		JobID:       job.JobID,
		Status:      models.JobRunning,
		SubmittedAt: job.SubmittedAt,
	}
	return record, s.save(ctx, record)
}

// Complete stores the result of a finished job
func (s *JobService) Complete(ctx context.Context, job *models.FitJob, result *models.ForecastResponse) (*models.JobResponse, error) {
	record := &models.JobResponse{
		JobID:       job.JobID,
		Status:      models.JobCompleted,
		SubmittedAt: job.SubmittedAt,
		CompletedAt: timestamp(time.Now()),
		Result:      result,
	}
	return record, s.save(ctx, record)
}

// Fail stores the error of a failed job
func (s *JobService) Fail(ctx context.Context, job *models.FitJob, cause error) (*models.JobResponse, error) {
	detail := &models.ErrorDetail{Code: CodeInternal, Message: cause.Error()}
	var svcErr *ServiceError
	if errors.As(cause, &svcErr) {
		detail.Code = svcErr.Code
		detail.Details = svcErr.Details
	}

	record := &models.JobResponse{
		JobID:       job.JobID,
		Status:      models.JobFailed,
		SubmittedAt: job.SubmittedAt,
		CompletedAt: timestamp(time.Now()),
		Error:       detail,
	}
	return record, s.save(ctx, record)
}

// Execute runs the forecast of a job synchronously
func (s *JobService) Execute(ctx context.Context, job *models.FitJob) (*models.ForecastResponse, error) {
	return s.forecasts.Execute(ctx, &job.Request)
}

// save writes a job record
func (s *JobService) save(ctx context.Context, record *models.JobResponse) error {
	if s.store == nil {
		return NewServiceError(CodeCacheUnavailable, "job store is not configured")
	}
	if err := s.store.PutTTL(ctx, jobKey(record.JobID), record, utils.DefaultJobTTL); err != nil {
		return fmt.Errorf("failed to save job %s: %w", record.JobID, err)
	}
	return nil
}
