package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// Refresh Job Types
// ---------------------------------------------------------------------------

// RefreshJobStatus represents the status of a dossier refresh job
type RefreshJobStatus string

const (
	RefreshJobStatusPending   RefreshJobStatus = "PENDING"
	RefreshJobStatusRunning   RefreshJobStatus = "RUNNING"
	RefreshJobStatusSuccess   RefreshJobStatus = "SUCCESS"
	RefreshJobStatusFailed    RefreshJobStatus = "FAILED"
	RefreshJobStatusCancelled RefreshJobStatus = "CANCELLED"
)

// RefreshJob represents one scheduled dossier rebuild
type RefreshJob struct {
	ID          uuid.UUID
	CompanyID   uuid.UUID
	Reason      string
	Status      RefreshJobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time
}

// NewRefreshJob creates a new refresh job
func NewRefreshJob(companyID uuid.UUID, reason string, maxRetries int) *RefreshJob {
	return &RefreshJob{
		ID:         uuid.New(),
		CompanyID:  companyID,
		Reason:     reason,
		Status:     RefreshJobStatusPending,
		MaxRetries: maxRetries,
	}
}

// Start marks the job as running
func (j *RefreshJob) Start() {
	now := time.Now()
	j.Status = RefreshJobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete marks the job as successful
func (j *RefreshJob) Complete() {
	now := time.Now()
	j.Status = RefreshJobStatusSuccess
	j.CompletedAt = &now
}

// Fail marks the job as failed
func (j *RefreshJob) Fail(err string) {
	now := time.Now()
	j.Status = RefreshJobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ShouldRetry returns true if the job should be retried
func (j *RefreshJob) ShouldRetry() bool {
	return j.Status == RefreshJobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry schedules the job for retry with exponential backoff
func (j *RefreshJob) ScheduleRetry(baseDelay time.Duration) {
	j.RetryCount++
	j.Status = RefreshJobStatusPending
	// Exponential backoff: baseDelay * 2^(retryCount-1), capped.
	delay := baseDelay * time.Duration(1<<(j.RetryCount-1))
	if delay > 30*time.Minute {
		delay = 30 * time.Minute
	}
	nextRetry := time.Now().Add(delay)
	j.NextRetryAt = &nextRetry
	j.Error = ""
}

// ---------------------------------------------------------------------------
// JobExecutor Interface
// ---------------------------------------------------------------------------

// JobExecutor executes refresh jobs
type JobExecutor interface {
	// Execute rebuilds the dossier for the job's company
	Execute(ctx context.Context, job *RefreshJob) error
}

// ---------------------------------------------------------------------------
// RefreshSchedulerConfig
// ---------------------------------------------------------------------------

// RefreshSchedulerConfig holds configuration for the refresh scheduler
type RefreshSchedulerConfig struct {
	// Workers is the number of concurrent refresh workers
	Workers int
	// QueueSize is the refresh job queue capacity
	QueueSize int
	// JobTimeout is the maximum time one rebuild can run
	JobTimeout time.Duration
	// RetryAttempts is the number of retry attempts for failed jobs
	RetryAttempts int
	// RetryDelay is the base delay between retries (with exponential backoff)
	RetryDelay time.Duration
}

// DefaultRefreshSchedulerConfig returns default configuration
func DefaultRefreshSchedulerConfig() RefreshSchedulerConfig {
	return RefreshSchedulerConfig{
		Workers:       3,
		QueueSize:     100,
		JobTimeout:    2 * time.Minute,
		RetryAttempts: 2,
		RetryDelay:    30 * time.Second,
	}
}

// Validate validates the configuration
func (c *RefreshSchedulerConfig) Validate() error {
	if c.Workers <= 0 {
		return ErrInvalidConfig
	}
	if c.QueueSize <= 0 {
		return ErrInvalidConfig
	}
	if c.JobTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.RetryAttempts < 0 {
		return ErrInvalidConfig
	}
	return nil
}

// ---------------------------------------------------------------------------
// RefreshScheduler
// ---------------------------------------------------------------------------

// RefreshScheduler manages queued dossier rebuilds over a worker pool
type RefreshScheduler struct {
	config   RefreshSchedulerConfig
	executor JobExecutor
	logger   *zap.Logger

	jobs      chan *RefreshJob
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	// Job history for monitoring (in-memory, limited size)
	historyMu  sync.RWMutex
	history    []*RefreshJob
	maxHistory int
}

// NewRefreshScheduler creates a new refresh scheduler
func NewRefreshScheduler(config RefreshSchedulerConfig, executor JobExecutor, logger *zap.Logger) (*RefreshScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &RefreshScheduler{
		config:     config,
		executor:   executor,
		logger:     logger,
		jobs:       make(chan *RefreshJob, config.QueueSize),
		history:    make([]*RefreshJob, 0, 100),
		maxHistory: 100,
	}, nil
}

// Start starts the worker pool
func (s *RefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("Dossier refresh scheduler started",
		zap.Int("workers", s.config.Workers),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)

	return nil
}

// Stop gracefully stops the scheduler
func (s *RefreshScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	close(s.jobs)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Dossier refresh scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Dossier refresh scheduler stop timed out")
		return ctx.Err()
	}
}

// SubmitJob submits a job for execution
func (s *RefreshScheduler) SubmitJob(job *RefreshJob) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	select {
	case s.jobs <- job:
		s.logger.Debug("Refresh job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("company_id", job.CompanyID.String()),
			zap.String("reason", job.Reason),
		)
		return nil
	default:
		return ErrJobQueueFull
	}
}

// ScheduleRefresh queues a dossier rebuild for a company
func (s *RefreshScheduler) ScheduleRefresh(companyID uuid.UUID, reason string) error {
	job := NewRefreshJob(companyID, reason, s.config.RetryAttempts)
	return s.SubmitJob(job)
}

// worker processes jobs from the queue
func (s *RefreshScheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	s.logger.Debug("Refresh worker started", zap.Int("worker_id", workerID))

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Refresh worker stopping", zap.Int("worker_id", workerID))
			return
		case job, ok := <-s.jobs:
			if !ok {
				s.logger.Debug("Refresh job channel closed", zap.Int("worker_id", workerID))
				return
			}
			s.processJob(ctx, job, workerID)
		}
	}
}

// processJob executes a single job
func (s *RefreshScheduler) processJob(ctx context.Context, job *RefreshJob, workerID int) {
	// Not yet due for retry: put it back.
	if job.NextRetryAt != nil && time.Now().Before(*job.NextRetryAt) {
		select {
		case s.jobs <- job:
		default:
			s.logger.Warn("Failed to re-queue refresh job for retry",
				zap.String("job_id", job.ID.String()),
			)
		}
		return
	}

	job.Start()
	s.logger.Info("Processing refresh job",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("company_id", job.CompanyID.String()),
		zap.String("reason", job.Reason),
	)

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	err := s.executor.Execute(jobCtx, job)
	if err != nil {
		job.Fail(err.Error())
		s.logger.Error("Refresh job failed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", job.ID.String()),
			zap.String("company_id", job.CompanyID.String()),
			zap.Error(err),
		)

		if job.ShouldRetry() {
			job.ScheduleRetry(s.config.RetryDelay)
			s.logger.Info("Refresh job scheduled for retry",
				zap.String("job_id", job.ID.String()),
				zap.Int("retry_count", job.RetryCount),
				zap.Int("max_retries", job.MaxRetries),
				zap.Time("next_retry_at", *job.NextRetryAt),
			)
			select {
			case s.jobs <- job:
			default:
				s.logger.Warn("Failed to re-queue refresh job for retry",
					zap.String("job_id", job.ID.String()),
				)
			}
		}

		s.addToHistory(job)
		return
	}

	job.Complete()
	s.logger.Info("Refresh job completed",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("company_id", job.CompanyID.String()),
		zap.String("status", string(job.Status)),
	)

	s.addToHistory(job)
}

// addToHistory adds a completed job to history
func (s *RefreshScheduler) addToHistory(job *RefreshJob) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	s.history = append([]*RefreshJob{job}, s.history...)

	if len(s.history) > s.maxHistory {
		s.history = s.history[:s.maxHistory]
	}
}

// GetJobHistory returns recent job history
func (s *RefreshScheduler) GetJobHistory(limit int) []*RefreshJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}

	result := make([]*RefreshJob, limit)
	copy(result, s.history[:limit])
	return result
}

// GetJobHistoryByCompany returns job history for a specific company
func (s *RefreshScheduler) GetJobHistoryByCompany(companyID uuid.UUID, limit int) []*RefreshJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	result := make([]*RefreshJob, 0, limit)
	for _, job := range s.history {
		if job.CompanyID == companyID {
			result = append(result, job)
			if len(result) >= limit {
				break
			}
		}
	}
	return result
}
