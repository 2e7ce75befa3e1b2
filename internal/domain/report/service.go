package report

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/labms/labms/internal/platform/tasks"
	"github.com/labms/labms/internal/platform/workerpool"
)

// Service-level deadlines. Listing tolerates more latency than delete because
// it fans out one stat per file.
const (
	listTimeout   = 15 * time.Second
	deleteTimeout = 10 * time.Second
)

// HealthChecker is the subset of the repository the health endpoint needs.
type HealthChecker interface {
	Accessible() bool
	LockCount() int
}

// Service orchestrates report operations: validation, storage, bounded waits,
// and the fire-and-forget follow-up work (index updates, notifications,
// download audit entries).
type Service struct {
	repo   Repository
	health HealthChecker
	pool   *workerpool.Pool
	runner *tasks.Runner
	logger zerolog.Logger
}

func NewService(repo Repository, health HealthChecker, pool *workerpool.Pool, runner *tasks.Runner, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		health: health,
		pool:   pool,
		runner: runner,
		logger: logger.With().Str("component", "report_service").Logger(),
	}
}

// Upload validates the file and patient id concurrently, stores the file,
// and enqueues the index update and notification tasks. Validation failures
// come back as a ValidationError.
func (s *Service) Upload(ctx context.Context, rawPatientID, fileName string, f io.ReadSeeker) (*StoredReport, error) {
	patientID, errs := s.repo.ConcurrentValidation(fileName, f, rawPatientID)
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	stored, err := s.repo.Save(ctx, patientID, fileName, f)
	if err != nil {
		return nil, err
	}

	s.runner.Enqueue("index-update", func() error {
		s.logger.Debug().Str("file", stored.FileName).Msg("search index updated")
		return nil
	})
	s.runner.Enqueue("upload-notification", func() error {
		s.logger.Info().
			Int("patient_id", stored.PatientID).
			Str("file", stored.FileName).
			Msg("report uploaded")
		return nil
	})

	return stored, nil
}

// Download resolves a report for the patient. An empty filename means the
// most recent report. Successful resolutions enqueue an audit entry.
func (s *Service) Download(ctx context.Context, rawPatientID, filename string) (*StoredReport, error) {
	patientID, errs := s.repo.ValidatePatientID(rawPatientID)
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	stored, err := s.repo.Resolve(ctx, patientID, filename)
	if err != nil {
		return nil, err
	}

	s.runner.Enqueue("download-audit", func() error {
		s.logger.Info().
			Int("patient_id", stored.PatientID).
			Str("file", stored.FileName).
			Msg("report downloaded")
		return nil
	})

	return stored, nil
}

// List returns the patient's reports newest first. The repository call runs
// on the pool with a bounded wait; exceeding it yields ErrTimeout while the
// scan finishes in the background.
func (s *Service) List(ctx context.Context, rawPatientID string) ([]*StoredReport, error) {
	patientID, errs := s.repo.ValidatePatientID(rawPatientID)
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	task, err := s.pool.Submit("list-reports", func() (interface{}, error) {
		return s.repo.List(ctx, patientID)
	})
	if err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}

	waitCtx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()
	res, err := task.Wait(waitCtx)
	if err != nil {
		return nil, classifyWaitError("list", err)
	}
	return res.([]*StoredReport), nil
}

// Delete archives the named report. The repository call runs on the pool with
// a bounded wait.
func (s *Service) Delete(ctx context.Context, rawPatientID, filename string) error {
	patientID, errs := s.repo.ValidatePatientID(rawPatientID)
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	task, err := s.pool.Submit("delete-report", func() (interface{}, error) {
		return nil, s.repo.Delete(ctx, patientID, filename)
	})
	if err != nil {
		return &StorageError{Op: "delete", Err: err}
	}

	waitCtx, cancel := context.WithTimeout(ctx, deleteTimeout)
	defer cancel()
	if _, err := task.Wait(waitCtx); err != nil {
		return classifyWaitError("delete", err)
	}
	return nil
}

// CleanupBackups runs a retention sweep immediately.
func (s *Service) CleanupBackups(ctx context.Context) (int, error) {
	return s.repo.CleanupBackups(ctx)
}

// HealthStatus is the report subsystem health snapshot.
type HealthStatus struct {
	Healthy         bool `json:"healthy"`
	UploadDirOK     bool `json:"upload_dir_accessible"`
	PoolOK          bool `json:"worker_pool_healthy"`
	TaskRunnerOK    bool `json:"task_runner_healthy"`
	QueueDepth      int  `json:"task_queue_depth"`
	RegisteredLocks int  `json:"registered_locks"`
}

// Health checks the upload directory and the background machinery.
func (s *Service) Health() HealthStatus {
	st := HealthStatus{
		UploadDirOK:     s.health.Accessible(),
		PoolOK:          s.pool.Healthy(),
		TaskRunnerOK:    s.runner.Healthy(),
		QueueDepth:      s.runner.QueueDepth(),
		RegisteredLocks: s.health.LockCount(),
	}
	st.Healthy = st.UploadDirOK && st.PoolOK && st.TaskRunnerOK
	return st
}

// ServiceStats combines worker pool and task queue activity for /reports/stats.
type ServiceStats struct {
	Pool            workerpool.Stats `json:"worker_pool"`
	TaskQueueDepth  int              `json:"task_queue_depth"`
	TaskWorkers     int              `json:"task_workers"`
	RegisteredLocks int              `json:"registered_locks"`
}

// Stats returns a snapshot of the concurrency machinery.
func (s *Service) Stats() ServiceStats {
	return ServiceStats{
		Pool:            s.pool.Stats(),
		TaskQueueDepth:  s.runner.QueueDepth(),
		TaskWorkers:     s.runner.Workers(),
		RegisteredLocks: s.health.LockCount(),
	}
}

// IsValidation reports whether err is a validation failure and returns its
// messages.
func IsValidation(err error) ([]string, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Errors, true
	}
	return nil, false
}
