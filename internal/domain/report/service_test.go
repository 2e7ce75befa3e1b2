package report

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/labms/labms/internal/platform/tasks"
	"github.com/labms/labms/internal/platform/workerpool"
)

// mockRepo is an in-memory Repository for service and handler tests.
type mockRepo struct {
	reports     map[int][]*StoredReport
	fileErrs    []string
	saveErr     error
	resolveErr  error
	listErr     error
	deleteErr   error
	saveCalled  bool
	savedName   string
	deleteNames []string
}

func newMockRepo() *mockRepo {
	return &mockRepo{reports: make(map[int][]*StoredReport)}
}

func (m *mockRepo) ValidateFile(name string, f io.ReadSeeker) []string {
	return m.fileErrs
}

func (m *mockRepo) ValidatePatientID(raw string) (int, []string) {
	return parsePatientID(raw)
}

func (m *mockRepo) ConcurrentValidation(name string, f io.ReadSeeker, rawID string) (int, []string) {
	id, errs := parsePatientID(rawID)
	return id, append(errs, m.fileErrs...)
}

func (m *mockRepo) Save(ctx context.Context, patientID int, originalName string, src io.Reader) (*StoredReport, error) {
	m.saveCalled = true
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	stored := &StoredReport{
		PatientID:    patientID,
		FileName:     buildFileName(patientID, originalName, time.Now()),
		OriginalName: originalName,
		Size:         7,
		UploadedAt:   time.Now(),
	}
	m.savedName = stored.FileName
	m.reports[patientID] = append(m.reports[patientID], stored)
	return stored, nil
}

func (m *mockRepo) Resolve(ctx context.Context, patientID int, filename string) (*StoredReport, error) {
	if m.resolveErr != nil {
		return nil, m.resolveErr
	}
	list := m.reports[patientID]
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	if filename == "" {
		return list[len(list)-1], nil
	}
	for _, r := range list {
		if r.FileName == filename {
			return r, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) List(ctx context.Context, patientID int) ([]*StoredReport, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := m.reports[patientID]
	if out == nil {
		out = []*StoredReport{}
	}
	return out, nil
}

func (m *mockRepo) Delete(ctx context.Context, patientID int, filename string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleteNames = append(m.deleteNames, filename)
	list := m.reports[patientID]
	for i, r := range list {
		if r.FileName == filename {
			m.reports[patientID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockRepo) CleanupBackups(ctx context.Context) (int, error) { return 0, nil }

type mockHealth struct {
	accessible bool
	locks      int
}

func (m *mockHealth) Accessible() bool { return m.accessible }
func (m *mockHealth) LockCount() int   { return m.locks }

func newTestService(t *testing.T, repo Repository, health HealthChecker) *Service {
	t.Helper()
	pool := workerpool.New(2, zerolog.Nop())
	runner := tasks.NewRunner(2, zerolog.Nop())
	t.Cleanup(func() {
		runner.Close()
		pool.Close()
	})
	return NewService(repo, health, pool, runner, zerolog.Nop())
}

func TestServiceUpload(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(t, repo, &mockHealth{accessible: true})

	stored, err := svc.Upload(context.Background(), "42", "scan.pdf", bytes.NewReader([]byte("%PDF")))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if stored.PatientID != 42 {
		t.Errorf("expected patient 42, got %d", stored.PatientID)
	}
	if !repo.saveCalled {
		t.Error("expected save to be called")
	}
}

func TestServiceUploadValidationFailureSkipsSave(t *testing.T) {
	repo := newMockRepo()
	repo.fileErrs = []string{"Only PDF files are allowed"}
	svc := newTestService(t, repo, &mockHealth{accessible: true})

	_, err := svc.Upload(context.Background(), "abc", "scan.txt", bytes.NewReader([]byte("x")))
	msgs, ok := IsValidation(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(msgs) != 2 {
		t.Errorf("expected 2 messages, got %v", msgs)
	}
	if repo.saveCalled {
		t.Error("save must not run when validation fails")
	}
}

func TestServiceDownload(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(t, repo, &mockHealth{accessible: true})

	if _, err := svc.Upload(context.Background(), "5", "a.pdf", bytes.NewReader([]byte("x"))); err != nil {
		t.Fatal(err)
	}

	stored, err := svc.Download(context.Background(), "5", "")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if stored.PatientID != 5 {
		t.Errorf("unexpected report: %+v", stored)
	}

	if _, err := svc.Download(context.Background(), "6", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Download(context.Background(), "-1", ""); err == nil {
		t.Error("expected validation error for negative id")
	}
}

func TestServiceList(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(t, repo, &mockHealth{accessible: true})

	reports, err := svc.List(context.Background(), "9")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(reports) != 0 {
		t.Errorf("expected empty list, got %d", len(reports))
	}

	if _, err := svc.List(context.Background(), "zero"); err == nil {
		t.Error("expected validation error for non-numeric id")
	}
}

func TestServiceDelete(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(t, repo, &mockHealth{accessible: true})

	stored, err := svc.Upload(context.Background(), "3", "x.pdf", bytes.NewReader([]byte("d")))
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(context.Background(), "3", stored.FileName); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(context.Background(), "3", stored.FileName); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceDeletePropagatesStorageError(t *testing.T) {
	repo := newMockRepo()
	repo.deleteErr = &StorageError{Op: "archive", Err: errors.New("disk full")}
	svc := newTestService(t, repo, &mockHealth{accessible: true})

	err := svc.Delete(context.Background(), "3", "report_3_x.pdf")
	var se *StorageError
	if !errors.As(err, &se) {
		t.Errorf("expected StorageError, got %v", err)
	}
}

func TestServiceHealth(t *testing.T) {
	repo := newMockRepo()
	health := &mockHealth{accessible: true, locks: 4}
	svc := newTestService(t, repo, health)

	st := svc.Health()
	if !st.Healthy || !st.UploadDirOK || !st.PoolOK || !st.TaskRunnerOK {
		t.Errorf("expected healthy status, got %+v", st)
	}
	if st.RegisteredLocks != 4 {
		t.Errorf("expected 4 locks, got %d", st.RegisteredLocks)
	}

	health.accessible = false
	if st := svc.Health(); st.Healthy {
		t.Error("expected unhealthy when upload dir is inaccessible")
	}
}

func TestServiceStats(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(t, repo, &mockHealth{locks: 2})

	stats := svc.Stats()
	if stats.Pool.Size != 2 {
		t.Errorf("expected pool size 2, got %d", stats.Pool.Size)
	}
	if stats.TaskWorkers != 2 {
		t.Errorf("expected 2 task workers, got %d", stats.TaskWorkers)
	}
	if stats.RegisteredLocks != 2 {
		t.Errorf("expected 2 locks, got %d", stats.RegisteredLocks)
	}
}
