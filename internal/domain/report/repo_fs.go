package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/labms/labms/internal/config"
	"github.com/labms/labms/internal/platform/workerpool"
)

// Timeouts for pool-backed filesystem work.
const (
	scanTimeout = 10 * time.Second
	statTimeout = 5 * time.Second
)

// backupPrefix marks copies made after a successful save; deletedPrefix marks
// files archived by Delete. Both live in the backup directory and age out via
// CleanupBackups.
const (
	backupPrefix  = "backup_"
	deletedPrefix = "deleted_"
)

// FSRepository is the filesystem-backed report store.
type FSRepository struct {
	uploadDir string
	backupDir string
	maxBytes  int64
	retention time.Duration
	pool      *workerpool.Pool
	locks     *lockRegistry
	logger    zerolog.Logger
	now       func() time.Time
}

// NewFSRepository builds a repository over the configured upload directory.
// The shared pool bounds concurrent filesystem scans.
func NewFSRepository(cfg *config.Config, pool *workerpool.Pool, logger zerolog.Logger) *FSRepository {
	return &FSRepository{
		uploadDir: cfg.UploadDir,
		backupDir: cfg.BackupDir(),
		maxBytes:  cfg.MaxUploadBytes,
		retention: time.Duration(cfg.BackupRetentionDays) * 24 * time.Hour,
		pool:      pool,
		locks:     newLockRegistry(),
		logger:    logger.With().Str("component", "report_fs").Logger(),
		now:       time.Now,
	}
}

// ValidateFile checks the filename and measures the file size by seeking to
// the end and rewinding, so the reader is positioned at the start afterwards.
func (r *FSRepository) ValidateFile(name string, f io.ReadSeeker) []string {
	var errs []string

	if strings.TrimSpace(name) == "" {
		return []string{"No file selected"}
	}
	if !AllowedExtensions[extensionOf(name)] {
		errs = append(errs, "Only PDF files are allowed")
	}

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return append(errs, "Unable to determine file size")
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return append(errs, "Unable to determine file size")
	}
	if size > r.maxBytes {
		errs = append(errs, fmt.Sprintf("File size exceeds %dMB limit", r.maxBytes/(1024*1024)))
	}

	return errs
}

// ValidatePatientID parses and validates a raw patient id.
func (r *FSRepository) ValidatePatientID(raw string) (int, []string) {
	return parsePatientID(raw)
}

// ConcurrentValidation runs file and patient id validation in parallel.
// Messages are appended in completion order, so the combined list is
// unordered across the two validators.
func (r *FSRepository) ConcurrentValidation(name string, f io.ReadSeeker, rawID string) (int, []string) {
	results := make(chan []string, 2)
	var patientID int

	go func() {
		results <- r.ValidateFile(name, f)
	}()
	go func() {
		id, errs := r.ValidatePatientID(rawID)
		patientID = id
		results <- errs
	}()

	var all []string
	for i := 0; i < 2; i++ {
		all = append(all, <-results...)
	}
	return patientID, all
}

// Save writes the upload under its canonical name, verifies the write landed,
// and schedules a backup copy. The per-path lock serializes writers of the
// same name; the backup runs after the lock is released and is never awaited.
func (r *FSRepository) Save(ctx context.Context, patientID int, originalName string, src io.Reader) (*StoredReport, error) {
	name := buildFileName(patientID, originalName, r.now())
	path := filepath.Join(r.uploadDir, name)

	lock := r.locks.get(path)
	lock.Lock()

	size, err := writeFile(path, src)
	if err != nil {
		lock.Unlock()
		return nil, &StorageError{Op: "save", Err: err}
	}

	info, err := os.Stat(path)
	if err != nil || info.Size() != size {
		lock.Unlock()
		if err == nil {
			err = fmt.Errorf("wrote %d bytes but file has %d", size, info.Size())
		}
		return nil, &StorageError{Op: "verify", Err: err}
	}
	lock.Unlock()

	r.pool.Go("backup:"+name, func() error {
		return r.backup(name)
	})

	return &StoredReport{
		PatientID:    patientID,
		FileName:     name,
		OriginalName: originalName,
		Path:         path,
		Size:         info.Size(),
		UploadedAt:   info.ModTime(),
	}, nil
}

func writeFile(path string, src io.Reader) (int64, error) {
	dst, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	size, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	return size, err
}

// backup copies a saved report into the backup directory under the backup_
// prefix. It takes the source path lock so a concurrent rewrite of the same
// name cannot interleave with the copy.
func (r *FSRepository) backup(name string) error {
	srcPath := filepath.Join(r.uploadDir, name)
	lock := r.locks.get(srcPath)
	lock.Lock()
	defer lock.Unlock()

	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open source for backup: %w", err)
	}
	defer src.Close()

	if _, err := writeFile(filepath.Join(r.backupDir, backupPrefix+name), src); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}

// Resolve finds a report for download. An explicit filename is sanitized and
// checked to belong to the patient; an empty filename means "latest", which
// scans the patient's files on the pool with a bounded wait.
func (r *FSRepository) Resolve(ctx context.Context, patientID int, filename string) (*StoredReport, error) {
	if filename != "" {
		return r.resolveNamed(patientID, filename)
	}
	return r.resolveLatest(ctx, patientID)
}

func (r *FSRepository) resolveNamed(patientID int, filename string) (*StoredReport, error) {
	name := sanitizeFilename(filename)
	if name == "" || !strings.HasPrefix(name, fmt.Sprintf("report_%d_", patientID)) {
		return nil, ErrNotFound
	}

	path := filepath.Join(r.uploadDir, name)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Op: "stat", Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, ErrNotFound
	}

	return r.storedReport(patientID, name, info), nil
}

func (r *FSRepository) resolveLatest(ctx context.Context, patientID int) (*StoredReport, error) {
	task, err := r.pool.Submit("scan-latest", func() (interface{}, error) {
		matches, err := r.globPatient(patientID)
		if err != nil {
			return nil, err
		}

		var newest string
		var newestInfo os.FileInfo
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			if newestInfo == nil || info.ModTime().After(newestInfo.ModTime()) {
				newest, newestInfo = m, info
			}
		}
		if newestInfo == nil {
			return nil, ErrNotFound
		}
		return r.storedReport(patientID, filepath.Base(newest), newestInfo), nil
	})
	if err != nil {
		return nil, &StorageError{Op: "scan", Err: err}
	}

	waitCtx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()
	res, err := task.Wait(waitCtx)
	if err != nil {
		return nil, classifyWaitError("scan", err)
	}
	return res.(*StoredReport), nil
}

// List returns the patient's reports newest first. File metadata is gathered
// with one pool task per file; a file whose stat fails or times out is
// dropped from the listing rather than failing the request.
func (r *FSRepository) List(ctx context.Context, patientID int) ([]*StoredReport, error) {
	matches, err := r.globPatient(patientID)
	if err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}

	type statResult struct {
		path string
		info os.FileInfo
	}

	tasks := make([]*workerpool.Task, 0, len(matches))
	for _, m := range matches {
		m := m
		task, err := r.pool.Submit("stat:"+filepath.Base(m), func() (interface{}, error) {
			info, err := os.Stat(m)
			if err != nil {
				return nil, err
			}
			return statResult{path: m, info: info}, nil
		})
		if err != nil {
			return nil, &StorageError{Op: "list", Err: err}
		}
		tasks = append(tasks, task)
	}

	reports := make([]*StoredReport, 0, len(tasks))
	for _, task := range tasks {
		waitCtx, cancel := context.WithTimeout(ctx, statTimeout)
		res, err := task.Wait(waitCtx)
		cancel()
		if err != nil {
			r.logger.Warn().Err(err).Msg("skipping unreadable report file")
			continue
		}
		sr := res.(statResult)
		if !sr.info.Mode().IsRegular() {
			continue
		}
		reports = append(reports, r.storedReport(patientID, filepath.Base(sr.path), sr.info))
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].UploadedAt.After(reports[j].UploadedAt)
	})
	return reports, nil
}

// Delete archives the named report into the backup directory under the
// deleted_ prefix and schedules a retention sweep of old backups.
func (r *FSRepository) Delete(ctx context.Context, patientID int, filename string) error {
	name := sanitizeFilename(filename)
	if name == "" || !strings.HasPrefix(name, fmt.Sprintf("report_%d_", patientID)) {
		return ErrNotFound
	}

	path := filepath.Join(r.uploadDir, name)
	lock := r.locks.get(path)
	lock.Lock()
	defer lock.Unlock()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return &StorageError{Op: "stat", Err: err}
	}

	if err := os.Rename(path, filepath.Join(r.backupDir, deletedPrefix+name)); err != nil {
		return &StorageError{Op: "archive", Err: err}
	}

	r.pool.Go("cleanup-backups", func() error {
		_, err := r.CleanupBackups(context.Background())
		return err
	})

	return nil
}

// CleanupBackups removes backup files older than the retention window.
// Per-file failures are logged and skipped, so a sweep always visits every
// candidate and repeated sweeps are harmless.
func (r *FSRepository) CleanupBackups(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(r.backupDir)
	if err != nil {
		return 0, &StorageError{Op: "cleanup", Err: err}
	}

	cutoff := r.now().Add(-r.retention)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".pdf") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			r.logger.Warn().Err(err).Str("file", entry.Name()).Msg("cleanup: stat failed")
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(r.backupDir, entry.Name())); err != nil {
			r.logger.Warn().Err(err).Str("file", entry.Name()).Msg("cleanup: remove failed")
			continue
		}
		removed++
	}

	if removed > 0 {
		r.logger.Info().Int("removed", removed).Msg("backup retention sweep")
	}
	return removed, nil
}

// Accessible reports whether the upload directory can be read. Used by the
// health endpoint.
func (r *FSRepository) Accessible() bool {
	info, err := os.Stat(r.uploadDir)
	return err == nil && info.IsDir()
}

// LockCount returns the number of per-path locks ever created.
func (r *FSRepository) LockCount() int {
	return r.locks.size()
}

func (r *FSRepository) globPatient(patientID int) ([]string, error) {
	return filepath.Glob(filepath.Join(r.uploadDir, fmt.Sprintf("report_%d_*.pdf", patientID)))
}

func (r *FSRepository) storedReport(patientID int, name string, info os.FileInfo) *StoredReport {
	return &StoredReport{
		PatientID:    patientID,
		FileName:     name,
		OriginalName: originalNameOf(name),
		Path:         filepath.Join(r.uploadDir, name),
		Size:         info.Size(),
		UploadedAt:   info.ModTime(),
	}
}

// originalNameOf recovers the client filename from a canonical stored name.
// Unknown shapes return the name unchanged.
func originalNameOf(name string) string {
	parts := strings.SplitN(name, "_", 5)
	if len(parts) == 5 && parts[0] == "report" {
		return parts[4]
	}
	return name
}

func classifyWaitError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case errors.Is(err, workerpool.ErrTimeout):
		return ErrTimeout
	default:
		return &StorageError{Op: op, Err: err}
	}
}
