package report

import (
	"context"
	"io"
)

// Repository stores and retrieves report files. The filesystem implementation
// lives in repo_fs.go; tests substitute in-memory fakes.
type Repository interface {
	// ValidateFile checks the client filename and the file size (measured by
	// seeking, so the reader is rewound before returning). It returns a list
	// of validation messages, empty when the file is acceptable.
	ValidateFile(name string, f io.ReadSeeker) []string

	// ValidatePatientID parses and validates a raw patient id.
	ValidatePatientID(raw string) (int, []string)

	// ConcurrentValidation runs the file and patient id validations in
	// parallel and returns the parsed id plus the combined messages. The
	// order of messages follows validation completion, not input order.
	ConcurrentValidation(name string, f io.ReadSeeker, rawID string) (int, []string)

	// Save writes the file under the canonical report name, verifies the
	// write, and schedules an asynchronous backup copy.
	Save(ctx context.Context, patientID int, originalName string, src io.Reader) (*StoredReport, error)

	// Resolve finds a report for download. With a filename it resolves that
	// exact file; with an empty filename it returns the patient's most
	// recently modified report.
	Resolve(ctx context.Context, patientID int, filename string) (*StoredReport, error)

	// List returns the patient's reports sorted newest first. No matches is
	// not an error: the slice is empty.
	List(ctx context.Context, patientID int) ([]*StoredReport, error)

	// Delete archives the named report into the backup directory and
	// schedules a retention sweep.
	Delete(ctx context.Context, patientID int, filename string) error

	// CleanupBackups removes backup files older than the retention window.
	// It returns the number of files removed.
	CleanupBackups(ctx context.Context) (int, error)
}
