package report

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Upload constraints.
const (
	MaxPatientID = 999999
)

// AllowedExtensions is the set of accepted report file extensions,
// lowercase without the dot.
var AllowedExtensions = map[string]bool{
	"pdf": true,
}

// StoredReport describes one report file on disk.
type StoredReport struct {
	PatientID    int       `json:"patient_id"`
	FileName     string    `json:"filename"`
	OriginalName string    `json:"original_name,omitempty"`
	Path         string    `json:"-"`
	Size         int64     `json:"size_bytes"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// sanitizeFilename reduces an untrusted client filename to a safe basename:
// path components are stripped, whitespace becomes underscores, and anything
// outside [A-Za-z0-9._-] is removed. The result may be empty.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._-")
	if name == "." || name == ".." {
		return ""
	}
	return name
}

// buildFileName produces the canonical stored name for an upload:
// report_{patientID}_{yyyyMMdd_HHmmss}_{sanitizedOriginal}.
func buildFileName(patientID int, originalName string, now time.Time) string {
	return fmt.Sprintf("report_%d_%s_%s",
		patientID, now.Format("20060102_150405"), sanitizeFilename(originalName))
}

// extensionOf returns the lowercase extension of name without the dot.
func extensionOf(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	return strings.TrimPrefix(ext, ".")
}

// parsePatientID validates a raw patient id string. It returns the parsed id
// and a list of validation messages; the id is only meaningful when the list
// is empty.
func parsePatientID(raw string) (int, []string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, []string{"Patient ID is required"}
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, []string{"Patient ID must be a number"}
	}
	if id <= 0 {
		return 0, []string{"Patient ID must be positive"}
	}
	if id > MaxPatientID {
		return 0, []string{fmt.Sprintf("Patient ID must not exceed %d", MaxPatientID)}
	}
	return id, nil
}
