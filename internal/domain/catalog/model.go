package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// LabTest is an orderable test in the lab's catalog. NormalRange and Unit
// are printed on lab reports next to the hand-filled result value.
type LabTest struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Category    string    `db:"category" json:"category"`
	Price       float64   `db:"price" json:"price"`
	Unit        string    `db:"unit" json:"unit"`
	NormalRange string    `db:"normal_range" json:"normal_range"`
	Description string    `db:"description" json:"description"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Validate checks catalog input and returns every problem found.
func (t *LabTest) Validate() []string {
	var errs []string
	if strings.TrimSpace(t.Name) == "" {
		errs = append(errs, "Test name is required")
	}
	if t.Price < 0 {
		errs = append(errs, "Price must not be negative")
	}
	return errs
}
