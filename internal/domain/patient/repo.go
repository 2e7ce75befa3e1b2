package patient

import (
	"context"
	"errors"
)

// ErrNotFound means no active patient matched the MR number.
var ErrNotFound = errors.New("patient not found")

// Repository persists patients. The Postgres implementation lives in
// repo_pg.go.
type Repository interface {
	// Create inserts the patient and fills in the assigned MR number.
	Create(ctx context.Context, p *Patient) error
	GetByMrNo(ctx context.Context, mrNo int) (*Patient, error)
	// List returns active patients newest first, optionally filtered by a
	// case-insensitive name search.
	List(ctx context.Context, search string, limit, offset int) ([]*Patient, int, error)
	Update(ctx context.Context, p *Patient) error
	// Delete deactivates the patient; the row is kept for statistics.
	Delete(ctx context.Context, mrNo int) error
	Stats(ctx context.Context) (*Stats, error)
}
