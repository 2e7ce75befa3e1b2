package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound means no active lab test matched.
var ErrNotFound = errors.New("lab test not found")

// Repository persists the lab test catalog.
type Repository interface {
	Create(ctx context.Context, t *LabTest) error
	GetByID(ctx context.Context, id uuid.UUID) (*LabTest, error)
	// List returns active tests ordered by name, optionally filtered by
	// category.
	List(ctx context.Context, category string, limit, offset int) ([]*LabTest, int, error)
	// GetByNames resolves exact test names to catalog entries. Unknown names
	// are simply absent from the result.
	GetByNames(ctx context.Context, names []string) ([]*LabTest, error)
	Update(ctx context.Context, t *LabTest) error
	// Delete deactivates the test; existing patient orders keep its name.
	Delete(ctx context.Context, id uuid.UUID) error
}
