package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/labms/labms/internal/domain/patient"
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "catalog_service").Logger(),
	}
}

func (s *Service) Create(ctx context.Context, t *LabTest) error {
	if err := s.repo.Create(ctx, t); err != nil {
		return err
	}
	s.logger.Info().Str("test_id", t.ID.String()).Str("name", t.Name).Msg("lab test created")
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*LabTest, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, category string, limit, offset int) ([]*LabTest, int, error) {
	return s.repo.List(ctx, category, limit, offset)
}

func (s *Service) Update(ctx context.Context, t *LabTest) error {
	return s.repo.Update(ctx, t)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// DetailsByNames implements patient.CatalogReader so registration receipts
// and lab reports can pull prices and reference ranges from the catalog.
func (s *Service) DetailsByNames(ctx context.Context, names []string) (map[string]patient.TestDetail, error) {
	tests, err := s.repo.GetByNames(ctx, names)
	if err != nil {
		return nil, err
	}
	details := make(map[string]patient.TestDetail, len(tests))
	for _, t := range tests {
		details[t.Name] = patient.TestDetail{
			Name:        t.Name,
			Price:       t.Price,
			Unit:        t.Unit,
			NormalRange: t.NormalRange,
		}
	}
	return details, nil
}
