package admin

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Defaults for the time-series statistics endpoints.
const (
	defaultDays   = 30
	defaultWeeks  = 12
	defaultMonths = 12
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "admin_service").Logger(),
	}
}

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	if err := s.repo.CreateDoctor(ctx, d); err != nil {
		return err
	}
	s.logger.Info().Str("doctor_id", d.ID.String()).Str("name", d.Name).Msg("doctor added")
	return nil
}

func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	return s.repo.ListDoctors(ctx, limit, offset)
}

func (s *Service) UpdateDoctor(ctx context.Context, d *Doctor) error {
	return s.repo.UpdateDoctor(ctx, d)
}

func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteDoctor(ctx, id)
}

func (s *Service) CreateStaff(ctx context.Context, m *StaffMember) error {
	if err := s.repo.CreateStaff(ctx, m); err != nil {
		return err
	}
	s.logger.Info().Str("username", m.Username).Str("role", m.Role).Msg("staff member added")
	return nil
}

func (s *Service) ListStaff(ctx context.Context) ([]*StaffMember, error) {
	return s.repo.ListStaff(ctx)
}

func (s *Service) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	return s.repo.DashboardStats(ctx)
}

func (s *Service) DailyStats(ctx context.Context, days int) ([]*PeriodStat, error) {
	if days <= 0 {
		days = defaultDays
	}
	return s.repo.DailyStats(ctx, days)
}

func (s *Service) WeeklyStats(ctx context.Context, weeks int) ([]*PeriodStat, error) {
	if weeks <= 0 {
		weeks = defaultWeeks
	}
	return s.repo.WeeklyStats(ctx, weeks)
}

func (s *Service) MonthlyStats(ctx context.Context, months int) ([]*PeriodStat, error) {
	if months <= 0 {
		months = defaultMonths
	}
	return s.repo.MonthlyStats(ctx, months)
}

// YearlyOverview aggregates the given year month by month. A year of zero or
// less means the current year.
func (s *Service) YearlyOverview(ctx context.Context, year int) (*YearlyOverview, error) {
	if year <= 0 {
		year = time.Now().Year()
	}
	months, err := s.repo.YearlyCounts(ctx, year)
	if err != nil {
		return nil, err
	}
	return buildYearlyOverview(year, months), nil
}

func (s *Service) TestStatistics(ctx context.Context) ([]*TestStat, error) {
	return s.repo.TestStatistics(ctx)
}

func (s *Service) DoctorStatistics(ctx context.Context) ([]*DoctorStat, error) {
	return s.repo.DoctorStatistics(ctx)
}
