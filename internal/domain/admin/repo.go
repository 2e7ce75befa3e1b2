package admin

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrDoctorNotFound = errors.New("doctor not found")
	ErrDuplicateUser  = errors.New("username already taken")
)

// Repository backs the admin area: doctor management, staff accounts and the
// dashboard statistics queries.
type Repository interface {
	CreateDoctor(ctx context.Context, d *Doctor) error
	ListDoctors(ctx context.Context, limit, offset int) ([]*Doctor, int, error)
	UpdateDoctor(ctx context.Context, d *Doctor) error
	// DeleteDoctor deactivates the doctor; patient rows keep the name.
	DeleteDoctor(ctx context.Context, id uuid.UUID) error

	CreateStaff(ctx context.Context, s *StaffMember) error
	ListStaff(ctx context.Context) ([]*StaffMember, error)

	DashboardStats(ctx context.Context) (*DashboardStats, error)
	// DailyStats returns one bucket per day for the last `days` days,
	// oldest first.
	DailyStats(ctx context.Context, days int) ([]*PeriodStat, error)
	// WeeklyStats returns one bucket per ISO week for the last `weeks` weeks.
	WeeklyStats(ctx context.Context, weeks int) ([]*PeriodStat, error)
	// MonthlyStats returns one bucket per month for the last `months` months.
	MonthlyStats(ctx context.Context, months int) ([]*PeriodStat, error)
	// YearlyCounts returns twelve buckets, January through December of the
	// given year, zero-filled for months without registrations.
	YearlyCounts(ctx context.Context, year int) ([]*MonthBucket, error)
	// TestStatistics counts orders per test name, most ordered first.
	TestStatistics(ctx context.Context) ([]*TestStat, error)
	// DoctorStatistics summarizes referrals per doctor, busiest first.
	DoctorStatistics(ctx context.Context) ([]*DoctorStat, error)
}
