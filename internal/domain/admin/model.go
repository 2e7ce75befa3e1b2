package admin

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Doctor is a referring physician. Patients record the doctor by name at
// registration; this table backs the referral statistics.
type Doctor struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Specialization string    `db:"specialization" json:"specialization"`
	Phone          string    `db:"phone" json:"phone"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

func (d *Doctor) Validate() []string {
	var errs []string
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, "Doctor name is required")
	}
	return errs
}

// StaffMember is a lab system user. Credentials are managed out of band;
// this record only carries identity and role.
type StaffMember struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	FullName  string    `db:"full_name" json:"full_name"`
	Role      string    `db:"role" json:"role"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

var validRoles = map[string]bool{
	"admin": true, "receptionist": true, "technician": true,
}

func (s *StaffMember) Validate() []string {
	var errs []string
	if strings.TrimSpace(s.Username) == "" {
		errs = append(errs, "Username is required")
	}
	if !validRoles[s.Role] {
		errs = append(errs, "Role must be admin, receptionist or technician")
	}
	return errs
}

// DashboardStats is the headline block on the admin dashboard.
type DashboardStats struct {
	TotalPatients int     `json:"total_patients"`
	TodayPatients int     `json:"today_patients"`
	TodayRevenue  float64 `json:"today_revenue"`
	TotalTests    int     `json:"total_tests"`
	TotalDoctors  int     `json:"total_doctors"`
}

// PeriodStat is one bucket of a registrations-over-time series.
type PeriodStat struct {
	Period  string  `json:"period"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// MonthBucket is one calendar month of the yearly overview.
type MonthBucket struct {
	Month    string  `json:"month"`
	Patients int     `json:"patients"`
	Revenue  float64 `json:"revenue"`
}

// YearlyOverview is the month-by-month picture of one year: twelve buckets
// January through December plus totals and per-month averages.
type YearlyOverview struct {
	Year               int            `json:"year"`
	Months             []*MonthBucket `json:"months"`
	TotalPatients      int            `json:"yearly_total_patients"`
	TotalRevenue       float64        `json:"yearly_total_revenue"`
	AvgMonthlyPatients float64        `json:"avg_monthly_patients"`
	AvgMonthlyRevenue  float64        `json:"avg_monthly_revenue"`
}

// buildYearlyOverview derives totals and averages from the monthly buckets.
// Averages are rounded for display: patients to one decimal, revenue to two.
func buildYearlyOverview(year int, months []*MonthBucket) *YearlyOverview {
	ov := &YearlyOverview{Year: year, Months: months}
	for _, m := range months {
		ov.TotalPatients += m.Patients
		ov.TotalRevenue += m.Revenue
	}
	if n := len(months); n > 0 {
		ov.AvgMonthlyPatients = math.Round(float64(ov.TotalPatients)/float64(n)*10) / 10
		ov.AvgMonthlyRevenue = math.Round(ov.TotalRevenue/float64(n)*100) / 100
	}
	return ov
}

// TestStat counts how often a test has been ordered.
type TestStat struct {
	TestName string `json:"test_name"`
	Count    int    `json:"count"`
}

// DoctorStat summarizes referrals per doctor.
type DoctorStat struct {
	Doctor  string  `json:"doctor"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}
