package patient

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Genders accepted at registration.
var validGenders = map[string]bool{
	"Male": true, "Female": true, "Other": true,
}

// namePattern allows letters, spaces, dots, hyphens and apostrophes.
var namePattern = regexp.MustCompile(`^[A-Za-z .'-]+$`)

const (
	MinAge = 1
	MaxAge = 120
)

// Patient maps to the patients table. Tests holds the comma-separated names
// of the lab tests ordered at registration; Amount is the billed total.
type Patient struct {
	MrNo          int        `db:"mr_no" json:"mr_no"`
	RegDate       time.Time  `db:"reg_date" json:"reg_date"`
	ReportingDate *time.Time `db:"reporting_date" json:"reporting_date,omitempty"`
	Name          string     `db:"name" json:"name"`
	Gender        string     `db:"gender" json:"gender"`
	Age           int        `db:"age" json:"age"`
	Doctor        string     `db:"doctor" json:"doctor"`
	Tests         string     `db:"tests" json:"tests"`
	Amount        float64    `db:"amount" json:"amount"`
	Active        bool       `db:"active" json:"active"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Validate checks registration input and returns every problem found.
func (p *Patient) Validate() []string {
	var errs []string

	name := strings.TrimSpace(p.Name)
	if name == "" {
		errs = append(errs, "Name is required")
	} else if !namePattern.MatchString(name) {
		errs = append(errs, "Name may only contain letters, spaces, dots and hyphens")
	}

	if p.Age < MinAge || p.Age > MaxAge {
		errs = append(errs, fmt.Sprintf("Age must be between %d and %d", MinAge, MaxAge))
	}

	if !validGenders[p.Gender] {
		errs = append(errs, "Gender must be Male, Female or Other")
	}

	if p.Amount < 0 {
		errs = append(errs, "Amount must not be negative")
	}

	return errs
}

// TestNames splits the comma-separated tests field into trimmed names.
func (p *Patient) TestNames() []string {
	var names []string
	for _, t := range strings.Split(p.Tests, ",") {
		if t = strings.TrimSpace(t); t != "" {
			names = append(names, t)
		}
	}
	return names
}

// Stats summarizes registrations for the dashboard.
type Stats struct {
	TodayCount   int            `json:"today_count"`
	TodayRevenue float64        `json:"today_revenue"`
	TotalCount   int            `json:"total_count"`
	ByGender     map[string]int `json:"by_gender"`
}
