package admin

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const doctorCols = `id, name, specialization, phone, active, created_at, updated_at`

func (r *repoPG) CreateDoctor(ctx context.Context, d *Doctor) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO doctors (id, name, specialization, phone, active)
		VALUES ($1, $2, $3, $4, TRUE)`,
		d.ID, d.Name, d.Specialization, d.Phone)
	return err
}

func (r *repoPG) ListDoctors(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM doctors WHERE active`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+doctorCols+` FROM doctors WHERE active ORDER BY name LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Doctor
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.Specialization, &d.Phone,
			&d.Active, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &d)
	}
	return items, total, rows.Err()
}

func (r *repoPG) UpdateDoctor(ctx context.Context, d *Doctor) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE doctors SET name=$2, specialization=$3, phone=$4, updated_at=NOW()
		WHERE id = $1 AND active`,
		d.ID, d.Name, d.Specialization, d.Phone)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDoctorNotFound
	}
	return nil
}

func (r *repoPG) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE doctors SET active = FALSE, updated_at = NOW() WHERE id = $1 AND active`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDoctorNotFound
	}
	return nil
}

func (r *repoPG) CreateStaff(ctx context.Context, s *StaffMember) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, username, full_name, role, active)
		VALUES ($1, $2, $3, $4, TRUE)`,
		s.ID, s.Username, s.FullName, s.Role)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateUser
	}
	return err
}

func (r *repoPG) ListStaff(ctx context.Context) ([]*StaffMember, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, username, full_name, role, active, created_at
		 FROM users WHERE active ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*StaffMember
	for rows.Next() {
		var s StaffMember
		if err := rows.Scan(&s.ID, &s.Username, &s.FullName, &s.Role, &s.Active, &s.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &s)
	}
	return items, rows.Err()
}

func (r *repoPG) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var st DashboardStats
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE reg_date::date = CURRENT_DATE),
		       COALESCE(SUM(amount) FILTER (WHERE reg_date::date = CURRENT_DATE), 0)
		FROM patients WHERE active`).Scan(&st.TotalPatients, &st.TodayPatients, &st.TodayRevenue)
	if err != nil {
		return nil, err
	}
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tests WHERE active`).Scan(&st.TotalTests); err != nil {
		return nil, err
	}
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM doctors WHERE active`).Scan(&st.TotalDoctors); err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *repoPG) DailyStats(ctx context.Context, days int) ([]*PeriodStat, error) {
	return r.periodStats(ctx, `
		SELECT TO_CHAR(reg_date::date, 'YYYY-MM-DD'), COUNT(*), COALESCE(SUM(amount), 0)
		FROM patients
		WHERE active AND reg_date >= CURRENT_DATE - $1 * INTERVAL '1 day'
		GROUP BY reg_date::date
		ORDER BY reg_date::date`, days)
}

func (r *repoPG) WeeklyStats(ctx context.Context, weeks int) ([]*PeriodStat, error) {
	return r.periodStats(ctx, `
		SELECT TO_CHAR(DATE_TRUNC('week', reg_date), 'IYYY-"W"IW'), COUNT(*), COALESCE(SUM(amount), 0)
		FROM patients
		WHERE active AND reg_date >= DATE_TRUNC('week', CURRENT_DATE) - $1 * INTERVAL '1 week'
		GROUP BY DATE_TRUNC('week', reg_date)
		ORDER BY DATE_TRUNC('week', reg_date)`, weeks)
}

func (r *repoPG) MonthlyStats(ctx context.Context, months int) ([]*PeriodStat, error) {
	return r.periodStats(ctx, `
		SELECT TO_CHAR(DATE_TRUNC('month', reg_date), 'YYYY-MM'), COUNT(*), COALESCE(SUM(amount), 0)
		FROM patients
		WHERE active AND reg_date >= DATE_TRUNC('month', CURRENT_DATE) - $1 * INTERVAL '1 month'
		GROUP BY DATE_TRUNC('month', reg_date)
		ORDER BY DATE_TRUNC('month', reg_date)`, months)
}

// YearlyCounts joins the patient registrations against a generated month
// series so empty months still come back as zero buckets.
func (r *repoPG) YearlyCounts(ctx context.Context, year int) ([]*MonthBucket, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m, COUNT(p.reg_date), COALESCE(SUM(p.amount), 0)
		FROM generate_series(1, 12) AS m
		LEFT JOIN patients p
		  ON p.active
		 AND EXTRACT(YEAR FROM p.reg_date) = $1
		 AND EXTRACT(MONTH FROM p.reg_date) = m
		GROUP BY m
		ORDER BY m`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*MonthBucket
	for rows.Next() {
		var month int
		var b MonthBucket
		if err := rows.Scan(&month, &b.Patients, &b.Revenue); err != nil {
			return nil, err
		}
		b.Month = time.Month(month).String()[:3]
		items = append(items, &b)
	}
	return items, rows.Err()
}

func (r *repoPG) periodStats(ctx context.Context, query string, arg int) ([]*PeriodStat, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPeriodStats(rows)
}

func scanPeriodStats(rows pgx.Rows) ([]*PeriodStat, error) {
	var items []*PeriodStat
	for rows.Next() {
		var ps PeriodStat
		if err := rows.Scan(&ps.Period, &ps.Count, &ps.Revenue); err != nil {
			return nil, err
		}
		items = append(items, &ps)
	}
	return items, rows.Err()
}

// TestStatistics explodes the comma-separated tests column and counts orders
// per test name.
func (r *repoPG) TestStatistics(ctx context.Context) ([]*TestStat, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT TRIM(t), COUNT(*)
		FROM patients, UNNEST(STRING_TO_ARRAY(tests, ',')) AS t
		WHERE active AND TRIM(t) <> ''
		GROUP BY TRIM(t)
		ORDER BY COUNT(*) DESC, TRIM(t)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*TestStat
	for rows.Next() {
		var ts TestStat
		if err := rows.Scan(&ts.TestName, &ts.Count); err != nil {
			return nil, err
		}
		items = append(items, &ts)
	}
	return items, rows.Err()
}

func (r *repoPG) DoctorStatistics(ctx context.Context) ([]*DoctorStat, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT doctor, COUNT(*), COALESCE(SUM(amount), 0)
		FROM patients
		WHERE active AND doctor <> ''
		GROUP BY doctor
		ORDER BY COUNT(*) DESC, doctor`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*DoctorStat
	for rows.Next() {
		var ds DoctorStat
		if err := rows.Scan(&ds.Doctor, &ds.Count, &ds.Revenue); err != nil {
			return nil, err
		}
		items = append(items, &ds)
	}
	return items, rows.Err()
}
