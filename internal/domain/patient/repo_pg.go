package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const patientCols = `mr_no, reg_date, reporting_date, name, gender, age, doctor, tests, amount, active, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.MrNo, &p.RegDate, &p.ReportingDate, &p.Name, &p.Gender, &p.Age,
		&p.Doctor, &p.Tests, &p.Amount, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO patients (reg_date, reporting_date, name, gender, age, doctor, tests, amount, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
		RETURNING mr_no`,
		p.RegDate, p.ReportingDate, p.Name, p.Gender, p.Age, p.Doctor, p.Tests, p.Amount,
	).Scan(&p.MrNo)
}

func (r *repoPG) GetByMrNo(ctx context.Context, mrNo int) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE mr_no = $1 AND active`, mrNo))
}

func (r *repoPG) List(ctx context.Context, search string, limit, offset int) ([]*Patient, int, error) {
	where := `WHERE active`
	args := []interface{}{}
	if search != "" {
		where += ` AND name ILIKE $1`
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patients `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM patients %s ORDER BY mr_no DESC LIMIT $%d OFFSET $%d`,
		patientCols, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patients SET reporting_date=$2, name=$3, gender=$4, age=$5,
			doctor=$6, tests=$7, amount=$8, updated_at=NOW()
		WHERE mr_no = $1 AND active`,
		p.MrNo, p.ReportingDate, p.Name, p.Gender, p.Age, p.Doctor, p.Tests, p.Amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, mrNo int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE patients SET active = FALSE, updated_at = NOW() WHERE mr_no = $1 AND active`, mrNo)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{ByGender: make(map[string]int)}

	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE reg_date::date = CURRENT_DATE),
		       COALESCE(SUM(amount) FILTER (WHERE reg_date::date = CURRENT_DATE), 0),
		       COUNT(*)
		FROM patients WHERE active`).Scan(&st.TodayCount, &st.TodayRevenue, &st.TotalCount)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT gender, COUNT(*) FROM patients WHERE active GROUP BY gender`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var gender string
		var count int
		if err := rows.Scan(&gender, &count); err != nil {
			return nil, err
		}
		st.ByGender[gender] = count
	}
	return st, rows.Err()
}
