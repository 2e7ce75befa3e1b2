package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const testCols = `id, name, category, price, unit, normal_range, description, active, created_at, updated_at`

func scanTest(row pgx.Row) (*LabTest, error) {
	var t LabTest
	err := row.Scan(&t.ID, &t.Name, &t.Category, &t.Price, &t.Unit,
		&t.NormalRange, &t.Description, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &t, err
}

func (r *repoPG) Create(ctx context.Context, t *LabTest) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tests (id, name, category, price, unit, normal_range, description, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)`,
		t.ID, t.Name, t.Category, t.Price, t.Unit, t.NormalRange, t.Description)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*LabTest, error) {
	return scanTest(r.pool.QueryRow(ctx,
		`SELECT `+testCols+` FROM tests WHERE id = $1 AND active`, id))
}

func (r *repoPG) List(ctx context.Context, category string, limit, offset int) ([]*LabTest, int, error) {
	where := `WHERE active`
	args := []interface{}{}
	if category != "" {
		where += ` AND category = $1`
		args = append(args, category)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tests `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM tests %s ORDER BY name LIMIT $%d OFFSET $%d`,
		testCols, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*LabTest
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}

func (r *repoPG) GetByNames(ctx context.Context, names []string) ([]*LabTest, error) {
	if len(names) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+testCols+` FROM tests WHERE active AND name = ANY($1)`, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*LabTest
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, t *LabTest) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tests SET name=$2, category=$3, price=$4, unit=$5,
			normal_range=$6, description=$7, updated_at=NOW()
		WHERE id = $1 AND active`,
		t.ID, t.Name, t.Category, t.Price, t.Unit, t.NormalRange, t.Description)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tests SET active = FALSE, updated_at = NOW() WHERE id = $1 AND active`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
