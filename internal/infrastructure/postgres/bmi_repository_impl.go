package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/bmi-service/internal/domain/entity"
	"github.com/oksasatya/bmi-service/internal/domain/repository"
)

type BMIRepository struct {
	pool      *pgxpool.Pool
	ownership entity.Ownership
}

func NewBMIRepository(pool *pgxpool.Pool, ownership entity.Ownership) *BMIRepository {
	return &BMIRepository{pool: pool, ownership: ownership}
}

func (r *BMIRepository) Ownership() entity.Ownership { return r.ownership }

func (r *BMIRepository) ownerColumn() string { return repository.OwnerColumn(r.ownership) }

func (r *BMIRepository) ownerValue(b *entity.BMI) any {
	if r.ownership == entity.OwnedByUser {
		return b.UserID
	}
	return b.Name
}

func (r *BMIRepository) ownerDest(b *entity.BMI) any {
	if r.ownership == entity.OwnedByUser {
		return &b.UserID
	}
	return &b.Name
}

func (r *BMIRepository) selectCols() string {
	return "id, weight, height, bmi, status, bmi_date, " + r.ownerColumn()
}

func (r *BMIRepository) Create(ctx context.Context, b *entity.BMI) error {
	q := `INSERT INTO bmi (weight, height, bmi, status, ` + r.ownerColumn() + `)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, bmi_date`
	row := r.pool.QueryRow(ctx, q, b.Weight, b.Height, b.Value, b.Status, r.ownerValue(b))
	if err := row.Scan(&b.ID, &b.RecordedAt); err != nil {
		return fmt.Errorf("insert bmi: %w", err)
	}
	return nil
}

func (r *BMIRepository) GetByID(ctx context.Context, id int64) (*entity.BMI, error) {
	b := &entity.BMI{}
	row := r.pool.QueryRow(ctx, `SELECT `+r.selectCols()+` FROM bmi WHERE id = $1`, id)
	if err := row.Scan(&b.ID, &b.Weight, &b.Height, &b.Value, &b.Status, &b.RecordedAt, r.ownerDest(b)); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select bmi: %w", err)
	}
	return b, nil
}

func (r *BMIRepository) List(ctx context.Context) ([]entity.BMI, error) {
	return r.query(ctx, `SELECT `+r.selectCols()+` FROM bmi ORDER BY id`)
}

func (r *BMIRepository) ListByUser(ctx context.Context, userID int64) ([]entity.BMI, error) {
	if r.ownership != entity.OwnedByUser {
		return nil, repository.ErrWrongOwnership
	}
	return r.query(ctx, `SELECT `+r.selectCols()+` FROM bmi WHERE user_id = $1 ORDER BY id`, userID)
}

func (r *BMIRepository) query(ctx context.Context, q string, args ...any) ([]entity.BMI, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query bmi: %w", err)
	}
	defer rows.Close()

	out := make([]entity.BMI, 0)
	for rows.Next() {
		var b entity.BMI
		if err := rows.Scan(&b.ID, &b.Weight, &b.Height, &b.Value, &b.Status, &b.RecordedAt, r.ownerDest(&b)); err != nil {
			return nil, fmt.Errorf("scan bmi: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bmi: %w", err)
	}
	return out, nil
}

var _ repository.BMIRepository = (*BMIRepository)(nil)
