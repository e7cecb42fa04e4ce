package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oksasatya/bmi-service/internal/domain/entity"
	"github.com/oksasatya/bmi-service/internal/domain/repository"
)

type BMIRepository struct {
	db        *sql.DB
	ownership entity.Ownership
}

func NewBMIRepository(db *sql.DB, ownership entity.Ownership) *BMIRepository {
	return &BMIRepository{db: db, ownership: ownership}
}

func (r *BMIRepository) Ownership() entity.Ownership { return r.ownership }

func (r *BMIRepository) ownerColumn() string { return repository.OwnerColumn(r.ownership) }

func (r *BMIRepository) scan(row interface{ Scan(...any) error }, b *entity.BMI) error {
	var owner any = &b.Name
	if r.ownership == entity.OwnedByUser {
		owner = &b.UserID
	}
	return row.Scan(&b.ID, &b.Weight, &b.Height, &b.Value, &b.Status, &b.RecordedAt, owner)
}

func (r *BMIRepository) selectCols() string {
	return "id, weight, height, bmi, status, bmi_date, " + r.ownerColumn()
}

func (r *BMIRepository) Create(ctx context.Context, b *entity.BMI) error {
	b.RecordedAt = time.Now().UTC()
	var owner any = b.Name
	if r.ownership == entity.OwnedByUser {
		owner = b.UserID
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO bmi (weight, height, bmi, status, bmi_date, `+r.ownerColumn()+`) VALUES (?, ?, ?, ?, ?, ?)`,
		b.Weight, b.Height, b.Value, b.Status, b.RecordedAt, owner)
	if err != nil {
		return fmt.Errorf("insert bmi: %w", err)
	}
	if b.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("insert bmi: %w", err)
	}
	return nil
}

func (r *BMIRepository) GetByID(ctx context.Context, id int64) (*entity.BMI, error) {
	b := &entity.BMI{}
	row := r.db.QueryRowContext(ctx, `SELECT `+r.selectCols()+` FROM bmi WHERE id = ?`, id)
	if err := r.scan(row, b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
	return r.query(ctx, `SELECT `+r.selectCols()+` FROM bmi WHERE user_id = ? ORDER BY id`, userID)
}

func (r *BMIRepository) query(ctx context.Context, q string, args ...any) ([]entity.BMI, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query bmi: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]entity.BMI, 0)
	for rows.Next() {
		var b entity.BMI
		if err := r.scan(rows, &b); err != nil {
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
