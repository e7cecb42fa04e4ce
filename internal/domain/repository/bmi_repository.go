package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/bmi-service/internal/domain/entity"
)

// ErrWrongOwnership is returned when an owner-scoped query hits a table
// that does not carry that owner column.
var ErrWrongOwnership = errors.New("operation not supported by this bmi table")

// ErrOwnershipConflict is returned by migrations when the bmi table already
// exists with the other variant's owner column.
var ErrOwnershipConflict = errors.New("bmi table belongs to the other variant")

// OwnerColumn names the bmi column that records the owner.
func OwnerColumn(own entity.Ownership) string {
	if own == entity.OwnedByUser {
		return "user_id"
	}
	return "name"
}

// BMIRepository is the append-only store of measurements. List results are
// ordered by id.
type BMIRepository interface {
	Create(ctx context.Context, b *entity.BMI) error
	GetByID(ctx context.Context, id int64) (*entity.BMI, error)
	List(ctx context.Context) ([]entity.BMI, error)
	ListByUser(ctx context.Context, userID int64) ([]entity.BMI, error)
	Ownership() entity.Ownership
}
