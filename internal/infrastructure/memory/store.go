// Package memory keeps users and measurements in process memory. It backs
// DB_DRIVER=memory and the service tests; data is lost on restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oksasatya/bmi-service/internal/domain/entity"
	"github.com/oksasatya/bmi-service/internal/domain/repository"
)

type UserRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]entity.User
	emails map[string]int64
}

func NewUserRepository() *UserRepository {
	return &UserRepository{byID: map[int64]entity.User{}, emails: map[string]int64{}}
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.emails[u.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = time.Now().UTC()
	r.byID[u.ID] = *u
	r.emails[u.Email] = u.ID
	return nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.emails[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := r.byID[id]
	return &u, nil
}

// BMIRepository stores records in insertion order, which is also id order.
type BMIRepository struct {
	mu        sync.RWMutex
	ownership entity.Ownership
	rows      []entity.BMI
}

func NewBMIRepository(ownership entity.Ownership) *BMIRepository {
	return &BMIRepository{ownership: ownership}
}

func (r *BMIRepository) Ownership() entity.Ownership { return r.ownership }

func (r *BMIRepository) Create(_ context.Context, b *entity.BMI) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = int64(len(r.rows)) + 1
	b.RecordedAt = time.Now().UTC()
	if r.ownership == entity.OwnedByUser {
		b.Name = ""
	} else {
		b.UserID = 0
	}
	r.rows = append(r.rows, *b)
	return nil
}

func (r *BMIRepository) GetByID(_ context.Context, id int64) (*entity.BMI, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id < 1 || id > int64(len(r.rows)) {
		return nil, repository.ErrNotFound
	}
	b := r.rows[id-1]
	return &b, nil
}

func (r *BMIRepository) List(_ context.Context) ([]entity.BMI, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.BMI, len(r.rows))
	copy(out, r.rows)
	return out, nil
}

func (r *BMIRepository) ListByUser(_ context.Context, userID int64) ([]entity.BMI, error) {
	if r.ownership != entity.OwnedByUser {
		return nil, repository.ErrWrongOwnership
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.BMI, 0)
	for _, b := range r.rows {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

var (
	_ repository.UserRepository = (*UserRepository)(nil)
	_ repository.BMIRepository  = (*BMIRepository)(nil)
)
