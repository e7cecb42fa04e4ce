package storage

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bmi-service/config"
	"github.com/oksasatya/bmi-service/internal/domain/entity"
	"github.com/oksasatya/bmi-service/internal/domain/repository"
	"github.com/oksasatya/bmi-service/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/bmi-service/internal/infrastructure/postgres"
	sqliteinfra "github.com/oksasatya/bmi-service/internal/infrastructure/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Store bundles the repositories of one variant. Users is nil for the
// public variant.
type Store struct {
	Driver string
	Users  repository.UserRepository
	BMI    repository.BMIRepository

	ping  func(ctx context.Context) error
	close func()
}

func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// Open connects the configured driver, runs its migrations and builds the
// repositories for the given ownership.
func Open(ctx context.Context, cfg *config.Config, own entity.Ownership, logger *logrus.Logger) (*Store, error) {
	st := &Store{Driver: cfg.DBDriver}
	switch cfg.DBDriver {
	case DriverPostgres:
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
		})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), own, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		st.BMI = pginfra.NewBMIRepository(pool, own)
		if own == entity.OwnedByUser {
			st.Users = pginfra.NewUserRepository(pool)
		}
		st.ping = pool.Ping
		st.close = pool.Close
	case DriverSQLite:
		if err := sqliteinfra.RunMigrations(cfg.SQLitePath, own, logger); err != nil {
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		db, err := sqliteinfra.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		st.BMI = sqliteinfra.NewBMIRepository(db, own)
		if own == entity.OwnedByUser {
			st.Users = sqliteinfra.NewUserRepository(db)
		}
		st.ping = db.PingContext
		st.close = func() { _ = db.Close() }
	case DriverMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
		st.BMI = memory.NewBMIRepository(own)
		if own == entity.OwnedByUser {
			st.Users = memory.NewUserRepository()
		}
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
	logger.WithFields(logrus.Fields{"driver": cfg.DBDriver, "ownership": own.String()}).Info("storage ready")
	return st, nil
}
