package postgres

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bmi-service/internal/domain/entity"
	"github.com/oksasatya/bmi-service/internal/domain/repository"
)

//go:embed migrations/auth/*.sql migrations/public/*.sql
var migrationsFS embed.FS

// migrationSet maps a bmi ownership to its migration dir and version table.
func migrationSet(own entity.Ownership) (dir, table string) {
	if own == entity.OwnedByUser {
		return "migrations/auth", "schema_migrations_auth"
	}
	return "migrations/public", "schema_migrations_public"
}

// checkOwnerColumn refuses a database whose bmi table was created for the
// other variant.
func checkOwnerColumn(db *sql.DB, own entity.Ownership) error {
	col := repository.OwnerColumn(own)
	var cols, owner int64
	err := db.QueryRow(`
		SELECT COUNT(*), COUNT(*) FILTER (WHERE column_name = $1)
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = 'bmi'
	`, col).Scan(&cols, &owner)
	if err != nil {
		return fmt.Errorf("inspect bmi table: %w", err)
	}
	if cols > 0 && owner == 0 {
		return fmt.Errorf("%w: bmi has no %s column", repository.ErrOwnershipConflict, col)
	}
	return nil
}

// RunMigrations applies the embedded migrations using database/sql with pgx stdlib.
func RunMigrations(dsn string, own entity.Ownership, logger *logrus.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := checkOwnerColumn(db, own); err != nil {
		return err
	}

	dir, table := migrationSet(own)
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{MigrationsTable: table})
	if err != nil {
		return err
	}
	src, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("open migrations %s: %w", dir, err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return err
	}
	logger.WithField("set", dir).Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
