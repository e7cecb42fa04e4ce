package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bmi-service/internal/domain/entity"
	"github.com/oksasatya/bmi-service/internal/domain/repository"
)

//go:embed migrations/auth/*.sql migrations/public/*.sql
var migrationsFS embed.FS

func dsn(path string) string {
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
}

// Open creates the parent directory if needed and opens the database file.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// checkOwnerColumn refuses a database whose bmi table was created for the
// other variant. The migrations use CREATE TABLE IF NOT EXISTS, so they
// would otherwise succeed against the wrong schema.
func checkOwnerColumn(db *sql.DB, own entity.Ownership) error {
	col := repository.OwnerColumn(own)
	var cols, owner int
	err := db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(name = ?), 0) FROM pragma_table_info('bmi')`, col,
	).Scan(&cols, &owner)
	if err != nil {
		return fmt.Errorf("inspect bmi table: %w", err)
	}
	if cols > 0 && owner == 0 {
		return fmt.Errorf("%w: bmi has no %s column", repository.ErrOwnershipConflict, col)
	}
	return nil
}

// RunMigrations applies the embedded schema on its own connection, since
// closing the migrate instance closes the database handle it was given.
func RunMigrations(path string, own entity.Ownership, logger *logrus.Logger) error {
	db, err := Open(path)
	if err != nil {
		return err
	}

	if err := checkOwnerColumn(db, own); err != nil {
		_ = db.Close()
		return err
	}

	dir, table := "migrations/public", "schema_migrations_public"
	if own == entity.OwnedByUser {
		dir, table = "migrations/auth", "schema_migrations_auth"
	}
	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{MigrationsTable: table})
	if err != nil {
		_ = db.Close()
		return err
	}
	src, err := iofs.New(migrationsFS, dir)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("open migrations %s: %w", dir, err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer func() { _, _ = m.Close() }()

	logger.WithField("set", dir).Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
