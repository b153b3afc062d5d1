package migrations

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/clanarena/draftroom/internal/shared/db"
	"github.com/clanarena/draftroom/internal/shared/logger"
)

var log = logger.GetLogger()

// RunMigrations applies the SQL migrations shipped with the binary
func RunMigrations() error {
	dbURL := db.BuildPostgresDSN()
	m, err := migrate.New(
		"file://internal/shared/db/migrations/sql",
		dbURL,
	)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	log.Info("database migrations applied")
	return nil
}
