package db

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"hotelops/pkg/config"
)

func newMigrate(migrationsPath string, cfg config.Config) (*migrate.Migrate, error) {
	return migrate.New(migrationsPath, migrationConnString(cfg))
}

// MigrateConfig applies every pending up migration.
func MigrateConfig(migrationsPath string, cfg config.Config) error {
	m, err := newMigrate(migrationsPath, cfg)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// MigrateDown rolls back steps migrations.
func MigrateDown(migrationsPath string, cfg config.Config, steps int) error {
	if steps <= 0 {
		return errors.New("steps must be positive")
	}
	m, err := newMigrate(migrationsPath, cfg)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// MigrationVersion reports the applied schema version. ok is false on an
// empty database.
func MigrationVersion(migrationsPath string, cfg config.Config) (version uint, dirty bool, ok bool, err error) {
	m, err := newMigrate(migrationsPath, cfg)
	if err != nil {
		return 0, false, false, err
	}
	defer func() { _, _ = m.Close() }()

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, err
	}
	return version, dirty, true, nil
}
