package database

import (
	"errors"
	"fmt"

	"clinic-calendar/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
)

// Migrator applies the SQL files under dir to the audit database.
type Migrator struct {
	m   *migrate.Migrate
	log *logrus.Logger
}

func NewMigrator(cfg config.DBConfig, dir string, log *logrus.Logger) (*Migrator, error) {
	m, err := migrate.New("file://"+dir, cfg.MigrationURL())
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations: %w", err)
	}
	return &Migrator{m: m, log: log}, nil
}

func (m *Migrator) Up() error {
	if err := m.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	m.logVersion()
	return nil
}

// Down rolls back a single migration.
func (m *Migrator) Down() error {
	if err := m.m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	m.logVersion()
	return nil
}

func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (m *Migrator) Close() {
	srcErr, dbErr := m.m.Close()
	if srcErr != nil || dbErr != nil {
		m.log.Warnf("Failed to close migrator: source=%v database=%v", srcErr, dbErr)
	}
}

func (m *Migrator) logVersion() {
	version, dirty, err := m.Version()
	if err != nil {
		m.log.Warnf("Failed to read migration version: %+v", err)
		return
	}
	m.log.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("Database schema migrated")
}
