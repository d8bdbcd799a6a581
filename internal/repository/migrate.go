package repository

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrator applies the embedded schema migrations for one driver.
type Migrator struct {
	m *migrate.Migrate
	// ownsDB is false when the handle belongs to a live store; closing the
	// migrator would close the store's database too.
	ownsDB bool
}

// NewMigrator opens its own handle to dsn for the given driver.
func NewMigrator(driver, dsn string, logger *slog.Logger) (*Migrator, error) {
	switch driver {
	case DriverSQLite, "":
		db, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		db.SetMaxOpenConns(1)
		m, err := newSQLiteMigrator(db, logger)
		if err != nil {
			db.Close()
			return nil, err
		}
		m.ownsDB = true
		return m, nil
	case DriverPostgres:
		return newPostgresMigrator(dsn, logger)
	default:
		return nil, fmt.Errorf("%w: %q has no migrations", ErrUnknownDriver, driver)
	}
}

func newSQLiteMigrator(db *sql.DB, logger *slog.Logger) (*Migrator, error) {
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to init sqlite migration driver: %w", err)
	}
	return newMigrator("migrations/sqlite", "sqlite3", driver, logger, false)
}

func newPostgresMigrator(dsn string, logger *slog.Logger) (*Migrator, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
	}
	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init postgres migration driver: %w", err)
	}
	return newMigrator("migrations/postgres", "postgres", driver, logger, true)
}

func newMigrator(dir, name string, driver database.Driver, logger *slog.Logger, ownsDB bool) (*Migrator, error) {
	src, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, name, driver)
	if err != nil {
		return nil, fmt.Errorf("migration init failed: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	m.Log = &migrateLogger{logger: logger}

	return &Migrator{m: m, ownsDB: ownsDB}, nil
}

// Up applies every pending migration. Being up to date is not an error.
func (m *Migrator) Up() error {
	if err := m.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up failed: %w", err)
	}
	return nil
}

// Down rolls back steps migrations.
func (m *Migrator) Down(steps int) error {
	if steps < 1 {
		return fmt.Errorf("invalid down steps %d", steps)
	}
	if err := m.m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down failed: %w", err)
	}
	return nil
}

// Version reports the applied version. A fresh database reports 0.
func (m *Migrator) Version() (version uint, dirty bool, err error) {
	version, dirty, err = m.m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, fmt.Errorf("migrate version failed: %w", err)
	}
	return version, dirty, nil
}

// Close releases the migration source and, when owned, the database handle.
func (m *Migrator) Close() error {
	if !m.ownsDB {
		return nil
	}
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}

type migrateLogger struct {
	logger *slog.Logger
}

func (l *migrateLogger) Printf(format string, v ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "migrate"))
}

func (l *migrateLogger) Verbose() bool { return false }
