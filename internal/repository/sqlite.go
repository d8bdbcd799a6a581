package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/starmatch/starmatch/internal/model"
)

// SQLiteStore is a UserStore over an embedded SQLite file.
//
// The handle is limited to a single open connection so that every statement
// is serialised through one access point.
type SQLiteStore struct {
	db  *sql.DB
	log queryLogger
}

// OpenSQLite opens dsn, applies pending migrations and verifies the handle.
func OpenSQLite(ctx context.Context, dsn string, ql queryLogger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	m, err := newSQLiteMigrator(db, ql.logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := m.Up(); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, log: ql}, nil
}

// CreateUser inserts u and fills in its ID and CreatedAt.
func (s *SQLiteStore) CreateUser(ctx context.Context, u *model.User) (err error) {
	start := time.Now()
	defer func() { s.log.observe(ctx, "sqlite.create_user", start, err) }()

	query := `
		INSERT INTO users (name, email, birth_date, birth_time, birth_place,
			sun_sign, moon_sign, rising_sign, venus_sign, mars_sign, jupiter_sign,
			created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := time.Now().UTC()
	args := []any{u.Name, nullableEmail(u), u.BirthDate, u.BirthTime, u.BirthPlace}
	args = append(args, signValues(u)...)
	args = append(args, createdAt)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read user id: %w", err)
	}

	u.ID = id
	u.CreatedAt = createdAt
	return nil
}

// GetUserByID retrieves a user by id.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (u *model.User, err error) {
	start := time.Now()
	defer func() { s.log.observe(ctx, "sqlite.get_user", start, err) }()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	u, err = scanSQLUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return u, nil
}

// ListUsersExcluding returns all other users in ascending id order.
func (s *SQLiteStore) ListUsersExcluding(ctx context.Context, id int64) (users []*model.User, err error) {
	start := time.Now()
	defer func() { s.log.observe(ctx, "sqlite.list_users", start, err) }()

	query := `SELECT ` + userColumns + ` FROM users WHERE id != ? ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanSQLUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// CountUsers returns the number of stored users.
func (s *SQLiteStore) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// Ping checks database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLUser(row rowScanner) (*model.User, error) {
	var (
		u     model.User
		email sql.NullString
		signs signRow
	)

	dest := []any{&u.ID, &u.Name, &email, &u.BirthDate, &u.BirthTime, &u.BirthPlace}
	dest = append(dest, signs.targets()...)
	dest = append(dest, &u.CreatedAt)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if email.Valid {
		u.Email = &email.String
	}
	u.Signs = signs.placements()
	return &u, nil
}

func nullableEmail(u *model.User) any {
	if !u.HasEmail() {
		return nil
	}
	return *u.Email
}

func isSQLiteUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
