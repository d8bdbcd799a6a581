package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/starmatch/starmatch/internal/model"
)

const pgUniqueViolation = "23505"

// PostgresStore is a UserStore backed by a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  queryLogger
}

// OpenPostgres migrates the schema at databaseURL and opens a connection pool.
func OpenPostgres(ctx context.Context, databaseURL string, ql queryLogger) (*PostgresStore, error) {
	m, err := newPostgresMigrator(databaseURL, ql.logger)
	if err != nil {
		return nil, err
	}
	upErr := m.Up()
	if err := m.Close(); err != nil && upErr == nil {
		upErr = err
	}
	if upErr != nil {
		return nil, upErr
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool, log: ql}, nil
}

// CreateUser inserts u and fills in its ID and CreatedAt from the database.
func (s *PostgresStore) CreateUser(ctx context.Context, u *model.User) (err error) {
	start := time.Now()
	defer func() { s.log.observe(ctx, "postgres.create_user", start, err) }()

	query := `
		INSERT INTO users (name, email, birth_date, birth_time, birth_place,
			sun_sign, moon_sign, rising_sign, venus_sign, mars_sign, jupiter_sign)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`

	args := []any{u.Name, nullableEmail(u), u.BirthDate, u.BirthTime, u.BirthPlace}
	args = append(args, signValues(u)...)

	err = s.pool.QueryRow(ctx, query, args...).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isPgUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by id.
func (s *PostgresStore) GetUserByID(ctx context.Context, id int64) (u *model.User, err error) {
	start := time.Now()
	defer func() { s.log.observe(ctx, "postgres.get_user", start, err) }()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err = scanPgUser(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return u, nil
}

// ListUsersExcluding returns all other users in ascending id order.
func (s *PostgresStore) ListUsersExcluding(ctx context.Context, id int64) (users []*model.User, err error) {
	start := time.Now()
	defer func() { s.log.observe(ctx, "postgres.list_users", start, err) }()

	query := `SELECT ` + userColumns + ` FROM users WHERE id <> $1 ORDER BY id ASC`

	rows, err := s.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanPgUser(rows)
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
func (s *PostgresStore) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanPgUser(row pgx.Row) (*model.User, error) {
	var (
		u     model.User
		signs signRow
	)

	dest := []any{&u.ID, &u.Name, &u.Email, &u.BirthDate, &u.BirthTime, &u.BirthPlace}
	dest = append(dest, signs.targets()...)
	dest = append(dest, &u.CreatedAt)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	u.Signs = signs.placements()
	return &u, nil
}

func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}
