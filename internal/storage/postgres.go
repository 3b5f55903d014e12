package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"aboutme/internal/models"
	"aboutme/internal/storage/migrations"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// uniqueViolation is the PostgreSQL error code for unique constraint failures.
const uniqueViolation = "23505"

// PostgresStorage implements the Storage interface using PostgreSQL via a
// pgx connection pool. Schema is managed with embedded goose migrations run
// at startup.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage creates a PostgreSQL storage instance, runs pending
// migrations, and verifies connectivity.
func NewPostgresStorage(config Config) (Storage, error) {
	if config.ConnectionString == "" {
		return nil, fmt.Errorf("connection string is required for PostgreSQL storage")
	}

	if err := runMigrations(config.ConnectionString); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if config.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(config.MaxOpenConns)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStorage{pool: pool}, nil
}

// runMigrations applies embedded goose migrations through database/sql using
// the pgx stdlib driver. The pool itself never sees migration traffic.
func runMigrations(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db, ".")
}

const profileColumns = "id, user_id, username, profile_data, is_public, api_key, created_at, updated_at"

func (ps *PostgresStorage) scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.UserID, &p.Username, &p.Data, &p.IsPublic, &p.APIKey, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan profile: %w", err)
	}
	return &p, nil
}

// GetProfileByID retrieves a profile by its primary key.
func (ps *PostgresStorage) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	row := ps.pool.QueryRow(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE id = $1", id)
	return ps.scanProfile(row)
}

// GetProfileByUsername retrieves a profile by its unique username.
func (ps *PostgresStorage) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	row := ps.pool.QueryRow(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE username = $1", username)
	return ps.scanProfile(row)
}

// GetProfileByUserID retrieves the profile owned by the given user.
func (ps *PostgresStorage) GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	row := ps.pool.QueryRow(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE user_id = $1", userID)
	return ps.scanProfile(row)
}

// SaveProfile stores or updates a profile (upsert keyed by ID).
func (ps *PostgresStorage) SaveProfile(ctx context.Context, profile *models.Profile) error {
	_, err := ps.pool.Exec(ctx, `
		INSERT INTO profiles (id, user_id, username, profile_data, is_public, api_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			profile_data = EXCLUDED.profile_data,
			is_public    = EXCLUDED.is_public,
			api_key      = EXCLUDED.api_key,
			updated_at   = EXCLUDED.updated_at`,
		profile.ID, profile.UserID, profile.Username, profile.Data,
		profile.IsPublic, profile.APIKey, profile.CreatedAt, profile.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// UsernameExists reports whether any profile holds the given username.
func (ps *PostgresStorage) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := ps.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM profiles WHERE username = $1)", username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

// CreateUser stores a new account.
func (ps *PostgresStorage) CreateUser(ctx context.Context, user *models.User) error {
	_, err := ps.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)`,
		user.ID, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves an account by its unique email.
func (ps *PostgresStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := ps.pool.QueryRow(ctx,
		"SELECT id, email, password_hash, created_at FROM users WHERE email = $1", email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// InsertAccessLog appends an access-log row.
func (ps *PostgresStorage) InsertAccessLog(ctx context.Context, entry *models.AccessLogEntry) error {
	_, err := ps.pool.Exec(ctx, `
		INSERT INTO api_logs (id, profile_id, username, endpoint, caller_ip, user_agent, referer, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.ProfileID, entry.Username, entry.Endpoint,
		entry.CallerIP, entry.UserAgent, entry.Referer, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert access log: %w", err)
	}
	return nil
}

// AccessLogStats aggregates total calls and unique caller IPs for a profile.
func (ps *PostgresStorage) AccessLogStats(ctx context.Context, profileID string) (*models.AccessLogStats, error) {
	var stats models.AccessLogStats
	err := ps.pool.QueryRow(ctx, `
		SELECT count(*), count(DISTINCT caller_ip) FILTER (WHERE caller_ip <> '')
		FROM api_logs WHERE profile_id = $1`, profileID).
		Scan(&stats.TotalCalls, &stats.UniqueIPs)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate access logs: %w", err)
	}
	return &stats, nil
}

// RecentAccessLogs returns up to limit rows for a profile, newest first.
func (ps *PostgresStorage) RecentAccessLogs(ctx context.Context, profileID string, limit int) ([]*models.AccessLogEntry, error) {
	rows, err := ps.pool.Query(ctx, `
		SELECT id, profile_id, username, endpoint,
		       coalesce(caller_ip, ''), coalesce(user_agent, ''), coalesce(referer, ''), created_at
		FROM api_logs WHERE profile_id = $1
		ORDER BY created_at DESC LIMIT $2`, profileID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query access logs: %w", err)
	}
	defer rows.Close()

	var entries []*models.AccessLogEntry
	for rows.Next() {
		var e models.AccessLogEntry
		if err := rows.Scan(&e.ID, &e.ProfileID, &e.Username, &e.Endpoint,
			&e.CallerIP, &e.UserAgent, &e.Referer, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan access log: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read access logs: %w", err)
	}
	return entries, nil
}

// Close releases the connection pool.
func (ps *PostgresStorage) Close() error {
	ps.pool.Close()
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
