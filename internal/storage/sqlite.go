package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"aboutme/internal/models"

	_ "modernc.org/sqlite"
)

// sqliteSchema mirrors the postgres migrations for the single-file backend.
// SQLite has no JSONB; the profile document is stored as JSON text.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS profiles (
    id           TEXT PRIMARY KEY,
    user_id      TEXT NOT NULL UNIQUE,
    username     TEXT NOT NULL UNIQUE,
    profile_data TEXT NOT NULL DEFAULT '{}',
    is_public    INTEGER NOT NULL DEFAULT 0,
    api_key      TEXT,
    created_at   TIMESTAMP NOT NULL,
    updated_at   TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS api_logs (
    id         TEXT PRIMARY KEY,
    profile_id TEXT NOT NULL,
    username   TEXT NOT NULL,
    endpoint   TEXT NOT NULL,
    caller_ip  TEXT NOT NULL DEFAULT '',
    user_agent TEXT NOT NULL DEFAULT '',
    referer    TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_api_logs_profile_id ON api_logs (profile_id);
`

// SQLiteStorage implements the Storage interface on a single SQLite file via
// the CGO-free modernc driver. Suited to small single-process deployments.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens (or creates) the database file and ensures the
// schema exists.
func NewSQLiteStorage(config Config) (Storage, error) {
	if config.ConnectionString == "" {
		return nil, fmt.Errorf("connection string is required for SQLite storage")
	}

	db, err := sql.Open("sqlite", config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The driver serializes writes; one connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func (ss *SQLiteStorage) getProfile(ctx context.Context, where string, arg any) (*models.Profile, error) {
	row := ss.db.QueryRowContext(ctx,
		"SELECT id, user_id, username, profile_data, is_public, api_key, created_at, updated_at FROM profiles WHERE "+where, arg)

	var p models.Profile
	var dataJSON string
	var apiKey sql.NullString
	err := row.Scan(&p.ID, &p.UserID, &p.Username, &dataJSON, &p.IsPublic, &apiKey, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan profile: %w", err)
	}

	if err := json.Unmarshal([]byte(dataJSON), &p.Data); err != nil {
		return nil, fmt.Errorf("failed to decode profile data: %w", err)
	}
	if apiKey.Valid {
		p.APIKey = &apiKey.String
	}
	return &p, nil
}

// GetProfileByID retrieves a profile by its primary key.
func (ss *SQLiteStorage) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	return ss.getProfile(ctx, "id = ?", id)
}

// GetProfileByUsername retrieves a profile by its unique username.
func (ss *SQLiteStorage) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	return ss.getProfile(ctx, "username = ?", username)
}

// GetProfileByUserID retrieves the profile owned by the given user.
func (ss *SQLiteStorage) GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	return ss.getProfile(ctx, "user_id = ?", userID)
}

// SaveProfile stores or updates a profile (upsert keyed by ID).
func (ss *SQLiteStorage) SaveProfile(ctx context.Context, profile *models.Profile) error {
	dataJSON, err := json.Marshal(profile.Data)
	if err != nil {
		return fmt.Errorf("failed to encode profile data: %w", err)
	}

	var apiKey sql.NullString
	if profile.APIKey != nil {
		apiKey = sql.NullString{String: *profile.APIKey, Valid: true}
	}

	_, err = ss.db.ExecContext(ctx, `
		INSERT INTO profiles (id, user_id, username, profile_data, is_public, api_key, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			profile_data = excluded.profile_data,
			is_public    = excluded.is_public,
			api_key      = excluded.api_key,
			updated_at   = excluded.updated_at`,
		profile.ID, profile.UserID, profile.Username, string(dataJSON),
		profile.IsPublic, apiKey, profile.CreatedAt, profile.UpdatedAt)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// UsernameExists reports whether any profile holds the given username.
func (ss *SQLiteStorage) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := ss.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM profiles WHERE username = ?)", username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

// CreateUser stores a new account.
func (ss *SQLiteStorage) CreateUser(ctx context.Context, user *models.User) error {
	_, err := ss.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)`,
		user.ID, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves an account by its unique email.
func (ss *SQLiteStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := ss.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, created_at FROM users WHERE email = ?", email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// InsertAccessLog appends an access-log row.
func (ss *SQLiteStorage) InsertAccessLog(ctx context.Context, entry *models.AccessLogEntry) error {
	_, err := ss.db.ExecContext(ctx, `
		INSERT INTO api_logs (id, profile_id, username, endpoint, caller_ip, user_agent, referer, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.ProfileID, entry.Username, entry.Endpoint,
		entry.CallerIP, entry.UserAgent, entry.Referer, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert access log: %w", err)
	}
	return nil
}

// AccessLogStats aggregates total calls and unique caller IPs for a profile.
func (ss *SQLiteStorage) AccessLogStats(ctx context.Context, profileID string) (*models.AccessLogStats, error) {
	var stats models.AccessLogStats
	err := ss.db.QueryRowContext(ctx, `
		SELECT count(*),
		       count(DISTINCT CASE WHEN caller_ip <> '' THEN caller_ip END)
		FROM api_logs WHERE profile_id = ?`, profileID).
		Scan(&stats.TotalCalls, &stats.UniqueIPs)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate access logs: %w", err)
	}
	return &stats, nil
}

// RecentAccessLogs returns up to limit rows for a profile, newest first.
func (ss *SQLiteStorage) RecentAccessLogs(ctx context.Context, profileID string, limit int) ([]*models.AccessLogEntry, error) {
	rows, err := ss.db.QueryContext(ctx, `
		SELECT id, profile_id, username, endpoint, caller_ip, user_agent, referer, created_at
		FROM api_logs WHERE profile_id = ?
		ORDER BY created_at DESC LIMIT ?`, profileID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query access logs: %w", err)
	}
	defer rows.Close()

	var entries []*models.AccessLogEntry
	for rows.Next() {
		var e models.AccessLogEntry
		var createdAt time.Time
		if err := rows.Scan(&e.ID, &e.ProfileID, &e.Username, &e.Endpoint,
			&e.CallerIP, &e.UserAgent, &e.Referer, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan access log: %w", err)
		}
		e.CreatedAt = createdAt
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read access logs: %w", err)
	}
	return entries, nil
}

// Close closes the database handle.
func (ss *SQLiteStorage) Close() error {
	return ss.db.Close()
}

func isSQLiteUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
