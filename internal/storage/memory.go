package storage

import (
	"context"
	"sort"
	"sync"

	"aboutme/internal/models"
)

// MemoryStorage implements the Storage interface using in-memory data
// structures. It is the default for development and tests; data is lost on
// restart.
type MemoryStorage struct {
	mu         sync.RWMutex
	profiles   map[string]*models.Profile          // keyed by ID
	byUsername map[string]string                   // username -> ID
	byUserID   map[string]string                   // user_id -> ID
	users      map[string]*models.User             // keyed by email
	accessLogs map[string][]*models.AccessLogEntry // keyed by profile ID
}

// NewMemoryStorage creates a new memory-based storage instance.
func NewMemoryStorage(config Config) (*MemoryStorage, error) {
	return &MemoryStorage{
		profiles:   make(map[string]*models.Profile),
		byUsername: make(map[string]string),
		byUserID:   make(map[string]string),
		users:      make(map[string]*models.User),
		accessLogs: make(map[string][]*models.AccessLogEntry),
	}, nil
}

// GetProfileByID retrieves a profile by its primary key.
func (m *MemoryStorage) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	profile, exists := m.profiles[id]
	if !exists {
		return nil, ErrNotFound
	}
	return copyProfile(profile), nil
}

// GetProfileByUsername retrieves a profile by its unique username.
func (m *MemoryStorage) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, exists := m.byUsername[username]
	if !exists {
		return nil, ErrNotFound
	}
	return copyProfile(m.profiles[id]), nil
}

// GetProfileByUserID retrieves the profile owned by the given user.
func (m *MemoryStorage) GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, exists := m.byUserID[userID]
	if !exists {
		return nil, ErrNotFound
	}
	return copyProfile(m.profiles[id]), nil
}

// SaveProfile stores or updates a profile keyed by ID.
func (m *MemoryStorage) SaveProfile(ctx context.Context, profile *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if holder, taken := m.byUsername[profile.Username]; taken && holder != profile.ID {
		return ErrUsernameTaken
	}

	// Drop a stale username index entry when the row's username changed.
	if old, exists := m.profiles[profile.ID]; exists && old.Username != profile.Username {
		delete(m.byUsername, old.Username)
	}

	m.profiles[profile.ID] = copyProfile(profile)
	m.byUsername[profile.Username] = profile.ID
	m.byUserID[profile.UserID] = profile.ID
	return nil
}

// UsernameExists reports whether any profile holds the given username.
func (m *MemoryStorage) UsernameExists(ctx context.Context, username string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.byUsername[username]
	return exists, nil
}

// CreateUser stores a new account.
func (m *MemoryStorage) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[user.Email]; exists {
		return ErrEmailTaken
	}
	userCopy := *user
	m.users[user.Email] = &userCopy
	return nil
}

// GetUserByEmail retrieves an account by its unique email.
func (m *MemoryStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, exists := m.users[email]
	if !exists {
		return nil, ErrNotFound
	}
	userCopy := *user
	return &userCopy, nil
}

// InsertAccessLog appends an access-log row.
func (m *MemoryStorage) InsertAccessLog(ctx context.Context, entry *models.AccessLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entryCopy := *entry
	m.accessLogs[entry.ProfileID] = append(m.accessLogs[entry.ProfileID], &entryCopy)
	return nil
}

// AccessLogStats aggregates total calls and unique caller IPs for a profile.
func (m *MemoryStorage) AccessLogStats(ctx context.Context, profileID string) (*models.AccessLogStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	logs := m.accessLogs[profileID]
	ips := make(map[string]struct{})
	for _, entry := range logs {
		if entry.CallerIP != "" {
			ips[entry.CallerIP] = struct{}{}
		}
	}

	return &models.AccessLogStats{
		TotalCalls: len(logs),
		UniqueIPs:  len(ips),
	}, nil
}

// RecentAccessLogs returns up to limit rows for a profile, newest first.
func (m *MemoryStorage) RecentAccessLogs(ctx context.Context, profileID string, limit int) ([]*models.AccessLogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	logs := m.accessLogs[profileID]
	result := make([]*models.AccessLogEntry, len(logs))
	for i, entry := range logs {
		entryCopy := *entry
		result[i] = &entryCopy
	}

	sort.Slice(result, func(i, j int) bool {
		return result[j].CreatedAt.Before(result[i].CreatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Close is a no-op for memory storage.
func (m *MemoryStorage) Close() error {
	return nil
}

// copyProfile returns a shallow copy to prevent external modification of the
// stored row. The profile document is treated as immutable by callers.
func copyProfile(p *models.Profile) *models.Profile {
	profileCopy := *p
	if p.APIKey != nil {
		key := *p.APIKey
		profileCopy.APIKey = &key
	}
	return &profileCopy
}
