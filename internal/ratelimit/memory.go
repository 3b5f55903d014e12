package ratelimit

import (
	"sync"
	"time"
)

// sweepInterval bounds how often expired entries are evicted. The sweep runs
// opportunistically inside Check, never on a background timer.
const sweepInterval = 5 * time.Minute

// entry is one fixed window: a count and the instant the window resets.
type entry struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is an in-memory fixed-window rate limiter. Each
// (class, identifier) pair gets its own window. The shared map is guarded by
// a mutex; increments are atomic per key.
//
// Client identifiers come from proxy headers (see ClientIP), so the limiter
// is only meaningful behind a reverse proxy that overwrites them.
type MemoryLimiter struct {
	budgets map[Class]Budget

	mu        sync.Mutex
	entries   map[string]*entry
	lastSweep time.Time

	now func() time.Time
}

// Option configures a MemoryLimiter.
type Option func(*MemoryLimiter)

// WithClock replaces the limiter's time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *MemoryLimiter) {
		m.now = now
	}
}

// WithBudgets overrides the per-class budgets. Classes absent from the map
// fall back to DefaultBudgets.
func WithBudgets(budgets map[Class]Budget) Option {
	return func(m *MemoryLimiter) {
		for class, b := range budgets {
			m.budgets[class] = b
		}
	}
}

// NewMemoryLimiter creates a limiter with the default class budgets. There is
// no background goroutine; expired entries are swept lazily during Check.
func NewMemoryLimiter(opts ...Option) *MemoryLimiter {
	m := &MemoryLimiter{
		budgets: make(map[Class]Budget, len(DefaultBudgets)),
		entries: make(map[string]*entry),
		now:     time.Now,
	}
	for class, b := range DefaultBudgets {
		m.budgets[class] = b
	}
	for _, opt := range opts {
		opt(m)
	}
	m.lastSweep = m.now()
	return m
}

// Check records a request and reports whether it exceeds the class budget.
// A fresh window starts on the first request for a key or when the stored
// window has expired; within an active window the count increments and the
// request is limited once the count passes the budget.
func (m *MemoryLimiter) Check(identifier string, class Class) Result {
	budget, ok := m.budgets[class]
	if !ok {
		budget = m.budgets[ClassGeneral]
	}

	now := m.now()
	key := string(class) + ":" + identifier

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweepLocked(now)

	e, exists := m.entries[key]
	if !exists || e.resetAt.Before(now) {
		m.entries[key] = &entry{count: 1, resetAt: now.Add(budget.Window)}
		return Result{
			Limited:   false,
			Limit:     budget.MaxRequests,
			Remaining: budget.MaxRequests - 1,
			ResetIn:   budget.Window,
		}
	}

	e.count++
	if e.count > budget.MaxRequests {
		return Result{
			Limited:   true,
			Limit:     budget.MaxRequests,
			Remaining: 0,
			ResetIn:   e.resetAt.Sub(now),
		}
	}

	return Result{
		Limited:   false,
		Limit:     budget.MaxRequests,
		Remaining: budget.MaxRequests - e.count,
		ResetIn:   e.resetAt.Sub(now),
	}
}

// sweepLocked evicts expired windows, at most once per sweepInterval. Bounds
// memory growth from distinct identifiers without a scheduler. Caller holds mu.
func (m *MemoryLimiter) sweepLocked(now time.Time) {
	if now.Sub(m.lastSweep) < sweepInterval {
		return
	}
	m.lastSweep = now
	for key, e := range m.entries {
		if e.resetAt.Before(now) {
			delete(m.entries, key)
		}
	}
}

// Len reports the number of live windows, for tests and debugging.
func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
