package session

import (
	"context"
	"errors"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/ericdynasty/line-oca-bot/internal/model/intake"
)

const (
	defaultMaxSessions = 10000
	defaultTTL         = 30 * time.Minute
)

var (
	ErrUserIDRequired  = errors.New("user id is required")
	ErrSessionNotFound = errors.New("session not found")
)

// Store keeps in-progress intake sessions keyed by user ID. Implementations
// must be safe for concurrent use; values are copied in and out.
type Store interface {
	Get(ctx context.Context, userID string) (intake.Session, error)
	Put(ctx context.Context, session intake.Session) error
	Delete(ctx context.Context, userID string) error
	Len() int
}

type entry struct {
	session  intake.Session
	storedAt time.Time
}

// MemoryStore is a bounded, expiring Store. Least recently used sessions are
// evicted once the bound is hit; idle sessions expire after the TTL.
type MemoryStore struct {
	mu      sync.Mutex
	cache   *lru.Cache[string, entry]
	size    int
	ttl     time.Duration
	now     func() time.Time
	onEvict func()
	logger  *zap.Logger
}

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithEvictionHook is called once per session dropped by expiry or capacity.
// Explicit deletes do not count.
func WithEvictionHook(fn func()) Option {
	return func(s *MemoryStore) {
		s.onEvict = fn
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *MemoryStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewMemoryStore builds a store holding at most maxSessions sessions for ttl
// each. Non-positive arguments fall back to 10000 sessions and 30 minutes.
func NewMemoryStore(maxSessions int, ttl time.Duration, opts ...Option) *MemoryStore {
	if maxSessions <= 0 {
		maxSessions = defaultMaxSessions
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	// lru.New only fails on a non-positive size, guarded above.
	cache, _ := lru.New[string, entry](maxSessions)
	s := &MemoryStore{
		cache:  cache,
		size:   maxSessions,
		ttl:    ttl,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns a copy of the user's session. Expired sessions are removed and
// reported as not found.
func (s *MemoryStore) Get(_ context.Context, userID string) (intake.Session, error) {
	if userID == "" {
		return intake.Session{}, ErrUserIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.cache.Get(userID)
	if !ok {
		return intake.Session{}, ErrSessionNotFound
	}
	if s.expired(e) {
		s.cache.Remove(userID)
		s.evicted(userID, "expired")
		return intake.Session{}, ErrSessionNotFound
	}
	return e.session.Clone(), nil
}

// Put stores a copy of session, refreshing its TTL.
func (s *MemoryStore) Put(_ context.Context, session intake.Session) error {
	if session.UserID == "" {
		return ErrUserIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var oldest string
	if s.cache.Len() >= s.size && !s.cache.Contains(session.UserID) {
		oldest, _, _ = s.cache.GetOldest()
	}
	if evicted := s.cache.Add(session.UserID, entry{session: session.Clone(), storedAt: s.now()}); evicted {
		s.evicted(oldest, "capacity")
	}
	return nil
}

// Delete removes the user's session. Deleting a missing session is not an
// error.
func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	if userID == "" {
		return ErrUserIDRequired
	}
	s.mu.Lock()
	s.cache.Remove(userID)
	s.mu.Unlock()
	return nil
}

// Len reports how many sessions are held, expired ones included until swept.
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}

// Sweep drops every expired session and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, key := range s.cache.Keys() {
		e, ok := s.cache.Peek(key)
		if !ok || !s.expired(e) {
			continue
		}
		s.cache.Remove(key)
		s.evicted(key, "expired")
		removed++
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("swept expired sessions", zap.Int("count", n))
			}
		}
	}
}

func (s *MemoryStore) expired(e entry) bool {
	return s.now().Sub(e.storedAt) >= s.ttl
}

func (s *MemoryStore) evicted(userID, reason string) {
	s.logger.Debug("session evicted", zap.String("user_id", userID), zap.String("reason", reason))
	if s.onEvict != nil {
		s.onEvict()
	}
}
