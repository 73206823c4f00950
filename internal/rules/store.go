package rules

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Store caches the active Ruleset. The first successful load is kept until a
// later reload succeeds; a failed load never replaces a good configuration
// and, when nothing was ever loaded, the built-in defaults are published so
// readers never wait on file I/O.
type Store struct {
	path     string
	logger   *zap.Logger
	onReload func(ok bool)

	mu      sync.Mutex
	current atomic.Pointer[Ruleset]
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithReloadHook is called after every load attempt.
func WithReloadHook(fn func(ok bool)) StoreOption {
	return func(s *Store) { s.onReload = fn }
}

// NewStore creates a Store for path. Nothing is read until Current or Reload
// is called. An empty path always serves the defaults.
func NewStore(path string, logger *zap.Logger, opts ...StoreOption) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{path: path, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the watched file path.
func (s *Store) Path() string {
	return s.path
}

// Current returns the active Ruleset, loading it on first use.
func (s *Store) Current() *Ruleset {
	if rs := s.current.Load(); rs != nil {
		return rs
	}
	_ = s.Reload()
	return s.current.Load()
}

// Reload reads the file again. On failure the previous Ruleset stays active
// (or the defaults, if none was loaded yet) and the error is returned for
// reporting only.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		if s.current.Load() == nil {
			s.current.Store(Defaults())
			s.logger.Info("no rules path configured, using built-in rules")
		}
		return nil
	}

	rs, err := LoadFile(s.path, s.logger)
	if err != nil {
		if s.current.Load() == nil {
			s.current.Store(Defaults())
			s.logger.Warn("rules file unavailable, using built-in rules", zap.String("path", s.path), zap.Error(err))
		} else {
			s.logger.Warn("rules reload failed, keeping previous configuration", zap.String("path", s.path), zap.Error(err))
		}
		s.hook(false)
		return err
	}

	s.current.Store(rs)
	s.logger.Info("rules loaded",
		zap.String("source", rs.Meta.Source),
		zap.Int("rules", len(rs.Rules)),
	)
	s.hook(true)
	return nil
}

func (s *Store) hook(ok bool) {
	if s.onReload != nil {
		s.onReload(ok)
	}
}
