package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/makahco2025-svg/test3/internal/cart"
	"github.com/makahco2025-svg/test3/internal/checkout"
	"github.com/makahco2025-svg/test3/internal/notification"
	"go.uber.org/zap"
)

const (
	// DefaultTTL is how long an idle session lives
	DefaultTTL = 24 * time.Hour

	// DefaultCleanupInterval is how often expired sessions are collected
	DefaultCleanupInterval = time.Minute
)

type Options struct {
	TTL             time.Duration
	CleanupInterval time.Duration
	InboxCapacity   int
	Checkout        checkout.Settings
	Logger          *zap.Logger
}

// Registry holds the live sessions and expires idle ones in the background
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	opts   Options
	logger *zap.Logger
	now    func() time.Time

	stopCleanup chan struct{}
	wg          sync.WaitGroup

	// sinks counts order sink writes still running after their Submit returned
	sinks sync.WaitGroup
}

// NewRegistry creates a registry and starts its cleanup loop
func NewRegistry(opts Options) *Registry {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = DefaultCleanupInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Registry{
		sessions:    make(map[string]*Session),
		opts:        opts,
		logger:      logger,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	r.wg.Add(1)
	go r.cleanupLoop()

	return r
}

// Create starts a new session with an empty cart
func (r *Registry) Create() *Session {
	s := &Session{
		ID:    uuid.New().String(),
		inbox: notification.NewInbox(r.opts.InboxCapacity),
	}
	s.cart = cart.NewStore(s.inbox)

	settings := r.opts.Checkout
	if settings.Logger == nil {
		settings.Logger = r.logger
	}
	settings.Pending = &r.sinks
	s.checkout = checkout.NewComposer(s.ID, s.cart, s.Do, settings)
	s.touch(r.now())

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	r.logger.Debug("session created", zap.String("session_id", s.ID))
	return s
}

// Get returns a live session and marks it as seen. An idle session past its
// TTL is expired on the spot.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	s, exists := r.sessions[id]
	r.mu.RUnlock()
	if !exists {
		return nil, false
	}

	now := r.now()
	if s.idleSince(now) > r.opts.TTL {
		r.remove(id, s)
		return nil, false
	}
	s.touch(now)
	return s, true
}

// GetOrCreate returns the session for id, or a new one when id is unknown or
// expired. created reports which.
func (r *Registry) GetOrCreate(id string) (s *Session, created bool) {
	if id != "" {
		if s, ok := r.Get(id); ok {
			return s, false
		}
	}
	return r.Create(), true
}

// Delete ends a session immediately
func (r *Registry) Delete(id string) {
	r.mu.RLock()
	s, exists := r.sessions[id]
	r.mu.RUnlock()
	if exists {
		r.remove(id, s)
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) remove(id string, s *Session) {
	r.mu.Lock()
	current, exists := r.sessions[id]
	if exists && current == s {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if exists && current == s {
		s.close()
	}
}

// cleanupLoop periodically collects idle sessions
func (r *Registry) cleanupLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.opts.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.expireSessions()
		case <-r.stopCleanup:
			return
		}
	}
}

// expireSessions removes every session idle for longer than the TTL
func (r *Registry) expireSessions() {
	now := r.now()

	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.idleSince(now) > r.opts.TTL {
			delete(r.sessions, id)
			expired = append(expired, s)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.close()
	}
	if len(expired) > 0 {
		r.logger.Info("expired idle sessions", zap.Int("count", len(expired)))
	}
}

// Close stops the cleanup loop and tears down every session
func (r *Registry) Close() error {
	close(r.stopCleanup)
	r.wg.Wait()

	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
	r.sinks.Wait()
	return nil
}
