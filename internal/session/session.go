package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/makahco2025-svg/test3/internal/cart"
	"github.com/makahco2025-svg/test3/internal/checkout"
	"github.com/makahco2025-svg/test3/internal/notification"
)

// Session is the server-side state of one browsing session. Every access to
// its cart, composer or admin flag must happen inside Do.
type Session struct {
	ID string

	mu       sync.Mutex
	cart     *cart.Store
	checkout *checkout.Composer
	inbox    *notification.Inbox
	admin    bool

	lastSeen atomic.Int64
}

// Do runs fn with exclusive access to the session.
func (s *Session) Do(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

func (s *Session) Cart() *cart.Store            { return s.cart }
func (s *Session) Checkout() *checkout.Composer { return s.checkout }

// Inbox is safe to use outside Do.
func (s *Session) Inbox() *notification.Inbox { return s.inbox }

func (s *Session) IsAdmin() bool       { return s.admin }
func (s *Session) SetAdmin(admin bool) { s.admin = admin }

// Context scopes ctx to the session's cart.
func (s *Session) Context(ctx context.Context) context.Context {
	return cart.WithStore(ctx, s.cart)
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func (s *Session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastSeen.Load()))
}

func (s *Session) close() {
	s.Do(s.checkout.Close)
}
