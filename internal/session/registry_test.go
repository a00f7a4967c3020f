package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/makahco2025-svg/test3/internal/cart"
	"github.com/makahco2025-svg/test3/internal/checkout"
	"github.com/makahco2025-svg/test3/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func setupRegistry(t *testing.T, ttl time.Duration) (*Registry, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	r := NewRegistry(Options{TTL: ttl, CleanupInterval: time.Hour})
	r.now = clock.Now
	t.Cleanup(func() { r.Close() })
	return r, clock
}

func testProduct() domain.Product {
	return domain.Product{ID: 1, Name: "Argan Oil", Price: decimal.NewFromInt(100)}
}

func TestRegistry_CreateAndGet(t *testing.T) {
	r, _ := setupRegistry(t, time.Hour)

	s := r.Create()
	require.NotEmpty(t, s.ID)

	got, ok := r.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, r.Len())

	_, ok = r.Get("unknown")
	assert.False(t, ok)
}

func TestRegistry_SessionsAreIsolated(t *testing.T) {
	r, _ := setupRegistry(t, time.Hour)
	a := r.Create()
	b := r.Create()

	a.Do(func() { a.Cart().AddToCart(testProduct()) })

	b.Do(func() { assert.True(t, b.Cart().IsEmpty()) })
	a.Do(func() { assert.Equal(t, 1, a.Cart().TotalItems()) })
}

func TestRegistry_CartNotifiesInbox(t *testing.T) {
	r, _ := setupRegistry(t, time.Hour)
	s := r.Create()

	s.Do(func() { s.Cart().AddToCart(testProduct()) })

	assert.Len(t, s.Inbox().Drain(), 1)
}

func TestRegistry_GetOrCreate(t *testing.T) {
	r, _ := setupRegistry(t, time.Hour)
	s := r.Create()

	got, created := r.GetOrCreate(s.ID)
	assert.False(t, created)
	assert.Same(t, s, got)

	fresh, created := r.GetOrCreate("")
	assert.True(t, created)
	assert.NotEqual(t, s.ID, fresh.ID)

	fresh, created = r.GetOrCreate("gone")
	assert.True(t, created)
	assert.NotEqual(t, "gone", fresh.ID)
}

func TestRegistry_ExpiresOnGet(t *testing.T) {
	r, clock := setupRegistry(t, time.Minute)
	s := r.Create()

	clock.Advance(30 * time.Second)
	_, ok := r.Get(s.ID)
	require.True(t, ok)

	clock.Advance(50 * time.Second)
	_, ok = r.Get(s.ID)
	require.True(t, ok, "access refreshes the TTL")

	clock.Advance(2 * time.Minute)
	_, ok = r.Get(s.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_ExpireSessions(t *testing.T) {
	r, clock := setupRegistry(t, time.Minute)
	idle := r.Create()
	clock.Advance(45 * time.Second)
	active := r.Create()
	clock.Advance(30 * time.Second)

	r.expireSessions()

	_, ok := r.Get(idle.ID)
	assert.False(t, ok)
	_, ok = r.Get(active.ID)
	assert.True(t, ok)
}

func TestRegistry_ExpiryDiscardsLateLocation(t *testing.T) {
	r, clock := setupRegistry(t, time.Minute)
	s := r.Create()

	release := make(chan struct{})
	provider := checkout.PositionProviderFunc(func(context.Context) (checkout.Position, error) {
		<-release
		return checkout.Position{Latitude: 1, Longitude: 2}, nil
	})

	var done <-chan struct{}
	s.Do(func() {
		var err error
		done, err = s.Checkout().FetchLocation(context.Background(), provider)
		require.NoError(t, err)
	})

	clock.Advance(2 * time.Minute)
	r.expireSessions()
	close(release)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("location request did not resolve")
	}
	s.Do(func() {
		assert.Empty(t, s.Checkout().Form().LocationURL)
	})
}

func TestRegistry_LocationResolvesThroughSession(t *testing.T) {
	r, _ := setupRegistry(t, time.Hour)
	s := r.Create()

	var done <-chan struct{}
	s.Do(func() {
		var err error
		done, err = s.Checkout().FetchLocation(context.Background(),
			checkout.PositionProviderFunc(func(context.Context) (checkout.Position, error) {
				return checkout.Position{Latitude: 30.5, Longitude: 31}, nil
			}))
		require.NoError(t, err)
	})

	<-done
	s.Do(func() {
		assert.Equal(t, "https://www.google.com/maps?q=30.5,31", s.Checkout().Form().LocationURL)
	})
}

func TestRegistry_Delete(t *testing.T) {
	r, _ := setupRegistry(t, time.Hour)
	s := r.Create()

	r.Delete(s.ID)

	_, ok := r.Get(s.ID)
	assert.False(t, ok)
	s.Do(func() {
		_, err := s.Checkout().Submit(context.Background(), checkout.Input{})
		assert.ErrorIs(t, err, checkout.ErrComposerClosed)
	})
}

func TestSession_AdminFlag(t *testing.T) {
	r, _ := setupRegistry(t, time.Hour)
	s := r.Create()

	s.Do(func() {
		assert.False(t, s.IsAdmin())
		s.SetAdmin(true)
		assert.True(t, s.IsAdmin())
	})
}

func TestSession_Context(t *testing.T) {
	r, _ := setupRegistry(t, time.Hour)
	s := r.Create()

	ctx := s.Context(context.Background())
	assert.Same(t, s.Cart(), cart.FromContext(ctx))
}

func TestSession_DoSerializes(t *testing.T) {
	r, _ := setupRegistry(t, time.Hour)
	s := r.Create()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Do(func() { s.Cart().AddToCart(testProduct()) })
		}()
	}
	wg.Wait()

	s.Do(func() { assert.Equal(t, 50, s.Cart().TotalItems()) })
}

type blockingSink struct {
	release chan struct{}
}

func (s *blockingSink) Record(context.Context, domain.SubmittedOrder) error {
	<-s.release
	return nil
}

func TestRegistry_CloseWaitsForOrderSinks(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	r := NewRegistry(Options{
		TTL:             time.Hour,
		CleanupInterval: time.Hour,
		Checkout:        checkout.Settings{Sinks: []checkout.OrderSink{sink}},
	})
	s := r.Create()

	var done <-chan struct{}
	s.Do(func() {
		s.Cart().AddToCart(testProduct())
		var err error
		done, err = s.Checkout().FetchLocation(context.Background(),
			checkout.PositionProviderFunc(func(context.Context) (checkout.Position, error) {
				return checkout.Position{Latitude: 30.5, Longitude: 31}, nil
			}))
		require.NoError(t, err)
	})
	<-done

	s.Do(func() {
		_, err := s.Checkout().Submit(context.Background(), checkout.Input{
			Name:    "Mona Ali",
			Phone:   "01012345678",
			Address: "12 Nile Street, Cairo",
		})
		require.NoError(t, err)
	})

	closed := make(chan struct{})
	go func() {
		r.Close()
		close(closed)
	}()

	isClosed := func() bool {
		select {
		case <-closed:
			return true
		default:
			return false
		}
	}
	assert.Never(t, isClosed, 50*time.Millisecond, 5*time.Millisecond)

	close(sink.release)
	assert.Eventually(t, isClosed, time.Second, 5*time.Millisecond)
}
