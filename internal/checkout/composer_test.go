package checkout

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/makahco2025-svg/test3/internal/cart"
	"github.com/makahco2025-svg/test3/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingHandoff struct {
	links []string
	err   error
}

func (h *recordingHandoff) Open(_ context.Context, link string) error {
	if h.err != nil {
		return h.err
	}
	h.links = append(h.links, link)
	return nil
}

type recordingSink struct {
	mu     sync.Mutex
	orders []domain.SubmittedOrder
	err    error
}

func (s *recordingSink) Record(_ context.Context, order domain.SubmittedOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, order)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, string) {}

func scenarioStore() *cart.Store {
	store := cart.NewStore(nopNotifier{})
	lines := scenarioLines()
	store.AddToCart(lines[0].Product)
	store.AddToCart(lines[0].Product)
	store.AddToCart(lines[1].Product)
	return store
}

func validInput() Input {
	return Input{Name: "Mona Ali", Phone: "01012345678", Address: "12 Nile Street, Cairo"}
}

// locate resolves a location for c and waits for it.
func locate(t *testing.T, c *Composer, lat, lng float64) {
	t.Helper()
	done, err := c.FetchLocation(context.Background(), fixedPosition(lat, lng))
	require.NoError(t, err)
	waitDone(t, done)
}

func newTestComposer(store *cart.Store, handoff Handoff, sinks ...OrderSink) *Composer {
	return NewComposer("session-1", store, nil, Settings{Handoff: handoff, Sinks: sinks})
}

func TestComposer_LocationFillsForm(t *testing.T) {
	c := newTestComposer(scenarioStore(), nil)
	locate(t, c, 30.0444, 31.2357)

	assert.Equal(t, "https://www.google.com/maps?q=30.0444,31.2357", c.Form().LocationURL)
	assert.Equal(t, LocationSucceeded, c.Location().State)
}

func TestComposer_Submit(t *testing.T) {
	store := scenarioStore()
	handoff := &recordingHandoff{}
	sink := &recordingSink{}
	c := newTestComposer(store, handoff, sink)
	c.Open()
	locate(t, c, 30.0444, 31.2357)

	order, err := c.Submit(context.Background(), validInput())
	require.NoError(t, err)

	expectedMessage := ComposeMessage(validForm(), scenarioLines())
	assert.Equal(t, expectedMessage, order.Message)
	require.Len(t, handoff.links, 1)
	assert.Equal(t, order.HandoffURL, handoff.links[0])
	assert.True(t, strings.HasPrefix(order.HandoffURL, "https://wa.me/201030566078?text="))

	decoded, err := url.QueryUnescape(strings.TrimPrefix(order.HandoffURL, "https://wa.me/201030566078?text="))
	require.NoError(t, err)
	assert.Equal(t, expectedMessage, decoded)

	assert.Equal(t, "210.00", order.TotalPrice.StringFixed(2))
	assert.Len(t, order.Lines, 2)
	assert.Equal(t, "session-1", order.SessionID)

	assert.True(t, store.IsEmpty())
	assert.Equal(t, domain.Form{}, c.Form())
	assert.Equal(t, LocationIdle, c.Location().State)
	assert.False(t, c.IsOpen())

	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, order.ID, sink.orders[0].ID)
}

func TestComposer_SubmitCustomRecipient(t *testing.T) {
	handoff := &recordingHandoff{}
	c := NewComposer("s", scenarioStore(), nil, Settings{Handoff: handoff, Recipient: "201000000000"})
	locate(t, c, 1, 2)

	order, err := c.Submit(context.Background(), validInput())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(order.HandoffURL, "https://wa.me/201000000000?text="))
}

func TestComposer_SubmitInvalidFormChangesNothing(t *testing.T) {
	store := scenarioStore()
	handoff := &recordingHandoff{}
	c := newTestComposer(store, handoff)
	c.Open()

	in := validInput()
	in.Phone = "12345"
	_, err := c.Submit(context.Background(), in)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, FieldPhone)
	assert.Contains(t, verr.Fields, FieldLocationURL)
	assert.Empty(t, handoff.links)
	assert.Equal(t, 3, store.TotalItems())
	assert.True(t, c.IsOpen())
	assert.Equal(t, "12345", c.Form().Phone)
}

func TestComposer_SubmitEmptyCart(t *testing.T) {
	store := cart.NewStore(nopNotifier{})
	handoff := &recordingHandoff{}
	c := newTestComposer(store, handoff)
	locate(t, c, 1, 2)

	_, err := c.Submit(context.Background(), validInput())
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, handoff.links)
	assert.Equal(t, "Mona Ali", c.Form().CustomerName)
}

func TestComposer_SubmitHandoffFailureKeepsCart(t *testing.T) {
	store := scenarioStore()
	sink := &recordingSink{}
	c := newTestComposer(store, &recordingHandoff{err: errors.New("popup blocked")}, sink)
	c.Open()
	locate(t, c, 1, 2)

	_, err := c.Submit(context.Background(), validInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to hand off order")

	assert.Equal(t, 3, store.TotalItems())
	assert.True(t, c.IsOpen())
	assert.NotEmpty(t, c.Form().LocationURL)
	assert.Never(t, func() bool { return sink.count() > 0 }, 50*time.Millisecond, 10*time.Millisecond)
}

func TestComposer_SubmitWhileLocating(t *testing.T) {
	release := make(chan struct{})
	store := scenarioStore()
	c := newTestComposer(store, nil)

	done, err := c.FetchLocation(context.Background(), blockingProvider(release, Position{Latitude: 1, Longitude: 2}, nil))
	require.NoError(t, err)

	_, err = c.Submit(context.Background(), validInput())
	assert.ErrorIs(t, err, ErrLocationPending)
	assert.Equal(t, 3, store.TotalItems())

	close(release)
	waitDone(t, done)
	_, err = c.Submit(context.Background(), validInput())
	assert.NoError(t, err)
}

func TestComposer_SubmitAfterClose(t *testing.T) {
	c := newTestComposer(scenarioStore(), nil)
	c.Close()

	_, err := c.Submit(context.Background(), validInput())
	assert.ErrorIs(t, err, ErrComposerClosed)
	_, err = c.FetchLocation(context.Background(), fixedPosition(1, 2))
	assert.ErrorIs(t, err, ErrComposerClosed)
}

func TestComposer_SinkFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	sink := &recordingSink{err: errors.New("broker down")}
	c := NewComposer("s", scenarioStore(), nil, Settings{Sinks: []OrderSink{sink}, Logger: zap.New(core)})
	locate(t, c, 1, 2)

	_, err := c.Submit(context.Background(), validInput())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return logs.FilterMessage("order sink failed").Len() == 1
	}, time.Second, 10*time.Millisecond)
}

type blockingSink struct {
	release  chan struct{}
	recorded chan domain.SubmittedOrder
}

func (s *blockingSink) Record(_ context.Context, order domain.SubmittedOrder) error {
	<-s.release
	s.recorded <- order
	return nil
}

func TestComposer_PendingTracksSinkWrites(t *testing.T) {
	var pending sync.WaitGroup
	sink := &blockingSink{release: make(chan struct{}), recorded: make(chan domain.SubmittedOrder, 1)}
	c := NewComposer("s", scenarioStore(), nil, Settings{Sinks: []OrderSink{sink}, Pending: &pending})
	locate(t, c, 1, 2)

	order, err := c.Submit(context.Background(), validInput())
	require.NoError(t, err)

	drained := make(chan struct{})
	go func() {
		pending.Wait()
		close(drained)
	}()

	assert.Never(t, func() bool {
		select {
		case <-drained:
			return true
		default:
			return false
		}
	}, 50*time.Millisecond, 5*time.Millisecond)

	close(sink.release)
	select {
	case <-drained:
	case <-time.After(time.Second):
		t.Fatal("pending sink writes were not drained")
	}
	assert.Equal(t, order.ID, (<-sink.recorded).ID)
}

func TestComposer_SurfaceToggle(t *testing.T) {
	c := newTestComposer(scenarioStore(), nil)
	assert.False(t, c.IsOpen())
	c.Open()
	assert.True(t, c.IsOpen())
	c.CloseSurface()
	assert.False(t, c.IsOpen())
}
