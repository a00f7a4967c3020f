package checkout

import (
	"context"
	"errors"
)

const (
	msgLocationUnsupported = "متصفحك لا يدعم خدمة تحديد الموقع."
	msgLocationFailed      = "لا يمكن الحصول على الموقع. يرجى التأكد من تفعيل خدمة تحديد الموقع والموافقة على الطلب."
)

var ErrInvalidPosition = errors.New("coordinates out of range")

type LocationState string

const (
	LocationIdle      LocationState = "idle"
	LocationPending   LocationState = "pending"
	LocationSucceeded LocationState = "succeeded"
	LocationFailed    LocationState = "failed"
)

type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (p Position) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

// PositionProvider resolves the device's current coordinates. A nil provider
// means the capability is absent.
type PositionProvider interface {
	CurrentPosition(ctx context.Context) (Position, error)
}

type PositionProviderFunc func(ctx context.Context) (Position, error)

func (f PositionProviderFunc) CurrentPosition(ctx context.Context) (Position, error) {
	return f(ctx)
}

// LocationStatus is a read-only view of the locator. Error is the
// user-facing reason of a failed request, Cause the underlying error.
type LocationStatus struct {
	State LocationState `json:"state"`
	URL   string        `json:"url,omitempty"`
	Error string        `json:"error,omitempty"`
	Cause error         `json:"-"`
}

// Locator runs one location request at a time through the states
// idle -> pending -> succeeded|failed. Every method must be called from the
// owning session's dispatch context; resolutions are delivered back through
// dispatch as well.
type Locator struct {
	dispatch   func(func())
	onResolved func(url string)

	state   LocationState
	url     string
	message string
	cause   error
	gen     uint64
	closed  bool
}

func NewLocator(dispatch func(func()), onResolved func(url string)) *Locator {
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &Locator{
		dispatch:   dispatch,
		onResolved: onResolved,
		state:      LocationIdle,
	}
}

// Trigger starts a location request. The returned channel is closed once the
// request has resolved or been discarded. A nil provider fails immediately.
func (l *Locator) Trigger(ctx context.Context, provider PositionProvider) (<-chan struct{}, error) {
	if l.closed {
		return nil, ErrComposerClosed
	}
	if l.state == LocationPending {
		return nil, ErrLocationPending
	}

	l.gen++
	l.url = ""
	l.message = ""
	l.cause = nil
	done := make(chan struct{})

	if provider == nil {
		l.state = LocationFailed
		l.message = msgLocationUnsupported
		l.cause = ErrGeolocationUnsupported
		close(done)
		return done, nil
	}

	l.state = LocationPending
	gen := l.gen
	// The request outlives the call that started it; there is no cancellation.
	ctx = context.WithoutCancel(ctx)
	go func() {
		pos, err := provider.CurrentPosition(ctx)
		if err == nil && !pos.Valid() {
			err = ErrInvalidPosition
		}
		l.dispatch(func() {
			defer close(done)
			l.resolve(gen, pos, err)
		})
	}()
	return done, nil
}

func (l *Locator) resolve(gen uint64, pos Position, err error) {
	if l.closed || gen != l.gen {
		return
	}
	if err != nil {
		l.state = LocationFailed
		l.message = msgLocationFailed
		l.cause = err
		return
	}
	l.state = LocationSucceeded
	l.url = MapURL(pos)
	if l.onResolved != nil {
		l.onResolved(l.url)
	}
}

func (l *Locator) Status() LocationStatus {
	return LocationStatus{State: l.state, URL: l.url, Error: l.message, Cause: l.cause}
}

func (l *Locator) Pending() bool {
	return l.state == LocationPending
}

// Reset returns to idle; a request still in flight is discarded when it resolves.
func (l *Locator) Reset() {
	l.gen++
	l.state = LocationIdle
	l.url = ""
	l.message = ""
	l.cause = nil
}

// Close discards any in-flight resolution and rejects further triggers.
func (l *Locator) Close() {
	l.closed = true
	l.gen++
}
