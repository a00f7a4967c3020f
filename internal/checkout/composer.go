package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/makahco2025-svg/test3/internal/cart"
	"github.com/makahco2025-svg/test3/internal/domain"
	"go.uber.org/zap"
)

// Settings are shared by the composers of all sessions.
type Settings struct {
	Handoff     Handoff
	Sinks       []OrderSink
	Recipient   string
	SinkTimeout time.Duration
	Logger      *zap.Logger
	// Pending, if set, counts sink writes still in flight so shutdown can
	// wait for them before closing the backends.
	Pending *sync.WaitGroup
}

// Input is the customer-typed part of the form. The location URL is never
// typed; it is only set by a successful location request.
type Input struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// Composer owns the checkout form of one session and turns it, together with
// the session's cart, into a handed-off order.
type Composer struct {
	sessionID string
	store     *cart.Store
	locator   *Locator
	settings  Settings
	logger    *zap.Logger

	form   domain.Form
	open   bool
	closed bool
	now    func() time.Time
}

func NewComposer(sessionID string, store *cart.Store, dispatch func(func()), settings Settings) *Composer {
	if settings.Recipient == "" {
		settings.Recipient = DefaultRecipient
	}
	if settings.Handoff == nil {
		settings.Handoff = HandoffFunc(func(context.Context, string) error { return nil })
	}
	if settings.SinkTimeout <= 0 {
		settings.SinkTimeout = 5 * time.Second
	}
	logger := settings.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Composer{
		sessionID: sessionID,
		store:     store,
		settings:  settings,
		logger:    logger.With(zap.String("session_id", sessionID)),
		now:       time.Now,
	}
	c.locator = NewLocator(dispatch, func(url string) {
		c.form.LocationURL = url
	})
	return c
}

// Open and Close toggle the checkout surface.
func (c *Composer) Open()         { c.open = true }
func (c *Composer) CloseSurface() { c.open = false }
func (c *Composer) IsOpen() bool  { return c.open }

func (c *Composer) Form() domain.Form {
	return c.form
}

func (c *Composer) Location() LocationStatus {
	return c.locator.Status()
}

// FetchLocation starts a location request; see Locator.Trigger.
func (c *Composer) FetchLocation(ctx context.Context, provider PositionProvider) (<-chan struct{}, error) {
	return c.locator.Trigger(ctx, provider)
}

// Submit validates in against the form rules, composes the order message
// from the current cart and hands it off. On success the form is reset, the
// cart cleared and the checkout surface closed. On any failure nothing but
// the typed form values changes.
func (c *Composer) Submit(ctx context.Context, in Input) (*domain.SubmittedOrder, error) {
	if c.closed {
		return nil, ErrComposerClosed
	}
	if c.locator.Pending() {
		return nil, ErrLocationPending
	}

	c.form.CustomerName = in.Name
	c.form.Phone = in.Phone
	c.form.Address = in.Address
	c.form.Notes = in.Notes
	form := c.form

	if err := ValidateForm(form); err != nil {
		return nil, err
	}
	if c.store.IsEmpty() {
		return nil, ErrEmptyCart
	}

	lines := c.store.Lines()
	message := ComposeMessage(form, lines)
	link := DeepLink(c.settings.Recipient, message)

	if err := c.settings.Handoff.Open(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to hand off order: %w", err)
	}

	order := domain.SubmittedOrder{
		ID:           uuid.New(),
		SessionID:    c.sessionID,
		CustomerName: form.CustomerName,
		Phone:        form.Phone,
		Address:      form.Address,
		LocationURL:  form.LocationURL,
		Notes:        form.Notes,
		Lines:        lines,
		TotalPrice:   domain.TotalPrice(lines),
		Message:      message,
		HandoffURL:   link,
		SubmittedAt:  c.now().UTC(),
	}

	c.resetForm()
	c.store.ClearCart()
	c.open = false

	c.logger.Info("order handed off",
		zap.String("order_id", order.ID.String()),
		zap.Int("lines", len(lines)),
		zap.String("total", order.TotalPrice.StringFixed(2)))

	c.record(order)
	return &order, nil
}

// Close tears the composer down with its session. A location request still
// in flight is discarded when it resolves.
func (c *Composer) Close() {
	c.closed = true
	c.locator.Close()
}

func (c *Composer) resetForm() {
	c.form = domain.Form{}
	c.locator.Reset()
}

// record hands order to every sink without waiting for them.
func (c *Composer) record(order domain.SubmittedOrder) {
	pending := c.settings.Pending
	for _, sink := range c.settings.Sinks {
		if pending != nil {
			pending.Add(1)
		}
		go func(sink OrderSink) {
			if pending != nil {
				defer pending.Done()
			}
			ctx, cancel := context.WithTimeout(context.Background(), c.settings.SinkTimeout)
			defer cancel()
			if err := sink.Record(ctx, order); err != nil {
				c.logger.Warn("order sink failed",
					zap.String("order_id", order.ID.String()),
					zap.Error(err))
			}
		}(sink)
	}
}
