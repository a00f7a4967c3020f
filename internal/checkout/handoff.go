package checkout

import (
	"context"

	"github.com/makahco2025-svg/test3/internal/domain"
)

// Handoff opens the deep link that passes the order to the messaging channel.
// No response is awaited; an error only means the link could not be opened.
type Handoff interface {
	Open(ctx context.Context, link string) error
}

type HandoffFunc func(ctx context.Context, link string) error

func (f HandoffFunc) Open(ctx context.Context, link string) error {
	return f(ctx, link)
}

// OrderSink receives every order that was handed off successfully.
type OrderSink interface {
	Record(ctx context.Context, order domain.SubmittedOrder) error
}

// Breaker runs fn unless it is currently rejecting calls.
type Breaker interface {
	Execute(fn func() error) error
}

type guardedSink struct {
	sink    OrderSink
	breaker Breaker
}

// GuardSink routes every Record through breaker.
func GuardSink(sink OrderSink, breaker Breaker) OrderSink {
	return guardedSink{sink: sink, breaker: breaker}
}

func (g guardedSink) Record(ctx context.Context, order domain.SubmittedOrder) error {
	return g.breaker.Execute(func() error {
		return g.sink.Record(ctx, order)
	})
}
