package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/makahco2025-svg/test3/internal/domain"
	"github.com/segmentio/kafka-go"
)

const (
	DefaultTopic        = "storefront-orders"
	EventOrderSubmitted = "order.submitted"
	eventTypeHeader     = "event_type"
	defaultWriteTimeout = 10 * time.Second
)

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewKafkaWriter(topic string, brokers ...string) *kafka.Writer {
	if topic == "" {
		topic = DefaultTopic
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           defaultWriteTimeout,
		RequiredAcks:           kafka.RequireOne,
	}
}

type eventLine struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Total     string `json:"total"`
}

type orderSubmittedEvent struct {
	OrderID      string      `json:"order_id"`
	SessionID    string      `json:"session_id"`
	CustomerName string      `json:"customer_name"`
	Phone        string      `json:"phone"`
	Address      string      `json:"address"`
	LocationURL  string      `json:"location_url"`
	Notes        string      `json:"notes,omitempty"`
	Lines        []eventLine `json:"lines"`
	TotalItems   int         `json:"total_items"`
	TotalPrice   string      `json:"total_price"`
	SubmittedAt  time.Time   `json:"submitted_at"`
}

func newOrderSubmittedEvent(o domain.SubmittedOrder) orderSubmittedEvent {
	lines := make([]eventLine, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = eventLine{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.Product.UnitPrice().StringFixed(2),
			Total:     l.Total().StringFixed(2),
		}
	}
	return orderSubmittedEvent{
		OrderID:      o.ID.String(),
		SessionID:    o.SessionID,
		CustomerName: o.CustomerName,
		Phone:        o.Phone,
		Address:      o.Address,
		LocationURL:  o.LocationURL,
		Notes:        o.Notes,
		Lines:        lines,
		TotalItems:   domain.TotalItems(o.Lines),
		TotalPrice:   o.TotalPrice.StringFixed(2),
		SubmittedAt:  o.SubmittedAt,
	}
}

// OrderPublisher emits an order.submitted event for every handed-off order,
// keyed by order id.
type OrderPublisher struct {
	writer MessageWriter
}

func NewOrderPublisher(writer MessageWriter) *OrderPublisher {
	return &OrderPublisher{writer: writer}
}

func (p *OrderPublisher) Record(ctx context.Context, order domain.SubmittedOrder) error {
	payload, err := json.Marshal(newOrderSubmittedEvent(order))
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.ID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: eventTypeHeader, Value: []byte(EventOrderSubmitted)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}
	return nil
}

func (p *OrderPublisher) Close() error {
	return p.writer.Close()
}
