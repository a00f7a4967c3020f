package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/makahco2025-svg/test3/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func testOrder() domain.SubmittedOrder {
	discount := decimal.RequireFromString("80")
	lines := []domain.CartLine{
		{Product: domain.Product{ID: 1, Name: "Argan Oil", Price: decimal.RequireFromString("100"), DiscountPrice: &discount}, Quantity: 2},
		{Product: domain.Product{ID: 2, Name: "Rose Oil", Price: decimal.RequireFromString("50")}, Quantity: 1},
	}
	return domain.SubmittedOrder{
		ID:           uuid.New(),
		SessionID:    "session-1",
		CustomerName: "Mona Ali",
		Phone:        "01012345678",
		Address:      "12 Nile Street, Cairo",
		LocationURL:  "https://www.google.com/maps?q=30.0444,31.2357",
		Lines:        lines,
		TotalPrice:   domain.TotalPrice(lines),
		SubmittedAt:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestOrderPublisher_Record(t *testing.T) {
	writer := &fakeWriter{}
	pub := NewOrderPublisher(writer)
	order := testOrder()

	require.NoError(t, pub.Record(context.Background(), order))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, order.ID.String(), string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, EventOrderSubmitted, string(msg.Headers[0].Value))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, order.ID.String(), payload["order_id"])
	assert.Equal(t, "session-1", payload["session_id"])
	assert.Equal(t, "210.00", payload["total_price"])
	assert.Equal(t, float64(3), payload["total_items"])
	assert.NotContains(t, payload, "notes")

	lines := payload["lines"].([]any)
	require.Len(t, lines, 2)
	first := lines[0].(map[string]any)
	assert.Equal(t, "80.00", first["unit_price"])
	assert.Equal(t, "160.00", first["total"])
}

func TestOrderPublisher_WriteError(t *testing.T) {
	pub := NewOrderPublisher(&fakeWriter{err: errors.New("leader not available")})

	err := pub.Record(context.Background(), testOrder())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish order event")
}

func TestOrderPublisher_Close(t *testing.T) {
	writer := &fakeWriter{}
	require.NoError(t, NewOrderPublisher(writer).Close())
	assert.True(t, writer.closed)
}

func TestNewKafkaWriter_DefaultTopic(t *testing.T) {
	w := NewKafkaWriter("", "localhost:9092")
	defer w.Close()
	assert.Equal(t, DefaultTopic, w.Topic)
}

func TestOrderPublisher_PublishesToKafka(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Kafka container test in short mode")
	}
	ctx := context.Background()

	kafkaContainer, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	})

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)

	writer := NewKafkaWriter(DefaultTopic, brokers...)
	pub := NewOrderPublisher(writer)
	defer pub.Close()

	order := testOrder()
	writeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	require.Eventually(t, func() bool {
		return pub.Record(writeCtx, order) == nil
	}, 30*time.Second, time.Second)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    DefaultTopic,
		GroupID:  "test-consumer",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	readCtx, cancelRead := context.WithTimeout(ctx, 30*time.Second)
	defer cancelRead()
	msg, err := reader.ReadMessage(readCtx)
	require.NoError(t, err)
	assert.Equal(t, order.ID.String(), string(msg.Key))
}
