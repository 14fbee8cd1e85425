package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
	closed   bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange = exchange
	f.key = key
	f.msg = msg
	return f.err
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestRabbitPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := &RabbitPublisher{channel: ch, queue: "products.events"}
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	err := p.Publish(context.Background(), ProductEvent{
		EventType: EventCreated,
		ProductID: "65a1f0c2e4b0a1b2c3d4e5f6",
		Name:      "Bunk bed",
		Timestamp: ts,
	})
	require.NoError(t, err)

	assert.Equal(t, "", ch.exchange)
	assert.Equal(t, "products.events", ch.key)
	assert.Equal(t, contentTypeJSON, ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, EventCreated, ch.msg.Type)

	var got map[string]any
	require.NoError(t, json.Unmarshal(ch.msg.Body, &got))
	assert.Equal(t, "product_created", got["event_type"])
	assert.Equal(t, "65a1f0c2e4b0a1b2c3d4e5f6", got["product_id"])
	assert.Equal(t, "Bunk bed", got["name"])
	assert.Equal(t, "2026-01-02T03:04:05Z", got["timestamp"])
}

func TestRabbitPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := &RabbitPublisher{channel: ch, queue: "products.events"}

	err := p.Publish(context.Background(), ProductEvent{EventType: EventDeleted, ProductID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `publish to "products.events"`)
	assert.ErrorIs(t, err, ch.err)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestNopPublisher(t *testing.T) {
	var p NopPublisher
	assert.NoError(t, p.Publish(context.Background(), ProductEvent{EventType: EventUpdated}))
	assert.NoError(t, p.Close())
}
