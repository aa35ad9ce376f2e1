package pubsub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return client, cleanup
}

func TestPaymentEvent_JSON(t *testing.T) {
	reviewer := int64(9)
	event := &PaymentEvent{
		Type:       EventPaymentReviewed,
		PaymentID:  1,
		UserID:     2,
		PlanKey:    "core",
		Amount:     160,
		Status:     "approved",
		ReviewedBy: &reviewer,
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Contains(t, raw, "payment_id")
	assert.Contains(t, raw, "user_id")
	assert.Contains(t, raw, "reviewed_by")
	_, hasComment := raw["comment"]
	assert.False(t, hasComment, "empty comment should be omitted")
}

func TestPublisherSubscriber(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	publisher := NewPublisher(client)
	subscriber := NewSubscriber(client)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan *PaymentEvent, 1)
	go func() {
		_ = subscriber.Subscribe(ctx, func(event *PaymentEvent) {
			received <- event
		})
	}()

	// 等待订阅建立
	require.Eventually(t, func() bool {
		n, err := client.PubSubNumSub(ctx, ChannelPaymentEvents).Result()
		return err == nil && n[ChannelPaymentEvents] > 0
	}, 2*time.Second, 10*time.Millisecond)

	err := publisher.PublishPaymentEvent(ctx, &PaymentEvent{
		Type:      EventPaymentSubmitted,
		PaymentID: 42,
		UserID:    7,
		PlanKey:   "contributor",
		Amount:    52,
		Status:    "pending",
	})
	require.NoError(t, err)

	select {
	case event := <-received:
		assert.Equal(t, EventPaymentSubmitted, event.Type)
		assert.Equal(t, int64(42), event.PaymentID)
		assert.Equal(t, int64(7), event.UserID)
		assert.False(t, event.OccurredAt.IsZero())
	case <-ctx.Done():
		t.Fatal("Timeout waiting for event")
	}
}

func TestSubscriber_StopsOnCancel(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	subscriber := NewSubscriber(client)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- subscriber.Subscribe(ctx, func(*PaymentEvent) {})
	}()

	cancel()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Subscribe did not return after cancel")
	}
}
