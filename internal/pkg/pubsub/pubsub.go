package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelPaymentEvents = "payment_events"
)

// 事件类型
const (
	EventPaymentSubmitted = "payment_submitted"
	EventPaymentReviewed  = "payment_reviewed"
)

// PaymentEvent 付款申请状态变化
type PaymentEvent struct {
	Type       string    `json:"type"`
	PaymentID  int64     `json:"payment_id"`
	UserID     int64     `json:"user_id"`
	PlanKey    string    `json:"plan_key"`
	Amount     float64   `json:"amount"`
	Status     string    `json:"status"`
	ReviewedBy *int64    `json:"reviewed_by,omitempty"`
	Comment    string    `json:"comment,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishPaymentEvent 发布付款事件
func (p *Publisher) PublishPaymentEvent(ctx context.Context, event *PaymentEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal payment event: %w", err)
	}

	return p.client.Publish(ctx, ChannelPaymentEvents, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅付款事件，阻塞到 ctx 结束
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*PaymentEvent)) error {
	ps := s.client.Subscribe(ctx, ChannelPaymentEvents)
	defer ps.Close()

	// 等待订阅确认，之后发布的消息不会丢
	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	ch := ps.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var event PaymentEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue // 忽略解析错误
			}

			handler(&event)
		}
	}
}
