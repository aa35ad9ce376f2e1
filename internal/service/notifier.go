package service

import (
	"context"

	"github.com/qs3c/leaderfirst_server/internal/pkg/pubsub"
)

// Notifier 发送邮件，调用方不等待实际投递
type Notifier interface {
	Send(ctx context.Context, to, subject, html string) error
}

// EventPublisher 付款状态变化的广播
type EventPublisher interface {
	PublishPaymentEvent(ctx context.Context, event *pubsub.PaymentEvent) error
}
