package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// EmailQueue 待发送邮件队列，由 worker 进程消费
type EmailQueue struct {
	client    *redis.Client
	queueName string
}

type EmailMessage struct {
	To       string    `json:"to"`
	Subject  string    `json:"subject"`
	HTML     string    `json:"html"`
	Attempts int       `json:"attempts,omitempty"`
	QueuedAt time.Time `json:"queued_at"`
}

func NewEmailQueue(client *redis.Client, queueName string) *EmailQueue {
	return &EmailQueue{
		client:    client,
		queueName: queueName,
	}
}

// Send 入队一封邮件，调用方不等待投递结果
func (q *EmailQueue) Send(ctx context.Context, to, subject, html string) error {
	return q.Push(ctx, &EmailMessage{
		To:      to,
		Subject: subject,
		HTML:    html,
	})
}

// Push 将邮件加入队列
func (q *EmailQueue) Push(ctx context.Context, msg *EmailMessage) error {
	if msg.QueuedAt.IsZero() {
		msg.QueuedAt = time.Now()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return q.client.LPush(ctx, q.queueName, data).Err()
}

// Pop 从队列获取邮件（阻塞），超时返回 nil
func (q *EmailQueue) Pop(ctx context.Context, timeout time.Duration) (*EmailMessage, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop from queue: %w", err)
	}

	if len(result) < 2 {
		return nil, nil
	}

	var msg EmailMessage
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	return &msg, nil
}

// Length 获取队列长度
func (q *EmailQueue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueName).Result()
}
