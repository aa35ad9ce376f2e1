package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/leaderfirst_server/internal/pkg/metrics"
	"github.com/qs3c/leaderfirst_server/internal/pkg/queue"
)

const popTimeout = 5 * time.Second

// Mailer 实际发送邮件，email.Service 实现
type Mailer interface {
	Deliver(ctx context.Context, to, subject, html string) error
}

// Processor 消费邮件队列
type Processor struct {
	queue       *queue.EmailQueue
	mailer      Mailer
	maxAttempts int
	log         *zap.Logger
}

func NewProcessor(q *queue.EmailQueue, mailer Mailer, maxAttempts int, log *zap.Logger) *Processor {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &Processor{
		queue:       q,
		mailer:      mailer,
		maxAttempts: maxAttempts,
		log:         log,
	}
}

// Process 投递一封邮件
// 失败且未超过次数时重新入队，超过后丢弃并记录
func (p *Processor) Process(ctx context.Context, msg *queue.EmailMessage) error {
	err := p.mailer.Deliver(ctx, msg.To, msg.Subject, msg.HTML)
	if err == nil {
		metrics.IncEmailDelivery("sent")
		p.log.Info("email sent",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Duration("queued_for", time.Since(msg.QueuedAt)),
		)
		return nil
	}

	msg.Attempts++
	if msg.Attempts >= p.maxAttempts {
		metrics.IncEmailDelivery("dropped")
		p.log.Error("email dropped",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Int("attempts", msg.Attempts),
			zap.Error(err),
		)
		return err
	}

	if pushErr := p.queue.Push(ctx, msg); pushErr != nil {
		p.log.Error("requeue email failed", zap.String("to", msg.To), zap.Error(pushErr))
		return err
	}
	metrics.IncEmailDelivery("requeued")
	p.log.Warn("email requeued", zap.String("to", msg.To), zap.Int("attempts", msg.Attempts), zap.Error(err))
	return err
}

// Run 循环消费直到 ctx 结束
func (p *Processor) Run(ctx context.Context, workerID int) {
	log := p.log.With(zap.Int("worker", workerID))
	log.Info("email worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info("email worker shutting down")
			return
		default:
		}

		msg, err := p.queue.Pop(ctx, popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("pop email failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if msg == nil {
			continue
		}

		_ = p.Process(ctx, msg)
	}
}
