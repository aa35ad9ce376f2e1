package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/leaderfirst_server/config"
	"github.com/qs3c/leaderfirst_server/internal/pkg/pubsub"
	"github.com/qs3c/leaderfirst_server/internal/repository"
	"github.com/qs3c/leaderfirst_server/internal/testutil"
)

type sentMail struct {
	To      string
	Subject string
	HTML    string
}

// fakeNotifier 记录发送的邮件，fail 为 true 时返回错误
type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (n *fakeNotifier) Send(_ context.Context, to, subject, html string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("smtp unavailable")
	}
	n.sent = append(n.sent, sentMail{To: to, Subject: subject, HTML: html})
	return nil
}

func (n *fakeNotifier) Sent() []sentMail {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMail(nil), n.sent...)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*pubsub.PaymentEvent
}

func (p *fakePublisher) PublishPaymentEvent(_ context.Context, event *pubsub.PaymentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) Events() []*pubsub.PaymentEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*pubsub.PaymentEvent(nil), p.events...)
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:      "test-secret-key-for-testing",
			ExpireHours: 168,
		},
		OTP: config.OTPConfig{
			TTLMinutes: 5,
			Length:     6,
		},
		Referral: config.ReferralConfig{
			CodeLength:       7,
			ActiveDiscount:   10,
			InactiveDiscount: 3,
			MaxRedemptions:   1,
		},
		Billing: config.BillingConfig{
			RenewMonths: 3,
		},
		Plans: map[string]config.PlanConfig{
			"contributor": {Name: "Contributor Author", ArticlesPerQuarter: 3, PriceQuarterly: 52},
			"core":        {Name: "Core Author", ArticlesPerQuarter: 9, PriceQuarterly: 106},
		},
	}
}

type paymentFixture struct {
	db        *gorm.DB
	payments  *PaymentService
	referrals *ReferralService
	users     *repository.UserRepository
	notifier  *fakeNotifier
	events    *fakePublisher
}

func setupPaymentService(t *testing.T) (*paymentFixture, func()) {
	t.Helper()
	return setupPaymentServiceOn(t, testutil.SetupTestDB(t))
}

// setupConcurrentPaymentService 多连接数据库，并发用例的语句会真正交错执行
func setupConcurrentPaymentService(t *testing.T) (*paymentFixture, func()) {
	t.Helper()
	return setupPaymentServiceOn(t, testutil.SetupConcurrentTestDB(t, testutil.TxLockImmediate))
}

func setupPaymentServiceOn(t *testing.T, db *gorm.DB) (*paymentFixture, func()) {
	t.Helper()

	cfg := testConfig()
	log := zap.NewNop()

	userRepo := repository.NewUserRepository(db)
	referralService := NewReferralService(repository.NewReferralRepository(db), userRepo, cfg.Referral, log)
	notifier := &fakeNotifier{}
	events := &fakePublisher{}

	payments := NewPaymentService(
		db,
		repository.NewPaymentRepository(db),
		userRepo,
		referralService,
		events,
		notifier,
		cfg,
		log,
	)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return &paymentFixture{
		db:        db,
		payments:  payments,
		referrals: referralService,
		users:     userRepo,
		notifier:  notifier,
		events:    events,
	}, cleanup
}
