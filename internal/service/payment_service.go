package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/leaderfirst_server/config"
	"github.com/qs3c/leaderfirst_server/internal/model"
	"github.com/qs3c/leaderfirst_server/internal/model/dto"
	"github.com/qs3c/leaderfirst_server/internal/pkg/email"
	"github.com/qs3c/leaderfirst_server/internal/pkg/metrics"
	"github.com/qs3c/leaderfirst_server/internal/pkg/pubsub"
	"github.com/qs3c/leaderfirst_server/internal/repository"
)

type PaymentService struct {
	db              *gorm.DB
	paymentRepo     *repository.PaymentRepository
	userRepo        *repository.UserRepository
	referralService *ReferralService
	events          EventPublisher
	notifier        Notifier
	cfg             *config.Config
	log             *zap.Logger
	now             func() time.Time
}

func NewPaymentService(
	db *gorm.DB,
	paymentRepo *repository.PaymentRepository,
	userRepo *repository.UserRepository,
	referralService *ReferralService,
	events EventPublisher,
	notifier Notifier,
	cfg *config.Config,
	log *zap.Logger,
) *PaymentService {
	return &PaymentService{
		db:              db,
		paymentRepo:     paymentRepo,
		userRepo:        userRepo,
		referralService: referralService,
		events:          events,
		notifier:        notifier,
		cfg:             cfg,
		log:             log,
		now:             time.Now,
	}
}

// Submit 提交线下付款申请
// 带折扣码时，校验、兑换、建单在同一事务内完成；兑换在提交时发生，审核拒绝也不退回
func (s *PaymentService) Submit(ctx context.Context, userID int64, req *dto.SubmitPaymentRequest) (*dto.PaymentInfo, error) {
	paymentDate, err := validateSubmission(req)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	payment := &model.PaymentRequest{
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		Email:       user.Email,
		PlanKey:     req.PlanKey,
		Amount:      req.Amount,
		TxID:        strings.TrimSpace(req.TxID),
		BankName:    strings.TrimSpace(req.BankName),
		PaymentDate: paymentDate,
		Note:        strings.TrimSpace(req.Note),
		Status:      model.PaymentStatusPending,
	}

	code := NormalizeReferralCode(req.ReferralCode)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var redeemed *model.ReferralCode
		if code != "" {
			referrals := s.referralService.withTx(tx)
			if _, err := referrals.Validate(code); err != nil {
				return err
			}
			rc, err := referrals.Redeem(tx, code, userID, nil)
			if err != nil {
				return err
			}
			// 校验通过后被并发提交抢先用掉
			if rc == nil {
				return ErrInvalidReferral
			}
			redeemed = rc
			payment.ReferralCode = &rc.Code
			discount := rc.DiscountPercent
			payment.ReferralDiscountPercent = &discount
		}

		if err := s.paymentRepo.WithTx(tx).Create(payment); err != nil {
			return err
		}

		if redeemed != nil {
			return repository.NewReferralRepository(tx).AttachPayment(redeemed.ID, userID, payment.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncPaymentRequest(payment.PlanKey)
	s.log.Info("payment request submitted",
		zap.Int64("payment_id", payment.ID),
		zap.Int64("user_id", userID),
		zap.String("plan", payment.PlanKey),
		zap.Bool("referral", payment.ReferralCode != nil),
	)
	s.publish(ctx, &pubsub.PaymentEvent{
		Type:      pubsub.EventPaymentSubmitted,
		PaymentID: payment.ID,
		UserID:    userID,
		PlanKey:   payment.PlanKey,
		Amount:    payment.Amount,
		Status:    payment.Status,
	})

	return dto.NewPaymentInfo(payment), nil
}

func validateSubmission(req *dto.SubmitPaymentRequest) (*time.Time, error) {
	var missing []string
	if strings.TrimSpace(req.Name) == "" {
		missing = append(missing, "name")
	}
	if req.PlanKey == "" {
		missing = append(missing, "plan_key")
	}
	if req.Amount <= 0 {
		missing = append(missing, "amount")
	}
	if strings.TrimSpace(req.TxID) == "" {
		missing = append(missing, "tx_id")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	if !model.IsKnownPlanKey(req.PlanKey) {
		return nil, fmt.Errorf("%w: unknown plan_key %q", ErrValidation, req.PlanKey)
	}
	return parsePaymentDate(req.PaymentDate)
}

// parsePaymentDate 支持日期控件的 YYYY-MM-DD 和 RFC3339，空值返回 nil
func parsePaymentDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: payment_date must be YYYY-MM-DD", ErrValidation)
}

// Review 审核付款申请
// 付款行与用户行在同一事务内加锁修改，状态流转以 status = pending 为条件，重复审核不会重复开通套餐
func (s *PaymentService) Review(ctx context.Context, paymentID, reviewerID int64, action, comment string) (*dto.PaymentInfo, error) {
	if err := s.requireReviewer(reviewerID); err != nil {
		return nil, err
	}
	if action != dto.ReviewActionApprove && action != dto.ReviewActionReject {
		return nil, ErrInvalidReviewAction
	}
	comment = strings.TrimSpace(comment)

	var (
		payment  *model.PaymentRequest
		plan     config.PlanConfig
		renewsAt *time.Time
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		payments := s.paymentRepo.WithTx(tx)
		users := s.userRepo.WithTx(tx)

		p, err := payments.GetByIDForUpdate(paymentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}
		if !p.IsPending() {
			return ErrAlreadyReviewed
		}

		now := s.now()
		status := model.PaymentStatusRejected

		if action == dto.ReviewActionApprove {
			var ok bool
			plan, ok = s.cfg.Plans[p.PlanKey]
			if !ok {
				return ErrUnknownPlan
			}

			if _, err := users.GetByIDForUpdate(p.UserID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrUserNotFound
				}
				return err
			}

			details := &model.PlanDetails{
				Key:                p.PlanKey,
				Name:               plan.Name,
				ArticlesPerQuarter: plan.ArticlesPerQuarter,
				PriceQuarterly:     plan.PriceQuarterly,
			}
			renews := now.AddDate(0, s.renewMonths(), 0)
			if err := users.ActivatePlan(p.UserID, details, renews, now); err != nil {
				return err
			}
			renewsAt = &renews
			status = model.PaymentStatusApproved
		}

		flipped, err := payments.MarkReviewed(p.ID, status, reviewerID, comment, now)
		if err != nil {
			return err
		}
		if !flipped {
			return ErrAlreadyReviewed
		}

		p.Status = status
		p.AdminComment = comment
		p.ReviewedBy = &reviewerID
		p.ReviewedAt = &now
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncPaymentReview(action)
	if payment.Status == model.PaymentStatusApproved {
		metrics.IncPlanActivation(payment.PlanKey)
	}
	s.log.Info("payment request reviewed",
		zap.Int64("payment_id", payment.ID),
		zap.Int64("reviewer_id", reviewerID),
		zap.String("status", payment.Status),
	)

	s.publish(ctx, &pubsub.PaymentEvent{
		Type:       pubsub.EventPaymentReviewed,
		PaymentID:  payment.ID,
		UserID:     payment.UserID,
		PlanKey:    payment.PlanKey,
		Amount:     payment.Amount,
		Status:     payment.Status,
		ReviewedBy: payment.ReviewedBy,
		Comment:    payment.AdminComment,
	})
	s.notifyOwner(ctx, payment, plan, renewsAt)

	return dto.NewPaymentInfo(payment), nil
}

// ListPending 待审核列表，新提交的在前
func (s *PaymentService) ListPending(reviewerID int64) ([]*dto.PaymentInfo, error) {
	if err := s.requireReviewer(reviewerID); err != nil {
		return nil, err
	}

	list, err := s.paymentRepo.ListPending()
	if err != nil {
		return nil, err
	}
	return toPaymentInfos(list), nil
}

// ListMine 用户自己的申请记录
func (s *PaymentService) ListMine(userID int64) ([]*dto.PaymentInfo, error) {
	list, err := s.paymentRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	return toPaymentInfos(list), nil
}

func (s *PaymentService) requireReviewer(reviewerID int64) error {
	reviewer, err := s.userRepo.GetByID(reviewerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrForbidden
		}
		return err
	}
	if !CanReviewPayments(reviewer) {
		return ErrForbidden
	}
	return nil
}

func (s *PaymentService) renewMonths() int {
	if s.cfg.Billing.RenewMonths <= 0 {
		return 3
	}
	return s.cfg.Billing.RenewMonths
}

// publish 事务提交后广播，失败只记录日志
func (s *PaymentService) publish(ctx context.Context, event *pubsub.PaymentEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishPaymentEvent(ctx, event); err != nil {
		s.log.Warn("publish payment event failed",
			zap.String("type", event.Type),
			zap.Int64("payment_id", event.PaymentID),
			zap.Error(err),
		)
	}
}

func (s *PaymentService) notifyOwner(ctx context.Context, p *model.PaymentRequest, plan config.PlanConfig, renewsAt *time.Time) {
	if s.notifier == nil {
		return
	}
	planName := plan.Name
	if planName == "" {
		planName = p.PlanKey
	}
	subject, body := email.PaymentReviewed(p.Name, planName, p.Status == model.PaymentStatusApproved, p.AdminComment, renewsAt)
	if err := s.notifier.Send(ctx, p.Email, subject, body); err != nil {
		s.log.Warn("send review email failed", zap.Int64("payment_id", p.ID), zap.Error(err))
	}
}

func toPaymentInfos(list []*model.PaymentRequest) []*dto.PaymentInfo {
	infos := make([]*dto.PaymentInfo, 0, len(list))
	for _, p := range list {
		infos = append(infos, dto.NewPaymentInfo(p))
	}
	return infos
}
