package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/leaderfirst_server/config"
	"github.com/qs3c/leaderfirst_server/internal/model"
	"github.com/qs3c/leaderfirst_server/internal/model/dto"
	"github.com/qs3c/leaderfirst_server/internal/pkg/metrics"
	"github.com/qs3c/leaderfirst_server/internal/repository"
)

const (
	referralAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// 生成新码的最大尝试次数，码空间足够大，正常一两次即可
	maxCodeAttempts = 20
)

var errCodeSpaceExhausted = errors.New("failed to generate unique referral code")

type ReferralService struct {
	referralRepo *repository.ReferralRepository
	userRepo     *repository.UserRepository
	cfg          config.ReferralConfig
	log          *zap.Logger
	now          func() time.Time
}

func NewReferralService(
	referralRepo *repository.ReferralRepository,
	userRepo *repository.UserRepository,
	cfg config.ReferralConfig,
	log *zap.Logger,
) *ReferralService {
	return &ReferralService{
		referralRepo: referralRepo,
		userRepo:     userRepo,
		cfg:          cfg,
		log:          log,
		now:          time.Now,
	}
}

// withTx 返回共用同一事务的副本
func (s *ReferralService) withTx(tx *gorm.DB) *ReferralService {
	cp := *s
	cp.referralRepo = s.referralRepo.WithTx(tx)
	cp.userRepo = s.userRepo.WithTx(tx)
	return &cp
}

// NormalizeReferralCode 去掉首尾空白并转大写
func NormalizeReferralCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IssueOrFetch 返回作者当前的激活码，没有则新建
func (s *ReferralService) IssueOrFetch(ownerID int64) (*dto.ReferralCodeResponse, error) {
	owner, err := s.userRepo.GetByID(ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !CanIssueReferral(owner) {
		return nil, ErrForbidden
	}
	if !owner.HasActivePlan(s.now()) {
		return nil, ErrPlanInactive
	}

	existing, err := s.referralRepo.GetActiveByOwner(ownerID)
	if err == nil {
		return toReferralResponse(existing, false), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateReferralCode(s.codeLength())
		if err != nil {
			return nil, err
		}

		taken, err := s.referralRepo.ExistsByCode(code)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}

		rc := &model.ReferralCode{
			Code:            code,
			OwnerID:         ownerID,
			DiscountPercent: s.discountFor(owner),
			MaxRedemptions:  s.maxRedemptions(),
			Active:          true,
		}
		err = s.referralRepo.Create(rc)
		if err == nil {
			metrics.IncReferralIssued()
			s.log.Info("referral code issued", zap.Int64("owner_id", ownerID), zap.String("code", rc.Code))
			return toReferralResponse(rc, true), nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}

		// 冲突可能来自并发请求已为该作者建好码，也可能是码值撞车
		winner, ferr := s.referralRepo.GetActiveByOwner(ownerID)
		if ferr == nil {
			return toReferralResponse(winner, false), nil
		}
		if !errors.Is(ferr, gorm.ErrRecordNotFound) {
			return nil, ferr
		}
	}

	return nil, errCodeSpaceExhausted
}

// ListMine 作者名下所有码及兑换记录，新码在前
func (s *ReferralService) ListMine(ownerID int64) ([]*dto.ReferralCodeDetail, error) {
	owner, err := s.userRepo.GetByID(ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !CanIssueReferral(owner) {
		return nil, ErrForbidden
	}

	codes, err := s.referralRepo.ListByOwner(ownerID)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.ReferralCodeDetail, 0, len(codes))
	for _, rc := range codes {
		entries, err := s.referralRepo.ListRedemptions(rc.ID)
		if err != nil {
			return nil, err
		}
		detail := &dto.ReferralCodeDetail{
			Code:            rc.Code,
			DiscountPercent: rc.DiscountPercent,
			MaxRedemptions:  rc.MaxRedemptions,
			Redemptions:     rc.Redemptions,
			Active:          rc.Active,
			CreatedAt:       rc.CreatedAt.Format(time.RFC3339),
			RedemptionLog:   make([]*dto.ReferralRedemptionInfo, 0, len(entries)),
		}
		for _, r := range entries {
			detail.RedemptionLog = append(detail.RedemptionLog, &dto.ReferralRedemptionInfo{
				UserID:     r.UserID,
				PaymentID:  r.PaymentID,
				RedeemedAt: r.RedeemedAt.Format(time.RFC3339),
			})
		}
		result = append(result, detail)
	}
	return result, nil
}

// Validate 校验折扣码是否可用
// 不存在、已失效、已用完统一返回 ErrInvalidReferral
func (s *ReferralService) Validate(code string) (*dto.ValidateReferralResponse, error) {
	rc, err := s.lookupUsable(code)
	if err != nil {
		return nil, err
	}
	return &dto.ValidateReferralResponse{
		Valid:           true,
		Code:            rc.Code,
		DiscountPercent: rc.DiscountPercent,
	}, nil
}

func (s *ReferralService) lookupUsable(code string) (*model.ReferralCode, error) {
	code = NormalizeReferralCode(code)
	if code == "" {
		return nil, ErrInvalidReferral
	}

	rc, err := s.referralRepo.GetActiveByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidReferral
		}
		return nil, err
	}
	if rc.Exhausted() {
		return nil, ErrInvalidReferral
	}
	return rc, nil
}

// Redeem 占用一次兑换名额，码不可用时返回 (nil, nil)
// tx 不为空时在该事务中执行
func (s *ReferralService) Redeem(tx *gorm.DB, code string, userID int64, paymentID *int64) (*model.ReferralCode, error) {
	repo := s.referralRepo
	if tx != nil {
		repo = repo.WithTx(tx)
	}

	rc, err := repo.Redeem(NormalizeReferralCode(code), userID, paymentID)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		metrics.IncReferralRedemption("rejected")
		return nil, nil
	}
	metrics.IncReferralRedemption("redeemed")
	return rc, nil
}

func (s *ReferralService) discountFor(owner *model.User) int {
	if owner.HasActivePlan(s.now()) {
		return s.cfg.ActiveDiscount
	}
	return s.cfg.InactiveDiscount
}

func (s *ReferralService) codeLength() int {
	if s.cfg.CodeLength <= 0 {
		return 7
	}
	return s.cfg.CodeLength
}

func (s *ReferralService) maxRedemptions() int {
	if s.cfg.MaxRedemptions <= 0 {
		return 1
	}
	return s.cfg.MaxRedemptions
}

func toReferralResponse(rc *model.ReferralCode, created bool) *dto.ReferralCodeResponse {
	return &dto.ReferralCodeResponse{
		Code:            rc.Code,
		DiscountPercent: rc.DiscountPercent,
		Created:         created,
	}
}

// generateReferralCode 从大写字母和数字中均匀抽取 length 个字符
func generateReferralCode(length int) (string, error) {
	max := big.NewInt(int64(len(referralAlphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate referral code: %w", err)
		}
		buf[i] = referralAlphabet[n.Int64()]
	}
	return string(buf), nil
}
