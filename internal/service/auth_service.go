package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/leaderfirst_server/config"
	"github.com/qs3c/leaderfirst_server/internal/model"
	"github.com/qs3c/leaderfirst_server/internal/model/dto"
	"github.com/qs3c/leaderfirst_server/internal/pkg/email"
	"github.com/qs3c/leaderfirst_server/internal/pkg/jwt"
	"github.com/qs3c/leaderfirst_server/internal/pkg/metrics"
	"github.com/qs3c/leaderfirst_server/internal/pkg/otp"
	"github.com/qs3c/leaderfirst_server/internal/repository"
)

type AuthService struct {
	userRepo *repository.UserRepository
	otpStore *otp.Store
	notifier Notifier
	cfg      *config.Config
	log      *zap.Logger
	now      func() time.Time
}

func NewAuthService(
	userRepo *repository.UserRepository,
	otpStore *otp.Store,
	notifier Notifier,
	cfg *config.Config,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		otpStore: otpStore,
		notifier: notifier,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) otpTTL() time.Duration {
	return time.Duration(s.cfg.OTP.TTLMinutes) * time.Minute
}

// RequestChallenge 为未注册邮箱生成验证码并投递邮件
// 投递失败时验证码仍然保留，用户可以稍后重试发送
func (s *AuthService) RequestChallenge(ctx context.Context, rawEmail string) (*otp.Challenge, error) {
	addr := normalizeEmail(rawEmail)
	if addr == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}

	exists, err := s.userRepo.ExistsByEmail(addr)
	if err != nil {
		return nil, err
	}
	if exists {
		metrics.IncOTPChallenge("registered")
		return nil, ErrAlreadyRegistered
	}

	code, err := otp.GenerateCode(s.cfg.OTP.Length)
	if err != nil {
		return nil, err
	}

	ch, err := s.otpStore.Put(ctx, addr, code)
	if err != nil {
		return nil, err
	}

	subject, body := email.OTPChallenge(code, s.otpTTL())
	if err := s.notifier.Send(ctx, addr, subject, body); err != nil {
		s.log.Error("send otp email failed", zap.String("email", addr), zap.Error(err))
		metrics.IncOTPChallenge("delivery_failed")
		return nil, ErrNotificationFailed
	}

	metrics.IncOTPChallenge("issued")
	return ch, nil
}

// VerifyChallenge 校验验证码，成功只代表邮箱有效，不创建账号
func (s *AuthService) VerifyChallenge(ctx context.Context, rawEmail, code string) (*dto.VerifyOTPResponse, error) {
	addr := normalizeEmail(rawEmail)

	err := s.otpStore.Verify(ctx, addr, strings.TrimSpace(code))
	switch {
	case err == nil:
		metrics.IncOTPVerification("ok")
		return &dto.VerifyOTPResponse{Email: addr, EligibleToSignup: true}, nil
	case errors.Is(err, otp.ErrNotFound):
		metrics.IncOTPVerification("not_found")
		return nil, ErrChallengeNotFound
	case errors.Is(err, otp.ErrExpired):
		metrics.IncOTPVerification("expired")
		return nil, ErrChallengeExpired
	case errors.Is(err, otp.ErrMismatch):
		metrics.IncOTPVerification("mismatch")
		return nil, ErrChallengeMismatch
	default:
		return nil, err
	}
}

// Signup 完成注册
// 验证码校验与注册是两步，邮箱唯一性在写入时以唯一索引为准
func (s *AuthService) Signup(req *dto.SignupRequest) (*dto.LoginResponse, error) {
	profile, missing, ok := req.Profile()
	if !ok {
		return nil, ErrInvalidRole
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}

	role := req.Role
	// 管理员不能自行注册
	if role == model.RoleAdmin {
		role = model.RoleUser
	}

	addr := normalizeEmail(req.Email)
	exists, err := s.userRepo.ExistsByEmail(addr)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyRegistered
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        addr,
		PasswordHash: string(hashedPassword),
		Name:         strings.TrimSpace(req.Name),
		Role:         role,
		PlanStatus:   model.PlanStatusNone,
	}
	user.SetProfile(profile)

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}

	return s.issueToken(user)
}

// Login 用户登录
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(user)
}

// Me 当前用户及套餐信息，续费日已过的套餐在这里标记为过期
func (s *AuthService) Me(userID int64) (*dto.MeResponse, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if user.PlanStatus == model.PlanStatusActive && !user.HasActivePlan(s.now()) {
		if err := s.userRepo.ExpirePlan(user.ID); err != nil {
			return nil, err
		}
		user.PlanStatus = model.PlanStatusExpired
	}

	resp := &dto.MeResponse{
		UserInfo:             *buildUserInfo(user),
		PlanStatus:           user.PlanStatus,
		PlanDetails:          user.PlanDetails,
		PublishedCountPeriod: user.PublishedCountPeriod,
		Profile:              user.Profile(),
	}
	if user.PlanRenewsAt != nil {
		resp.PlanRenewsAt = user.PlanRenewsAt.Format(time.RFC3339)
	}
	if user.PeriodStart != nil {
		resp.PeriodStart = user.PeriodStart.Format(time.RFC3339)
	}
	return resp, nil
}

// GetUserByID 根据 ID 获取用户
func (s *AuthService) GetUserByID(id int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issueToken(user *model.User) (*dto.LoginResponse, error) {
	token, err := jwt.GenerateToken(user.ID, user.Role, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: token,
		User:  buildUserInfo(user),
	}, nil
}

func buildUserInfo(user *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}
}
