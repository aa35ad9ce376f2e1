package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/leaderfirst_server/internal/model"
)

// TestPassword fixtures 创建的用户的明文密码
const TestPassword = "password123"

var (
	seq          int64
	passwordHash string
)

func init() {
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	passwordHash = string(hash)
}

func nextSeq() int64 {
	return atomic.AddInt64(&seq, 1)
}

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	n := nextSeq()
	user := &model.User{
		Email:        fmt.Sprintf("test_%d@example.com", n),
		PasswordHash: passwordHash,
		Name:         fmt.Sprintf("Test User %d", n),
		Role:         model.RoleUser,
		PlanStatus:   model.PlanStatusNone,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = email
	}
}

// WithRole 设置角色
func WithRole(role string) func(*model.User) {
	return func(u *model.User) {
		u.Role = role
	}
}

// WithActivePlan 设置为有效期内的作者套餐
func WithActivePlan(planKey string) func(*model.User) {
	return func(u *model.User) {
		now := time.Now()
		renewsAt := now.AddDate(0, 3, 0)
		u.Role = model.RoleAuthor
		u.PlanStatus = model.PlanStatusActive
		u.PlanDetails = &model.PlanDetails{Key: planKey, Name: planKey}
		u.PlanRenewsAt = &renewsAt
		u.PeriodStart = &now
	}
}

// WithExpiredPlan 设置为已过续费日的作者套餐，状态仍为 active
func WithExpiredPlan(planKey string) func(*model.User) {
	return func(u *model.User) {
		start := time.Now().AddDate(0, -4, 0)
		renewsAt := start.AddDate(0, 3, 0)
		u.Role = model.RoleAuthor
		u.PlanStatus = model.PlanStatusActive
		u.PlanDetails = &model.PlanDetails{Key: planKey, Name: planKey}
		u.PlanRenewsAt = &renewsAt
		u.PeriodStart = &start
	}
}

// TestReferralCode 创建测试折扣码
func TestReferralCode(t *testing.T, db *gorm.DB, ownerID int64, opts ...func(*model.ReferralCode)) *model.ReferralCode {
	t.Helper()

	rc := &model.ReferralCode{
		Code:            fmt.Sprintf("T%06d", nextSeq()),
		OwnerID:         ownerID,
		DiscountPercent: 10,
		MaxRedemptions:  1,
		Active:          true,
	}

	for _, opt := range opts {
		opt(rc)
	}

	if rc.Active {
		owner := rc.OwnerID
		rc.ActiveOwnerID = &owner
	}

	if err := db.Create(rc).Error; err != nil {
		t.Fatalf("Failed to create test referral code: %v", err)
	}

	return rc
}

// WithCode 设置码值
func WithCode(code string) func(*model.ReferralCode) {
	return func(rc *model.ReferralCode) {
		rc.Code = code
	}
}

// WithMaxRedemptions 设置可兑换次数
func WithMaxRedemptions(n int) func(*model.ReferralCode) {
	return func(rc *model.ReferralCode) {
		rc.MaxRedemptions = n
	}
}

// WithInactive 设置为已失效
func WithInactive() func(*model.ReferralCode) {
	return func(rc *model.ReferralCode) {
		rc.Active = false
	}
}

// TestPayment 创建测试付款申请
func TestPayment(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.PaymentRequest)) *model.PaymentRequest {
	t.Helper()

	p := &model.PaymentRequest{
		UserID:  userID,
		Name:    "Test Payer",
		Email:   fmt.Sprintf("payer_%d@example.com", userID),
		PlanKey: model.PlanContributor,
		Amount:  52,
		TxID:    fmt.Sprintf("UTR%d", nextSeq()),
		Status:  model.PaymentStatusPending,
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := db.Create(p).Error; err != nil {
		t.Fatalf("Failed to create test payment: %v", err)
	}

	return p
}

// WithPlanKey 设置套餐
func WithPlanKey(planKey string) func(*model.PaymentRequest) {
	return func(p *model.PaymentRequest) {
		p.PlanKey = planKey
	}
}

// WithPaymentStatus 设置审核状态
func WithPaymentStatus(status string) func(*model.PaymentRequest) {
	return func(p *model.PaymentRequest) {
		p.Status = status
	}
}

// WithCreatedAt 设置提交时间
func WithCreatedAt(at time.Time) func(*model.PaymentRequest) {
	return func(p *model.PaymentRequest) {
		p.CreatedAt = at
	}
}
