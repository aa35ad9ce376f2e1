package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/leaderfirst_server/config"
	"github.com/qs3c/leaderfirst_server/internal/api/middleware"
	"github.com/qs3c/leaderfirst_server/internal/model"
	"github.com/qs3c/leaderfirst_server/internal/pkg/jwt"
	"github.com/qs3c/leaderfirst_server/internal/pkg/otp"
	"github.com/qs3c/leaderfirst_server/internal/pkg/pubsub"
	"github.com/qs3c/leaderfirst_server/internal/pkg/queue"
	"github.com/qs3c/leaderfirst_server/internal/pkg/response"
	"github.com/qs3c/leaderfirst_server/internal/repository"
	"github.com/qs3c/leaderfirst_server/internal/service"
	"github.com/qs3c/leaderfirst_server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testJWTSecret = "test-secret-key"

func testConfig() *config.Config {
	return &config.Config{
		JWT:   config.JWTConfig{Secret: testJWTSecret, ExpireHours: 24},
		OTP:   config.OTPConfig{TTLMinutes: 5, Length: 6},
		Email: config.EmailConfig{EnterpriseInbox: "sales@example.com"},
		Referral: config.ReferralConfig{
			CodeLength:       7,
			ActiveDiscount:   10,
			InactiveDiscount: 3,
			MaxRedemptions:   1,
		},
		Billing: config.BillingConfig{RenewMonths: 3},
		Plans: map[string]config.PlanConfig{
			"contributor": {Name: "Contributor Author", ArticlesPerQuarter: 3, PriceQuarterly: 52},
			"core":        {Name: "Core Author", ArticlesPerQuarter: 9, PriceQuarterly: 106},
		},
	}
}

type handlerFixture struct {
	db        *gorm.DB
	mr        *miniredis.Miniredis
	otpStore  *otp.Store
	mailQueue *queue.EmailQueue

	auth       *AuthHandler
	referral   *ReferralHandler
	payment    *PaymentHandler
	enterprise *EnterpriseHandler
}

func setupHandlers(t *testing.T) (*handlerFixture, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	rdb, mr := testutil.SetupTestRedis(t)
	cfg := testConfig()
	log := zap.NewNop()

	userRepo := repository.NewUserRepository(db)
	otpStore := otp.NewStore(rdb, time.Duration(cfg.OTP.TTLMinutes)*time.Minute)
	mailQueue := queue.NewEmailQueue(rdb, "test_email_queue")
	publisher := pubsub.NewPublisher(rdb)

	authService := service.NewAuthService(userRepo, otpStore, mailQueue, cfg, log)
	referralService := service.NewReferralService(repository.NewReferralRepository(db), userRepo, cfg.Referral, log)
	paymentService := service.NewPaymentService(db, repository.NewPaymentRepository(db), userRepo, referralService, publisher, mailQueue, cfg, log)
	enterpriseService := service.NewEnterpriseService(repository.NewEnterpriseRepository(db), mailQueue, cfg.Email.EnterpriseInbox, log)

	f := &handlerFixture{
		db:         db,
		mr:         mr,
		otpStore:   otpStore,
		mailQueue:  mailQueue,
		auth:       NewAuthHandler(authService, log),
		referral:   NewReferralHandler(referralService, log),
		payment:    NewPaymentHandler(paymentService, log),
		enterprise: NewEnterpriseHandler(enterpriseService, log),
	}

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}
	return f, cleanup
}

// router 与正式路由相同的分组与认证方式
func (f *handlerFixture) router() *gin.Engine {
	r := gin.New()

	r.POST("/auth/request-otp", f.auth.RequestOTP)
	r.POST("/auth/verify-otp", f.auth.VerifyOTP)
	r.POST("/auth/signup", f.auth.Signup)
	r.POST("/auth/login", f.auth.Login)
	r.POST("/referrals/validate", f.referral.Validate)
	r.POST("/enterprise/inquiries", f.enterprise.Create)

	authed := r.Group("")
	authed.Use(middleware.Auth(testJWTSecret))
	authed.GET("/auth/me", f.auth.Me)
	authed.POST("/referrals", f.referral.Issue)
	authed.GET("/referrals/mine", f.referral.Mine)
	authed.POST("/payments", f.payment.Submit)
	authed.GET("/payments/mine", f.payment.ListMine)
	authed.GET("/payments/pending", f.payment.ListPending)
	authed.PATCH("/payments/:id/review", f.payment.Review)

	return r
}

func tokenFor(t *testing.T, user *model.User) string {
	t.Helper()
	token, err := jwt.GenerateToken(user.ID, user.Role, testJWTSecret, 24)
	require.NoError(t, err)
	return token
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	return performAuthRequest(r, method, path, body, "")
}

func performAuthRequest(r http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

// decodeData 把响应 data 转成具体结构
func decodeData(t *testing.T, resp response.Response, out interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

// pendingCode 读取 Redis 中尚未消费的验证码，代替真实邮箱
func (f *handlerFixture) pendingCode(t *testing.T, email string) string {
	t.Helper()
	ch, err := f.otpStore.Get(context.Background(), email)
	require.NoError(t, err)
	return ch.Code
}
