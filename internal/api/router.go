package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/qs3c/leaderfirst_server/config"
	"github.com/qs3c/leaderfirst_server/internal/api/handler"
	"github.com/qs3c/leaderfirst_server/internal/api/middleware"
)

type Router struct {
	authHandler       *handler.AuthHandler
	referralHandler   *handler.ReferralHandler
	paymentHandler    *handler.PaymentHandler
	enterpriseHandler *handler.EnterpriseHandler
	websocketHandler  *handler.WebSocketHandler
	healthHandler     *handler.HealthHandler
	cfg               *config.Config
	log               *zap.Logger
}

func NewRouter(
	authHandler *handler.AuthHandler,
	referralHandler *handler.ReferralHandler,
	paymentHandler *handler.PaymentHandler,
	enterpriseHandler *handler.EnterpriseHandler,
	websocketHandler *handler.WebSocketHandler,
	healthHandler *handler.HealthHandler,
	cfg *config.Config,
	log *zap.Logger,
) *Router {
	return &Router{
		authHandler:       authHandler,
		referralHandler:   referralHandler,
		paymentHandler:    paymentHandler,
		enterpriseHandler: enterpriseHandler,
		websocketHandler:  websocketHandler,
		healthHandler:     healthHandler,
		cfg:               cfg,
		log:               log,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(r.log))
	engine.Use(middleware.CORS(r.cfg.CORS))

	engine.GET("/healthz", r.healthHandler.Check)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	otpLimiter := middleware.NewIPRateLimiter(r.cfg.RateLimit.OTPPerMinute, r.cfg.RateLimit.OTPBurst)
	requireAuth := middleware.Auth(r.cfg.JWT.Secret)

	api := engine.Group("/api/v1")
	{
		// WebSocket，token 通过 query 传递
		api.GET("/ws", r.websocketHandler.Handle)

		// 注册与登录
		auth := api.Group("/auth")
		{
			auth.POST("/request-otp", middleware.RateLimit(otpLimiter), r.authHandler.RequestOTP)
			auth.POST("/verify-otp", r.authHandler.VerifyOTP)
			auth.POST("/signup", r.authHandler.Signup)
			auth.POST("/login", r.authHandler.Login)
			auth.GET("/me", requireAuth, r.authHandler.Me)
		}

		// 折扣码
		referrals := api.Group("/referrals")
		{
			referrals.POST("", requireAuth, r.referralHandler.Issue)
			referrals.GET("/mine", requireAuth, r.referralHandler.Mine)
			referrals.POST("/validate", r.referralHandler.Validate)
		}

		// 付款申请
		payments := api.Group("/payments")
		payments.Use(requireAuth)
		{
			payments.POST("", r.paymentHandler.Submit)
			payments.GET("/mine", r.paymentHandler.ListMine)
			payments.GET("/pending", r.paymentHandler.ListPending)
			payments.PATCH("/:id/review", r.paymentHandler.Review)
		}

		// 企业版咨询
		api.POST("/enterprise/inquiries", r.enterpriseHandler.Create)
	}

	return engine
}
