package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/leaderfirst_server/config"
	"github.com/qs3c/leaderfirst_server/internal/api"
	"github.com/qs3c/leaderfirst_server/internal/api/handler"
	"github.com/qs3c/leaderfirst_server/internal/api/middleware"
	"github.com/qs3c/leaderfirst_server/internal/database"
	"github.com/qs3c/leaderfirst_server/internal/pkg/cron"
	"github.com/qs3c/leaderfirst_server/internal/pkg/logger"
	"github.com/qs3c/leaderfirst_server/internal/pkg/metrics"
	"github.com/qs3c/leaderfirst_server/internal/pkg/otp"
	"github.com/qs3c/leaderfirst_server/internal/pkg/pubsub"
	"github.com/qs3c/leaderfirst_server/internal/pkg/queue"
	"github.com/qs3c/leaderfirst_server/internal/pkg/ws"
	"github.com/qs3c/leaderfirst_server/internal/repository"
	"github.com/qs3c/leaderfirst_server/internal/service"
)

func main() {
	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database, cfg.Server.Mode == "debug", log)
	if err != nil {
		log.Fatal("failed to connect database", zap.Error(err))
	}
	log.Info("database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	log.Info("redis connected")

	metrics.MustRegister()

	// 邮件统一走队列，由 worker 进程投递
	mailQueue := queue.NewEmailQueue(rdb, cfg.Queue.EmailQueue)
	publisher := pubsub.NewPublisher(rdb)
	otpStore := otp.NewStore(rdb, time.Duration(cfg.OTP.TTLMinutes)*time.Minute)

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	referralRepo := repository.NewReferralRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	enterpriseRepo := repository.NewEnterpriseRepository(db)

	// 初始化 Service
	authService := service.NewAuthService(userRepo, otpStore, mailQueue, cfg, log)
	referralService := service.NewReferralService(referralRepo, userRepo, cfg.Referral, log)
	paymentService := service.NewPaymentService(db, paymentRepo, userRepo, referralService, publisher, mailQueue, cfg, log)
	enterpriseService := service.NewEnterpriseService(enterpriseRepo, mailQueue, cfg.Email.EnterpriseInbox, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 付款事件经 Redis 广播，多实例部署时每个实例都推送给自己的连接
	wsHub := ws.NewHub(log)
	go func() {
		if err := pubsub.NewSubscriber(rdb).Subscribe(ctx, wsHub.DispatchPaymentEvent); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("payment event relay stopped", zap.Error(err))
		}
	}()

	// 启动套餐过期扫描
	expirySweep := cron.NewService(userRepo, time.Duration(cfg.Billing.ExpirySweepMinutes)*time.Minute, log)
	expirySweep.Start()

	// 初始化 Router
	router := api.NewRouter(
		handler.NewAuthHandler(authService, log),
		handler.NewReferralHandler(referralService, log),
		handler.NewPaymentHandler(paymentService, log),
		handler.NewEnterpriseHandler(enterpriseService, log),
		handler.NewWebSocketHandler(wsHub, authService, cfg.JWT.Secret, middleware.AllowOrigin(cfg.CORS), log),
		handler.NewHealthHandler(db, rdb),
		cfg,
		log,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info("received shutdown signal")

	cancel()
	expirySweep.Stop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	if err := rdb.Close(); err != nil {
		log.Warn("close redis failed", zap.Error(err))
	}
	log.Info("server stopped")
}
