package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/qs3c/leaderfirst_server/config"
	"github.com/qs3c/leaderfirst_server/internal/database"
	"github.com/qs3c/leaderfirst_server/internal/pkg/email"
	"github.com/qs3c/leaderfirst_server/internal/pkg/logger"
	"github.com/qs3c/leaderfirst_server/internal/pkg/queue"
	"github.com/qs3c/leaderfirst_server/internal/worker"
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

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer rdb.Close()
	log.Info("redis connected")

	mailQueue := queue.NewEmailQueue(rdb, cfg.Queue.EmailQueue)
	processor := worker.NewProcessor(mailQueue, email.NewService(&cfg.Email), cfg.Queue.MaxAttempts, log)

	// 创建 context 用于优雅关闭
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("received shutdown signal")
		cancel()
	}()

	workers := cfg.Queue.MaxWorkers
	if workers <= 0 {
		workers = 1
	}
	log.Info("email workers starting", zap.Int("workers", workers), zap.String("queue", cfg.Queue.EmailQueue))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			processor.Run(ctx, workerID)
		}(i)
	}

	wg.Wait()
	log.Info("worker shutdown complete")
}
