package cron

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/leaderfirst_server/internal/pkg/metrics"
)

// PlanExpirer 批量过期到期套餐
type PlanExpirer interface {
	ExpireDuePlans(now time.Time) (int64, error)
}

// Service 周期性把到期套餐标记为 expired
// 读路径上的惰性过期仍然保留，这里只保证长期不登录的账号也会被收敛
type Service struct {
	expirer  PlanExpirer
	interval time.Duration
	log      *zap.Logger
	now      func() time.Time

	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}
}

func NewService(expirer PlanExpirer, interval time.Duration, log *zap.Logger) *Service {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Service{
		expirer:  expirer,
		interval: interval,
		log:      log,
		now:      time.Now,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.run()
	s.log.Info("plan expiry sweep started", zap.Duration("interval", s.interval))
}

// Stop 停止定时任务并等待当前轮结束
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	<-s.done
	s.log.Info("plan expiry sweep stopped")
}

func (s *Service) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.RunNow()
		}
	}
}

// RunNow 立即执行一轮过期扫描
func (s *Service) RunNow() int64 {
	n, err := s.expirer.ExpireDuePlans(s.now())
	if err != nil {
		s.log.Error("expire due plans failed", zap.Error(err))
		return 0
	}
	if n > 0 {
		metrics.AddPlanExpirations(n)
		s.log.Info("plans expired", zap.Int64("count", n))
	}
	return n
}
