package database

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/qs3c/leaderfirst_server/config"
	"github.com/qs3c/leaderfirst_server/internal/model"
)

// Models 需要迁移的全部模型
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.ReferralCode{},
		&model.ReferralRedemption{},
		&model.PaymentRequest{},
		&model.EnterpriseInquiry{},
	}
}

// GormConfig 统一的 gorm 配置，唯一约束冲突翻译为 gorm.ErrDuplicatedKey
func GormConfig(debug bool) *gorm.Config {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	return &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	}
}

// NewMySQL 连接 MySQL，启动阶段按指数退避重试，连接成功后自动迁移
func NewMySQL(cfg *config.DatabaseConfig, debug bool, log *zap.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
	)

	var db *gorm.DB
	attempt := 0
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = time.Minute

	err := backoff.Retry(func() error {
		attempt++
		conn, err := gorm.Open(mysql.Open(dsn), GormConfig(debug))
		if err != nil {
			log.Warn("database connect failed", zap.Int("attempt", attempt), zap.Error(err))
			return err
		}
		sqlDB, err := conn.DB()
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := sqlDB.Ping(); err != nil {
			log.Warn("database ping failed", zap.Int("attempt", attempt), zap.Error(err))
			return err
		}
		db = conn
		return nil
	}, bo)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after %d attempts: %w", attempt, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return db, nil
}
