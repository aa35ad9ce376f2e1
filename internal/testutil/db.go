package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/qs3c/leaderfirst_server/internal/database"
)

// SetupTestDB 创建测试数据库（SQLite 内存模式）
// 内存库每个连接各自独立，限制为单连接保证并发测试共享同一份数据
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := database.GormConfig(false)
	cfg.Logger = logger.Default.LogMode(logger.Silent)

	db, err := gorm.Open(sqlite.Open(":memory:"), cfg)
	if err != nil {
		t.Fatalf("Failed to connect test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(database.Models()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// 事务加锁模式，对应 BEGIN DEFERRED / BEGIN IMMEDIATE
const (
	TxLockDeferred  = "deferred"
	TxLockImmediate = "immediate"
)

// SetupConcurrentTestDB 创建文件型 SQLite（WAL），多个连接可以真正交错执行
// deferred 下事务先读后写遇到并发写入会直接报 busy，只适合首条语句即写入的事务；
// immediate 下事务在 BEGIN 时拿写锁，与 MySQL 行锁下的串行化效果一致
func SetupConcurrentTestDB(t *testing.T, txLock string) *gorm.DB {
	t.Helper()

	cfg := database.GormConfig(false)
	cfg.Logger = logger.Default.LogMode(logger.Silent)

	path := filepath.Join(t.TempDir(), "test.db")
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=10000&_txlock=%s", path, txLock)

	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(16)
	sqlDB.SetMaxIdleConns(16)

	if err := db.AutoMigrate(database.Models()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// CleanupTestDB 清理测试数据库
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Logf("Warning: Failed to get underlying DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		t.Logf("Warning: Failed to close test database: %v", err)
	}
}

// TruncateTables 清空所有表数据
func TruncateTables(t *testing.T, db *gorm.DB) {
	t.Helper()

	tables := []string{
		"referral_redemptions",
		"referral_codes",
		"payment_requests",
		"enterprise_inquiries",
		"users",
	}

	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			t.Logf("Warning: Failed to truncate table %s: %v", table, err)
		}
	}
}

// SetupTestRedis 启动 miniredis，测试结束时自动关闭
func SetupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return client, mr
}
