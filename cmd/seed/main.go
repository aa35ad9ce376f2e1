package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/leaderfirst_server/config"
	"github.com/qs3c/leaderfirst_server/internal/database"
	"github.com/qs3c/leaderfirst_server/internal/model"
	"github.com/qs3c/leaderfirst_server/internal/pkg/logger"
	"github.com/qs3c/leaderfirst_server/internal/repository"
)

var (
	dryRun   = flag.Bool("dry-run", true, "Dry run mode, don't write to the database")
	email    = flag.String("email", "", "Admin email")
	password = flag.String("password", "", "Admin password (min 8 chars); falls back to SEED_ADMIN_PASSWORD")
	name     = flag.String("name", "Admin", "Admin display name")
	promote  = flag.Bool("promote", false, "Promote an existing account with this email to admin")
)

// 管理员账号不能通过注册接口创建，只能由这里写入
func main() {
	flag.Parse()

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

	addr := strings.ToLower(strings.TrimSpace(*email))
	if addr == "" {
		log.Fatal("-email is required")
	}
	pass := *password
	if pass == "" {
		pass = os.Getenv("SEED_ADMIN_PASSWORD")
	}

	db, err := database.NewMySQL(&cfg.Database, false, log)
	if err != nil {
		log.Fatal("failed to connect database", zap.Error(err))
	}

	log.Info("seeding admin", zap.String("email", addr), zap.Bool("dry_run", *dryRun))
	if err := seedAdmin(repository.NewUserRepository(db), addr, pass, *name, *promote, *dryRun, log); err != nil {
		log.Fatal("seed admin failed", zap.Error(err))
	}
}

func seedAdmin(users *repository.UserRepository, addr, pass, displayName string, promote, dryRun bool, log *zap.Logger) error {
	existing, err := users.GetByEmail(addr)
	switch {
	case err == nil:
		if existing.Role == model.RoleAdmin {
			log.Info("admin already exists, nothing to do", zap.Int64("user_id", existing.ID))
			return nil
		}
		if !promote {
			return fmt.Errorf("account %s exists with role %q; pass -promote to make it admin", addr, existing.Role)
		}
		if dryRun {
			log.Info("would promote account to admin", zap.Int64("user_id", existing.ID), zap.String("role", existing.Role))
			return nil
		}
		if err := users.UpdateFields(existing.ID, map[string]interface{}{"role": model.RoleAdmin}); err != nil {
			return err
		}
		log.Info("account promoted to admin", zap.Int64("user_id", existing.ID))
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	if len(pass) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if dryRun {
		log.Info("would create admin account", zap.String("email", addr))
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := &model.User{
		Email:        addr,
		PasswordHash: string(hash),
		Name:         displayName,
		Role:         model.RoleAdmin,
		PlanStatus:   model.PlanStatusNone,
	}
	if err := users.Create(user); err != nil {
		return err
	}
	log.Info("admin account created", zap.Int64("user_id", user.ID))
	return nil
}
