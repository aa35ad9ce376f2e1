package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig          `mapstructure:"server"`
	Database  DatabaseConfig        `mapstructure:"database"`
	Redis     RedisConfig           `mapstructure:"redis"`
	JWT       JWTConfig             `mapstructure:"jwt"`
	Email     EmailConfig           `mapstructure:"email"`
	Queue     QueueConfig           `mapstructure:"queue"`
	CORS      CORSConfig            `mapstructure:"cors"`
	Log       LogConfig             `mapstructure:"log"`
	OTP       OTPConfig             `mapstructure:"otp"`
	Referral  ReferralConfig        `mapstructure:"referral"`
	Billing   BillingConfig         `mapstructure:"billing"`
	RateLimit RateLimitConfig       `mapstructure:"rate_limit"`
	Plans     map[string]PlanConfig `mapstructure:"plans"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type EmailConfig struct {
	SMTPHost        string `mapstructure:"smtp_host"`
	SMTPPort        int    `mapstructure:"smtp_port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	From            string `mapstructure:"from"`
	EnterpriseInbox string `mapstructure:"enterprise_inbox"`
	MaxRetries      int    `mapstructure:"max_retries"`
}

type QueueConfig struct {
	EmailQueue  string `mapstructure:"email_queue"`
	MaxWorkers  int    `mapstructure:"max_workers"`
	MaxAttempts int    `mapstructure:"max_attempts"` // 单封邮件在队列层面的最大投递轮数
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

type OTPConfig struct {
	TTLMinutes int `mapstructure:"ttl_minutes"`
	Length     int `mapstructure:"length"`
}

type ReferralConfig struct {
	CodeLength       int `mapstructure:"code_length"`
	ActiveDiscount   int `mapstructure:"active_discount"`
	InactiveDiscount int `mapstructure:"inactive_discount"`
	MaxRedemptions   int `mapstructure:"max_redemptions"`
}

type BillingConfig struct {
	RenewMonths        int `mapstructure:"renew_months"`
	ExpirySweepMinutes int `mapstructure:"expiry_sweep_minutes"`
}

type RateLimitConfig struct {
	OTPPerMinute int `mapstructure:"otp_per_minute"`
	OTPBurst     int `mapstructure:"otp_burst"`
}

// PlanConfig 套餐定义，审批通过后整体写入用户的 plan_details
type PlanConfig struct {
	Name               string  `mapstructure:"name" json:"name"`
	ArticlesPerQuarter int     `mapstructure:"articles_per_quarter" json:"articles_per_quarter"`
	PriceQuarterly     float64 `mapstructure:"price_quarterly" json:"price_quarterly"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("jwt.expire_hours", 168)
	v.SetDefault("email.max_retries", 3)
	v.SetDefault("queue.email_queue", "email_outbox")
	v.SetDefault("queue.max_workers", 2)
	v.SetDefault("queue.max_attempts", 3)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("otp.ttl_minutes", 5)
	v.SetDefault("otp.length", 6)
	v.SetDefault("referral.code_length", 7)
	v.SetDefault("referral.active_discount", 10)
	v.SetDefault("referral.inactive_discount", 3)
	v.SetDefault("referral.max_redemptions", 1)
	v.SetDefault("billing.renew_months", 3)
	v.SetDefault("billing.expiry_sweep_minutes", 60)
	v.SetDefault("rate_limit.otp_per_minute", 5)
	v.SetDefault("rate_limit.otp_burst", 3)
}

func Load(configPath string) (*Config, error) {
	// .env 仅用于本地开发，不存在时忽略
	_ = godotenv.Load()

	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")
	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// 环境变量覆盖
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
