package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/qs3c/leaderfirst_server/config"
)

// SendFunc 与 smtp.SendMail 签名一致，测试中替换
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Service struct {
	cfg      *config.EmailConfig
	sendMail SendFunc
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{
		cfg:      cfg,
		sendMail: smtp.SendMail,
	}
}

// WithSendFunc 替换底层发送函数
func (s *Service) WithSendFunc(fn SendFunc) *Service {
	s.sendMail = fn
	return s
}

// Deliver 发送 HTML 邮件，失败按指数退避重试 max_retries 次
func (s *Service) Deliver(ctx context.Context, to, subject, html string) error {
	retries := s.cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 10 * time.Second
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(retries)), ctx)

	return backoff.Retry(func() error {
		return s.sendHTML(to, subject, html)
	}, policy)
}

// sendHTML 发送 HTML 邮件
func (s *Service) sendHTML(to, subject, body string) error {
	headers := [][2]string{
		{"From", s.cfg.From},
		{"To", to},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var msg strings.Builder
	for _, h := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", h[0], h[1]))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	return s.sendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg.String()))
}
