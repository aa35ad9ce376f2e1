package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/leaderfirst_server/config"
)

func testConfig(retries int) *config.EmailConfig {
	return &config.EmailConfig{
		SMTPHost:   "smtp.example.com",
		SMTPPort:   587,
		From:       "noreply@example.com",
		MaxRetries: retries,
	}
}

func TestService_Deliver(t *testing.T) {
	var gotAddr string
	var gotTo []string
	var gotMsg string

	svc := NewService(testConfig(0)).WithSendFunc(func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotTo = to
		gotMsg = string(msg)
		return nil
	})

	err := svc.Deliver(context.Background(), "a@example.com", "Hello", "<p>hi</p>")
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"a@example.com"}, gotTo)
	assert.True(t, strings.HasPrefix(gotMsg, "From: noreply@example.com\r\n"))
	assert.Contains(t, gotMsg, "Subject: Hello\r\n")
	assert.Contains(t, gotMsg, "Content-Type: text/html; charset=UTF-8\r\n")
	assert.True(t, strings.HasSuffix(gotMsg, "\r\n\r\n<p>hi</p>"))
}

func TestService_Deliver_Retries(t *testing.T) {
	calls := 0
	svc := NewService(testConfig(2)).WithSendFunc(func(string, smtp.Auth, string, []string, []byte) error {
		calls++
		if calls < 2 {
			return errors.New("temporary failure")
		}
		return nil
	})

	err := svc.Deliver(context.Background(), "a@example.com", "s", "b")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestService_Deliver_GivesUp(t *testing.T) {
	calls := 0
	svc := NewService(testConfig(1)).WithSendFunc(func(string, smtp.Auth, string, []string, []byte) error {
		calls++
		return errors.New("smtp down")
	})

	err := svc.Deliver(context.Background(), "a@example.com", "s", "b")
	assert.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestOTPChallenge(t *testing.T) {
	subject, body := OTPChallenge("123456", 5*time.Minute)

	assert.NotEmpty(t, subject)
	assert.Contains(t, body, "123456")
	assert.Contains(t, body, "5 minutes")
}

func TestEnterpriseInquiry_EscapesInput(t *testing.T) {
	subject, body := EnterpriseInquiry("Acme", "https://acme.test", "10-50", "", "<script>x</script>")

	assert.Equal(t, "Enterprise inquiry: Acme", subject)
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestPaymentReviewed(t *testing.T) {
	renews := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	subject, body := PaymentReviewed("Ann", "Core Author", true, "", &renews)
	assert.Contains(t, subject, "approved")
	assert.Contains(t, body, "2026-03-01")

	subject, body = PaymentReviewed("Ann", "Core Author", false, "txn not found", nil)
	assert.Contains(t, subject, "could not be confirmed")
	assert.Contains(t, body, "txn not found")
}
