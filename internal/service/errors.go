package service

import (
	"errors"
)

// ErrorKind 业务错误分类，handler 按分类选择响应码
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindAuth
	KindForbidden
	KindConflict
	KindNotFound
	KindState
	KindUpstream
)

// BizError 可直接展示给调用方的业务错误
type BizError struct {
	Kind ErrorKind
	Msg  string
}

func (e *BizError) Error() string {
	return e.Msg
}

func newBizError(kind ErrorKind, msg string) *BizError {
	return &BizError{Kind: kind, Msg: msg}
}

// KindOf 返回错误链上第一个业务错误的分类；非业务错误返回 false
func KindOf(err error) (ErrorKind, bool) {
	var be *BizError
	if errors.As(err, &be) {
		return be.Kind, true
	}
	return 0, false
}

var (
	ErrValidation = newBizError(KindValidation, "invalid input")

	// 认证
	ErrAlreadyRegistered  = newBizError(KindConflict, "email is already registered")
	ErrInvalidCredentials = newBizError(KindAuth, "invalid email or password")
	ErrInvalidRole        = newBizError(KindValidation, "invalid role")
	ErrUserNotFound       = newBizError(KindNotFound, "user not found")
	ErrForbidden          = newBizError(KindForbidden, "permission denied")
	ErrNotificationFailed = newBizError(KindUpstream, "failed to send verification email, please try again")

	// 验证码
	ErrChallengeNotFound = newBizError(KindNotFound, "no pending verification code for this email")
	ErrChallengeExpired  = newBizError(KindState, "verification code has expired, please request a new one")
	ErrChallengeMismatch = newBizError(KindValidation, "incorrect verification code")

	// 折扣码
	ErrPlanInactive    = newBizError(KindState, "an active plan is required")
	ErrInvalidReferral = newBizError(KindConflict, "invalid or expired code")

	// 付款
	ErrPaymentNotFound     = newBizError(KindNotFound, "payment request not found")
	ErrAlreadyReviewed     = newBizError(KindConflict, "payment request has already been reviewed")
	ErrUnknownPlan         = newBizError(KindState, "plan is not configured")
	ErrInvalidReviewAction = newBizError(KindValidation, "action must be approve or reject")
)
