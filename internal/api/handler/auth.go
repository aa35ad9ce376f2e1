package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs3c/leaderfirst_server/internal/model/dto"
	"github.com/qs3c/leaderfirst_server/internal/pkg/response"
	"github.com/qs3c/leaderfirst_server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	log         *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log,
	}
}

// RequestOTP 发送注册验证码
// POST /api/v1/auth/request-otp
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req dto.RequestOTPRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	ch, err := h.authService.RequestChallenge(c.Request.Context(), req.Email)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	response.SuccessWithMessage(c, "验证码已发送，请查收邮件", &dto.RequestOTPResponse{
		Email:     ch.Email,
		ExpiresAt: ch.ExpiresAt.Format(time.RFC3339),
	})
}

// VerifyOTP 校验注册验证码
// POST /api/v1/auth/verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req dto.VerifyOTPRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	resp, err := h.authService.VerifyChallenge(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	response.SuccessWithMessage(c, "邮箱验证成功", resp)
}

// Signup 完成注册并登录
// POST /api/v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	resp, err := h.authService.Signup(&req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	response.SuccessWithMessage(c, "注册成功", resp)
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	response.SuccessWithMessage(c, "登录成功", resp)
}

// Me 当前用户与套餐信息
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	resp, err := h.authService.Me(userID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	response.Success(c, resp)
}
