package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/qs3c/leaderfirst_server/internal/api/middleware"
	"github.com/qs3c/leaderfirst_server/internal/pkg/response"
	"github.com/qs3c/leaderfirst_server/internal/service"
)

// writeError 按业务错误分类写响应
// 非业务错误只记录日志，对外返回通用消息
func writeError(c *gin.Context, log *zap.Logger, err error) {
	kind, ok := service.KindOf(err)
	if !ok {
		log.Error("request failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		_ = c.Error(err)
		response.ServerError(c, "")
		return
	}

	msg := err.Error()
	switch kind {
	case service.KindValidation:
		response.ParamError(c, msg)
	case service.KindAuth:
		response.AuthError(c, msg)
	case service.KindForbidden:
		response.PermissionError(c, msg)
	case service.KindConflict:
		response.DuplicateError(c, msg)
	case service.KindNotFound:
		response.NotFoundError(c, msg)
	case service.KindState:
		response.StateError(c, msg)
	case service.KindUpstream:
		response.UpstreamError(c, msg)
	default:
		response.ServerError(c, "")
	}
}

const (
	msgInvalidBody   = "请求体格式错误"
	msgInvalidFields = "请求参数校验失败"
)

// bindJSON 绑定请求体，失败时只记录原始错误，对外返回固定文案
func bindJSON(c *gin.Context, log *zap.Logger, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	log.Debug("bind request body failed",
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.String("route", c.FullPath()),
		zap.Error(err),
	)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		response.ParamError(c, msgInvalidFields)
		return false
	}
	response.ParamError(c, msgInvalidBody)
	return false
}

func currentUserID(c *gin.Context) (int64, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
	}
	return userID, ok
}
