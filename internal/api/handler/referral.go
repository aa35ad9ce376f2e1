package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs3c/leaderfirst_server/internal/model/dto"
	"github.com/qs3c/leaderfirst_server/internal/pkg/response"
	"github.com/qs3c/leaderfirst_server/internal/service"
)

type ReferralHandler struct {
	referralService *service.ReferralService
	log             *zap.Logger
}

func NewReferralHandler(referralService *service.ReferralService, log *zap.Logger) *ReferralHandler {
	return &ReferralHandler{
		referralService: referralService,
		log:             log,
	}
}

// Issue 获取或生成当前作者的折扣码
// POST /api/v1/referrals
func (h *ReferralHandler) Issue(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	resp, err := h.referralService.IssueOrFetch(userID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	response.Success(c, resp)
}

// Mine 作者名下的码及兑换记录
// GET /api/v1/referrals/mine
func (h *ReferralHandler) Mine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	list, err := h.referralService.ListMine(userID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	response.Success(c, list)
}

// Validate 校验折扣码是否可用，不占用名额
// POST /api/v1/referrals/validate
func (h *ReferralHandler) Validate(c *gin.Context) {
	var req dto.ValidateReferralRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	resp, err := h.referralService.Validate(req.Code)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	response.Success(c, resp)
}
