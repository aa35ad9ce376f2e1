package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs3c/leaderfirst_server/internal/model/dto"
	"github.com/qs3c/leaderfirst_server/internal/pkg/response"
	"github.com/qs3c/leaderfirst_server/internal/service"
)

type EnterpriseHandler struct {
	enterpriseService *service.EnterpriseService
	log               *zap.Logger
}

func NewEnterpriseHandler(enterpriseService *service.EnterpriseService, log *zap.Logger) *EnterpriseHandler {
	return &EnterpriseHandler{
		enterpriseService: enterpriseService,
		log:               log,
	}
}

// Create 企业版咨询
// POST /api/v1/enterprise/inquiries
func (h *EnterpriseHandler) Create(c *gin.Context) {
	var req dto.EnterpriseInquiryRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	inquiry, err := h.enterpriseService.SubmitInquiry(c.Request.Context(), &req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	response.SuccessWithMessage(c, "咨询已提交，我们会尽快联系您", gin.H{"id": inquiry.ID})
}
