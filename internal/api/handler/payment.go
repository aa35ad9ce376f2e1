package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs3c/leaderfirst_server/internal/model/dto"
	"github.com/qs3c/leaderfirst_server/internal/pkg/response"
	"github.com/qs3c/leaderfirst_server/internal/service"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
	log            *zap.Logger
}

func NewPaymentHandler(paymentService *service.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		log:            log,
	}
}

// Submit 提交线下付款申请
// POST /api/v1/payments
func (h *PaymentHandler) Submit(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.SubmitPaymentRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	info, err := h.paymentService.Submit(c.Request.Context(), userID, &req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	response.SuccessWithMessage(c, "付款申请已提交，等待审核", info)
}

// Review 审核付款申请
// PATCH /api/v1/payments/:id/review
func (h *PaymentHandler) Review(c *gin.Context) {
	reviewerID, ok := currentUserID(c)
	if !ok {
		return
	}

	paymentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || paymentID <= 0 {
		response.ParamError(c, "无效的付款申请 ID")
		return
	}

	var req dto.ReviewPaymentRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	info, err := h.paymentService.Review(c.Request.Context(), paymentID, reviewerID, req.Action, req.AdminComment)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	response.SuccessWithMessage(c, "审核完成", info)
}

// ListPending 待审核列表
// GET /api/v1/payments/pending
func (h *PaymentHandler) ListPending(c *gin.Context) {
	reviewerID, ok := currentUserID(c)
	if !ok {
		return
	}

	list, err := h.paymentService.ListPending(reviewerID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	response.Success(c, list)
}

// ListMine 当前用户的付款申请
// GET /api/v1/payments/mine
func (h *PaymentHandler) ListMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	list, err := h.paymentService.ListMine(userID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	response.Success(c, list)
}
