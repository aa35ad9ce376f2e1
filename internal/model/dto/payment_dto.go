package dto

import (
	"time"

	"github.com/qs3c/leaderfirst_server/internal/model"
)

// SubmitPaymentRequest 提交线下付款申请
// 必填校验放在 service 层，保证非 HTTP 调用方也走同一套规则
type SubmitPaymentRequest struct {
	Name         string  `json:"name"`
	PlanKey      string  `json:"plan_key"`
	Amount       float64 `json:"amount"`
	TxID         string  `json:"tx_id"`
	BankName     string  `json:"bank_name"`
	PaymentDate  string  `json:"payment_date"` // 可选，YYYY-MM-DD 或 RFC3339，空串视为未填
	Note         string  `json:"note"`
	ReferralCode string  `json:"referral_code"`
}

const (
	ReviewActionApprove = "approve"
	ReviewActionReject  = "reject"
)

// ReviewPaymentRequest 管理员审核
type ReviewPaymentRequest struct {
	Action       string `json:"action" binding:"required"`
	AdminComment string `json:"admin_comment" binding:"omitempty,max=1000"`
}

// PaymentOwner 审核列表里展示的申请人信息
type PaymentOwner struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// PaymentInfo 付款申请（返回给前端）
type PaymentInfo struct {
	ID                      int64         `json:"id"`
	Name                    string        `json:"name"`
	Email                   string        `json:"email"`
	PlanKey                 string        `json:"plan_key"`
	Amount                  float64       `json:"amount"`
	TxID                    string        `json:"tx_id"`
	BankName                string        `json:"bank_name,omitempty"`
	PaymentDate             string        `json:"payment_date,omitempty"`
	Note                    string        `json:"note,omitempty"`
	Status                  string        `json:"status"`
	AdminComment            string        `json:"admin_comment,omitempty"`
	ReviewedBy              *int64        `json:"reviewed_by,omitempty"`
	ReferralCode            *string       `json:"referral_code,omitempty"`
	ReferralDiscountPercent *int          `json:"referral_discount_percent,omitempty"`
	CreatedAt               string        `json:"created_at"`
	Owner                   *PaymentOwner `json:"owner,omitempty"`
}

// NewPaymentInfo 转换付款申请，owner 已预加载时一并展开
func NewPaymentInfo(p *model.PaymentRequest) *PaymentInfo {
	info := &PaymentInfo{
		ID:                      p.ID,
		Name:                    p.Name,
		Email:                   p.Email,
		PlanKey:                 p.PlanKey,
		Amount:                  p.Amount,
		TxID:                    p.TxID,
		BankName:                p.BankName,
		Note:                    p.Note,
		Status:                  p.Status,
		AdminComment:            p.AdminComment,
		ReviewedBy:              p.ReviewedBy,
		ReferralCode:            p.ReferralCode,
		ReferralDiscountPercent: p.ReferralDiscountPercent,
		CreatedAt:               p.CreatedAt.Format(time.RFC3339),
	}
	if p.PaymentDate != nil {
		info.PaymentDate = p.PaymentDate.Format(time.RFC3339)
	}
	if p.User != nil {
		info.Owner = &PaymentOwner{
			ID:    p.User.ID,
			Email: p.User.Email,
			Name:  p.User.Name,
			Role:  p.User.Role,
		}
	}
	return info
}
