package model

import (
	"time"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusApproved = "approved"
	PaymentStatusRejected = "rejected"
)

const (
	PlanContributor = "contributor"
	PlanCore        = "core"
	PlanEnterprise  = "enterprise"
)

// IsKnownPlanKey 是否为可提交的套餐 key
func IsKnownPlanKey(key string) bool {
	switch key {
	case PlanContributor, PlanCore, PlanEnterprise:
		return true
	}
	return false
}

// PaymentRequest 线下付款申请，由管理员人工审核
type PaymentRequest struct {
	ID                      int64      `gorm:"primaryKey" json:"id"`
	UserID                  int64      `gorm:"not null;index" json:"user_id"`
	Name                    string     `gorm:"size:100;not null" json:"name"`
	Email                   string     `gorm:"size:100;not null" json:"email"`
	PlanKey                 string     `gorm:"size:20;not null" json:"plan_key"`
	Amount                  float64    `gorm:"type:decimal(10,2);not null" json:"amount"`
	TxID                    string     `gorm:"column:tx_id;size:100;not null" json:"tx_id"`
	BankName                string     `gorm:"size:100" json:"bank_name,omitempty"`
	PaymentDate             *time.Time `json:"payment_date,omitempty"`
	Note                    string     `gorm:"type:text" json:"note,omitempty"`
	Status                  string     `gorm:"size:20;default:pending;index" json:"status"`
	AdminComment            string     `gorm:"type:text" json:"admin_comment,omitempty"`
	ReviewedBy              *int64     `json:"reviewed_by,omitempty"`
	ReviewedAt              *time.Time `json:"reviewed_at,omitempty"`
	ReferralCode            *string    `gorm:"size:16;index" json:"referral_code,omitempty"`
	ReferralDiscountPercent *int       `json:"referral_discount_percent,omitempty"`
	CreatedAt               time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (PaymentRequest) TableName() string {
	return "payment_requests"
}

func (p *PaymentRequest) IsPending() bool {
	return p.Status == PaymentStatusPending
}
