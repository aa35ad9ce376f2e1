package model

import (
	"time"
)

// ReferralCode 作者的单次折扣码
// ActiveOwnerID 在激活期间等于 OwnerID，失效后置空；唯一索引保证每个作者最多一个激活码
type ReferralCode struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	Code            string    `gorm:"size:16;uniqueIndex;not null" json:"code"`
	OwnerID         int64     `gorm:"not null;index" json:"owner_id"`
	ActiveOwnerID   *int64    `gorm:"uniqueIndex" json:"-"`
	DiscountPercent int       `gorm:"not null" json:"discount_percent"`
	MaxRedemptions  int       `gorm:"default:1;not null" json:"max_redemptions"`
	Redemptions     int       `gorm:"default:0;not null" json:"redemptions"`
	Active          bool      `gorm:"not null;index" json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	RedemptionLog []ReferralRedemption `gorm:"foreignKey:ReferralCodeID" json:"redemption_log,omitempty"`
}

func (ReferralCode) TableName() string {
	return "referral_codes"
}

// Exhausted 兑换次数已用完
func (r *ReferralCode) Exhausted() bool {
	return r.Redemptions >= r.MaxRedemptions
}

type ReferralRedemption struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	ReferralCodeID int64     `gorm:"not null;index" json:"referral_code_id"`
	UserID         int64     `gorm:"not null;index" json:"user_id"`
	PaymentID      *int64    `gorm:"index" json:"payment_id,omitempty"`
	RedeemedAt     time.Time `gorm:"not null" json:"redeemed_at"`
}

func (ReferralRedemption) TableName() string {
	return "referral_redemptions"
}
