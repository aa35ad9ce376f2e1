package dto

// ReferralCodeResponse 作者的折扣码
type ReferralCodeResponse struct {
	Code            string `json:"code"`
	DiscountPercent int    `json:"discount_percent"`
	Created         bool   `json:"created"`
}

type ValidateReferralRequest struct {
	Code string `json:"code" binding:"required"`
}

type ValidateReferralResponse struct {
	Valid           bool   `json:"valid"`
	Code            string `json:"code"`
	DiscountPercent int    `json:"discount_percent"`
}

// ReferralRedemptionInfo 一次兑换记录
type ReferralRedemptionInfo struct {
	UserID     int64  `json:"user_id"`
	PaymentID  *int64 `json:"payment_id,omitempty"`
	RedeemedAt string `json:"redeemed_at"`
}

// ReferralCodeDetail 作者查看自己名下的码及兑换情况
type ReferralCodeDetail struct {
	Code            string                    `json:"code"`
	DiscountPercent int                       `json:"discount_percent"`
	MaxRedemptions  int                       `json:"max_redemptions"`
	Redemptions     int                       `json:"redemptions"`
	Active          bool                      `json:"active"`
	CreatedAt       string                    `json:"created_at"`
	RedemptionLog   []*ReferralRedemptionInfo `json:"redemption_log"`
}
