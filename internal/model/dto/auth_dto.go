package dto

import (
	"github.com/qs3c/leaderfirst_server/internal/model"
)

// RequestOTPRequest 申请注册验证码
type RequestOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// RequestOTPResponse 验证码已发出，不回传验证码本身
type RequestOTPResponse struct {
	Email     string `json:"email"`
	ExpiresAt string `json:"expires_at"`
}

// VerifyOTPRequest 校验注册验证码
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,numeric"`
}

// VerifyOTPResponse 校验结果，只证明邮箱有效，不创建账号
type VerifyOTPResponse struct {
	Email            string `json:"email"`
	EligibleToSignup bool   `json:"eligible_to_signup"`
}

// SignupRequest 完成注册，角色决定需要哪一种资料
type SignupRequest struct {
	Role     string `json:"role" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=64"`
	Name     string `json:"name" binding:"omitempty,max=100"`

	// individual
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Twitter   string `json:"twitter"`
	LinkedIn  string `json:"linkedin"`

	// company / agency
	ProviderName string `json:"provider_name"`
	CompanyName  string `json:"company_name"`
	CompanyLink  string `json:"company_link"`
	Revenue      string `json:"revenue"`
	Employees    string `json:"employees"`

	Location string `json:"location"`
}

// Profile 按角色构造资料变体；未知角色返回 ok=false
// 返回的 missing 为该角色缺失的必填字段
func (r *SignupRequest) Profile() (profile model.Profile, missing []string, ok bool) {
	switch r.Role {
	case model.RoleIndividual:
		missing = missingFields(map[string]string{
			"first_name": r.FirstName,
			"last_name":  r.LastName,
			"location":   r.Location,
			"phone":      r.Phone,
		}, "first_name", "last_name", "location", "phone")
		return &model.IndividualProfile{
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Location:  r.Location,
			Phone:     r.Phone,
			Twitter:   r.Twitter,
			LinkedIn:  r.LinkedIn,
		}, missing, true
	case model.RoleCompany, model.RoleAgency:
		missing = missingFields(map[string]string{
			"provider_name": r.ProviderName,
			"company_name":  r.CompanyName,
			"company_link":  r.CompanyLink,
			"location":      r.Location,
		}, "provider_name", "company_name", "company_link", "location")
		return &model.OrganizationProfile{
			ProviderName: r.ProviderName,
			CompanyName:  r.CompanyName,
			CompanyLink:  r.CompanyLink,
			Location:     r.Location,
			Revenue:      r.Revenue,
			Employees:    r.Employees,
		}, missing, true
	case model.RoleUser, model.RoleAuthor, model.RoleAdmin:
		return nil, nil, true
	default:
		return nil, nil, false
	}
}

func missingFields(values map[string]string, order ...string) []string {
	var missing []string
	for _, k := range order {
		if values[k] == "" {
			missing = append(missing, k)
		}
	}
	return missing
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录/注册成功响应
type LoginResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

// UserInfo 用户信息（返回给前端）
type UserInfo struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
}

// MeResponse 当前用户及套餐信息
type MeResponse struct {
	UserInfo
	PlanStatus           string             `json:"plan_status"`
	PlanDetails          *model.PlanDetails `json:"plan_details,omitempty"`
	PlanRenewsAt         string             `json:"plan_renews_at,omitempty"`
	PublishedCountPeriod int                `json:"published_count_period"`
	PeriodStart          string             `json:"period_start,omitempty"`
	Profile              model.Profile      `json:"profile,omitempty"`
}
