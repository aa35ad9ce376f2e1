package model

import (
	"time"
)

const (
	RoleUser       = "user"
	RoleAuthor     = "author"
	RoleAdmin      = "admin"
	RoleIndividual = "individual"
	RoleCompany    = "company"
	RoleAgency     = "agency"
)

const (
	PlanStatusNone    = "none"
	PlanStatusActive  = "active"
	PlanStatusExpired = "expired"
)

type User struct {
	ID                   int64                `gorm:"primaryKey" json:"id"`
	Email                string               `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash         string               `gorm:"size:255;not null" json:"-"`
	Name                 string               `gorm:"size:100" json:"name"`
	Role                 string               `gorm:"size:20;default:user;index" json:"role"`
	PlanStatus           string               `gorm:"size:20;default:none" json:"plan_status"`
	PlanDetails          *PlanDetails         `gorm:"serializer:json;type:text" json:"plan_details,omitempty"`
	PlanRenewsAt         *time.Time           `json:"plan_renews_at,omitempty"`
	PublishedCountPeriod int                  `gorm:"default:0" json:"published_count_period"`
	PeriodStart          *time.Time           `json:"period_start,omitempty"`
	IndividualProfile    *IndividualProfile   `gorm:"serializer:json;type:text" json:"individual_profile,omitempty"`
	OrgProfile           *OrganizationProfile `gorm:"serializer:json;type:text" json:"org_profile,omitempty"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// PlanDetails 审批时快照的套餐配置
type PlanDetails struct {
	Key                string  `json:"key"`
	Name               string  `json:"name"`
	ArticlesPerQuarter int     `json:"articles_per_quarter"`
	PriceQuarterly     float64 `json:"price_quarterly"`
}

// Profile 按角色区分的注册资料，individual 与 company/agency 各一种形态
type Profile interface {
	ProfileKind() string
}

type IndividualProfile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Location  string `json:"location"`
	Phone     string `json:"phone"`
	Twitter   string `json:"twitter"`
	LinkedIn  string `json:"linkedin"`
}

func (*IndividualProfile) ProfileKind() string { return "individual" }

type OrganizationProfile struct {
	ProviderName string `json:"provider_name"`
	CompanyName  string `json:"company_name"`
	CompanyLink  string `json:"company_link"`
	Location     string `json:"location"`
	Revenue      string `json:"revenue"`
	Employees    string `json:"employees"`
}

func (*OrganizationProfile) ProfileKind() string { return "organization" }

// Profile 返回当前用户的资料变体，没有资料时为 nil
func (u *User) Profile() Profile {
	switch {
	case u.IndividualProfile != nil:
		return u.IndividualProfile
	case u.OrgProfile != nil:
		return u.OrgProfile
	default:
		return nil
	}
}

// SetProfile 写入资料变体，同时清空另一种形态
func (u *User) SetProfile(p Profile) {
	u.IndividualProfile = nil
	u.OrgProfile = nil
	switch v := p.(type) {
	case *IndividualProfile:
		u.IndividualProfile = v
	case *OrganizationProfile:
		u.OrgProfile = v
	}
}

// HasActivePlan 套餐是否处于有效期内
func (u *User) HasActivePlan(now time.Time) bool {
	if u.PlanStatus != PlanStatusActive {
		return false
	}
	return u.PlanRenewsAt == nil || now.Before(*u.PlanRenewsAt)
}
