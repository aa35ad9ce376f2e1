package model

import (
	"time"
)

type EnterpriseInquiry struct {
	ID                int64     `gorm:"primaryKey" json:"id"`
	CompanyName       string    `gorm:"size:200;not null" json:"company_name"`
	CompanyLink       string    `gorm:"size:500;not null" json:"company_link"`
	NumberOfEmployees string    `gorm:"size:50;not null" json:"number_of_employees"`
	Email             *string   `gorm:"size:100" json:"email,omitempty"`
	Notes             string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

func (EnterpriseInquiry) TableName() string {
	return "enterprise_inquiries"
}
