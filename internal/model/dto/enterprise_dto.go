package dto

type EnterpriseInquiryRequest struct {
	CompanyName       string `json:"company_name" binding:"required,max=200"`
	CompanyLink       string `json:"company_link" binding:"required,max=500"`
	NumberOfEmployees string `json:"number_of_employees" binding:"required,max=50"`
	Email             string `json:"email" binding:"omitempty,email"`
	Notes             string `json:"notes" binding:"omitempty,max=2000"`
}
