package service

import (
	"github.com/qs3c/leaderfirst_server/internal/model"
)

// CanReviewPayments 是否可以查看和审核付款申请
func CanReviewPayments(user *model.User) bool {
	return user != nil && user.Role == model.RoleAdmin
}

// CanIssueReferral 是否可以申领折扣码，套餐状态另行判断
func CanIssueReferral(user *model.User) bool {
	return user != nil && user.Role == model.RoleAuthor
}
