package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/qs3c/leaderfirst_server/internal/model"
	"github.com/qs3c/leaderfirst_server/internal/model/dto"
	"github.com/qs3c/leaderfirst_server/internal/pkg/email"
	"github.com/qs3c/leaderfirst_server/internal/repository"
)

type EnterpriseService struct {
	enterpriseRepo *repository.EnterpriseRepository
	notifier       Notifier
	inbox          string
	log            *zap.Logger
}

func NewEnterpriseService(
	enterpriseRepo *repository.EnterpriseRepository,
	notifier Notifier,
	inbox string,
	log *zap.Logger,
) *EnterpriseService {
	return &EnterpriseService{
		enterpriseRepo: enterpriseRepo,
		notifier:       notifier,
		inbox:          inbox,
		log:            log,
	}
}

// SubmitInquiry 保存企业套餐咨询并通知运营邮箱，通知失败不影响保存结果
func (s *EnterpriseService) SubmitInquiry(ctx context.Context, req *dto.EnterpriseInquiryRequest) (*model.EnterpriseInquiry, error) {
	inquiry := &model.EnterpriseInquiry{
		CompanyName:       strings.TrimSpace(req.CompanyName),
		CompanyLink:       strings.TrimSpace(req.CompanyLink),
		NumberOfEmployees: strings.TrimSpace(req.NumberOfEmployees),
		Notes:             strings.TrimSpace(req.Notes),
	}
	if contact := normalizeEmail(req.Email); contact != "" {
		inquiry.Email = &contact
	}

	if err := s.enterpriseRepo.Create(inquiry); err != nil {
		return nil, err
	}

	if s.inbox != "" && s.notifier != nil {
		contact := ""
		if inquiry.Email != nil {
			contact = *inquiry.Email
		}
		subject, body := email.EnterpriseInquiry(inquiry.CompanyName, inquiry.CompanyLink, inquiry.NumberOfEmployees, contact, inquiry.Notes)
		if err := s.notifier.Send(ctx, s.inbox, subject, body); err != nil {
			s.log.Warn("send enterprise inquiry email failed", zap.Int64("inquiry_id", inquiry.ID), zap.Error(err))
		}
	}

	return inquiry, nil
}
