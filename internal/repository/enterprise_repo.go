package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/leaderfirst_server/internal/model"
)

type EnterpriseRepository struct {
	db *gorm.DB
}

func NewEnterpriseRepository(db *gorm.DB) *EnterpriseRepository {
	return &EnterpriseRepository{db: db}
}

func (r *EnterpriseRepository) Create(inquiry *model.EnterpriseInquiry) error {
	return r.db.Create(inquiry).Error
}
