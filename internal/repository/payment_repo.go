package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/leaderfirst_server/internal/model"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// WithTx 返回绑定到事务的仓储
func (r *PaymentRepository) WithTx(tx *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: tx}
}

func (r *PaymentRepository) Create(p *model.PaymentRequest) error {
	return r.db.Create(p).Error
}

// GetByIDForUpdate 事务内加行锁读取，审核时使用
func (r *PaymentRepository) GetByIDForUpdate(id int64) (*model.PaymentRequest, error) {
	var p model.PaymentRequest
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPending 待审核列表，按提交时间倒序，预加载申请人
func (r *PaymentRepository) ListPending() ([]*model.PaymentRequest, error) {
	var list []*model.PaymentRequest
	err := r.db.Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "email", "name", "role")
	}).
		Where("status = ?", model.PaymentStatusPending).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

// ListByUser 用户自己的申请记录
func (r *PaymentRepository) ListByUser(userID int64) ([]*model.PaymentRequest, error) {
	var list []*model.PaymentRequest
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

// MarkReviewed 仅当仍为 pending 时写入审核结果，返回是否成功流转
func (r *PaymentRepository) MarkReviewed(id int64, status string, reviewerID int64, comment string, reviewedAt time.Time) (bool, error) {
	res := r.db.Model(&model.PaymentRequest{}).
		Where("id = ? AND status = ?", id, model.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":        status,
			"reviewed_by":   reviewerID,
			"admin_comment": comment,
			"reviewed_at":   reviewedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
