package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/leaderfirst_server/internal/model"
)

type ReferralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// WithTx 返回绑定到事务的仓储
func (r *ReferralRepository) WithTx(tx *gorm.DB) *ReferralRepository {
	return &ReferralRepository{db: tx}
}

// Create 插入新码；code 或 active_owner_id 冲突时返回 gorm.ErrDuplicatedKey
func (r *ReferralRepository) Create(code *model.ReferralCode) error {
	if code.Active {
		ownerID := code.OwnerID
		code.ActiveOwnerID = &ownerID
	}
	return r.db.Create(code).Error
}

// GetActiveByCode 查询仍处于激活状态的码
func (r *ReferralRepository) GetActiveByCode(code string) (*model.ReferralCode, error) {
	var rc model.ReferralCode
	err := r.db.Where("code = ? AND active = ?", code, true).First(&rc).Error
	if err != nil {
		return nil, err
	}
	return &rc, nil
}

// GetActiveByOwner 查询作者当前的激活码
func (r *ReferralRepository) GetActiveByOwner(ownerID int64) (*model.ReferralCode, error) {
	var rc model.ReferralCode
	err := r.db.Where("owner_id = ? AND active = ?", ownerID, true).First(&rc).Error
	if err != nil {
		return nil, err
	}
	return &rc, nil
}

// ListByOwner 作者名下所有码，新建的在前
func (r *ReferralRepository) ListByOwner(ownerID int64) ([]*model.ReferralCode, error) {
	var list []*model.ReferralCode
	err := r.db.Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

func (r *ReferralRepository) ExistsByCode(code string) (bool, error) {
	var count int64
	err := r.db.Model(&model.ReferralCode{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}

// Redeem 原子地占用一次兑换名额
// 计数与状态判断在同一条条件 UPDATE 中完成，并发下只有一个调用方能拿到最后一个名额；
// 码不存在、已失效或已用完时返回 (nil, nil)
func (r *ReferralRepository) Redeem(code string, userID int64, paymentID *int64) (*model.ReferralCode, error) {
	var result *model.ReferralCode

	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.ReferralCode{}).
			Where("code = ? AND active = ? AND redemptions < max_redemptions", code, true).
			UpdateColumn("redemptions", gorm.Expr("redemptions + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		var rc model.ReferralCode
		if err := tx.Where("code = ?", code).First(&rc).Error; err != nil {
			return err
		}

		if rc.Exhausted() {
			if err := tx.Model(&model.ReferralCode{}).Where("id = ?", rc.ID).
				Updates(map[string]interface{}{
					"active":          false,
					"active_owner_id": nil,
				}).Error; err != nil {
				return err
			}
			rc.Active = false
			rc.ActiveOwnerID = nil
		}

		redemption := &model.ReferralRedemption{
			ReferralCodeID: rc.ID,
			UserID:         userID,
			PaymentID:      paymentID,
			RedeemedAt:     time.Now(),
		}
		if err := tx.Create(redemption).Error; err != nil {
			return err
		}

		result = &rc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AttachPayment 把尚未关联付款的兑换记录补上付款 ID
func (r *ReferralRepository) AttachPayment(referralCodeID, userID, paymentID int64) error {
	return r.db.Model(&model.ReferralRedemption{}).
		Where("referral_code_id = ? AND user_id = ? AND payment_id IS NULL", referralCodeID, userID).
		Update("payment_id", paymentID).Error
}

// ListRedemptions 按兑换时间顺序返回兑换记录
func (r *ReferralRepository) ListRedemptions(referralCodeID int64) ([]*model.ReferralRedemption, error) {
	var list []*model.ReferralRedemption
	err := r.db.Where("referral_code_id = ?", referralCodeID).
		Order("redeemed_at ASC, id ASC").
		Find(&list).Error
	return list, err
}
