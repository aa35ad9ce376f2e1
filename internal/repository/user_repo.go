package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/leaderfirst_server/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx 返回绑定到事务的仓储
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) GetByID(id int64) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByIDForUpdate 事务内加行锁读取
func (r *UserRepository) GetByIDForUpdate(id int64) (*model.User, error) {
	var user model.User
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

// ActivatePlan 写入套餐激活字段并重置本周期发文计数
func (r *UserRepository) ActivatePlan(id int64, details *model.PlanDetails, renewsAt, periodStart time.Time) error {
	return r.db.Model(&model.User{ID: id}).Select(
		"role", "plan_status", "plan_details", "plan_renews_at", "published_count_period", "period_start",
	).Updates(&model.User{
		Role:                 model.RoleAuthor,
		PlanStatus:           model.PlanStatusActive,
		PlanDetails:          details,
		PlanRenewsAt:         &renewsAt,
		PublishedCountPeriod: 0,
		PeriodStart:          &periodStart,
	}).Error
}

// ExpirePlan 仅当套餐仍为 active 时标记为 expired
func (r *UserRepository) ExpirePlan(id int64) error {
	return r.db.Model(&model.User{}).
		Where("id = ? AND plan_status = ?", id, model.PlanStatusActive).
		Update("plan_status", model.PlanStatusExpired).Error
}

// ExpireDuePlans 批量把已过续期时间的 active 套餐标记为 expired，返回影响行数
func (r *UserRepository) ExpireDuePlans(now time.Time) (int64, error) {
	result := r.db.Model(&model.User{}).
		Where("plan_status = ? AND plan_renews_at IS NOT NULL AND plan_renews_at <= ?", model.PlanStatusActive, now).
		Update("plan_status", model.PlanStatusExpired)
	return result.RowsAffected, result.Error
}

func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}
