package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"omninet-lottery/backend/internal/model"
	pkgerrors "omninet-lottery/backend/pkg/errors"
)

// UserRepository 用户数据访问接口
// 查询类方法在记录不存在时返回 gorm.ErrRecordNotFound
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByReferralCode(ctx context.Context, code string) (*model.User, error)
	ListWithTicketCounts(ctx context.Context, offset, limit int) ([]model.UserWithTicketCount, int64, error)
	ListReferredBy(ctx context.Context, userID string) ([]model.User, error)
	SetBlocked(ctx context.Context, id string, blocked bool) error
	// SetNewsletter 仅在状态不同时更新，返回是否发生变化
	SetNewsletter(ctx context.Context, id string, subscribed bool) (bool, error)
	SetHasWon(ctx context.Context, id string, hasWon bool) error
	// AssignReferralCode 仅在尚无推荐码时写入，返回是否写入成功
	AssignReferralCode(ctx context.Context, id, code string) (bool, error)
	// SetCustomReferralCode 仅在尚未分配推荐码时写入，返回是否写入成功
	// 已分配的码保持稳定，旧推荐链接不会失效
	SetCustomReferralCode(ctx context.Context, id, code string) (bool, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	CountNewsletterSubscribers(ctx context.Context) (int64, error)
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	return mapUserConstraint(err)
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByReferralCode(ctx context.Context, code string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("referral_code = ?", code).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) ListWithTicketCounts(ctx context.Context, offset, limit int) ([]model.UserWithTicketCount, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.UserWithTicketCount
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Select("users.*, (SELECT COUNT(*) FROM tickets t WHERE t.user_id = users.user_id) AS ticket_count").
		Order("users.created_at DESC").
		Offset(offset).Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

func (r *userRepo) ListReferredBy(ctx context.Context, userID string) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("referred_by = ?", userID).
		Order("created_at DESC").
		Find(&users).Error
	return users, err
}

func (r *userRepo) SetBlocked(ctx context.Context, id string, blocked bool) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", id).
		Updates(map[string]interface{}{
			"is_blocked": blocked,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepo) SetNewsletter(ctx context.Context, id string, subscribed bool) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ? AND newsletter_subscribed <> ?", id, subscribed).
		Updates(map[string]interface{}{
			"newsletter_subscribed": subscribed,
			"updated_at":            time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *userRepo) SetHasWon(ctx context.Context, id string, hasWon bool) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", id).
		Updates(map[string]interface{}{
			"has_won":    hasWon,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepo) AssignReferralCode(ctx context.Context, id, code string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ? AND referral_code IS NULL", id).
		Updates(map[string]interface{}{
			"referral_code": code,
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return false, mapUserConstraint(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *userRepo) SetCustomReferralCode(ctx context.Context, id, code string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ? AND referral_code IS NULL AND referral_code_custom = ?", id, false).
		Updates(map[string]interface{}{
			"referral_code":        code,
			"referral_code_custom": true,
			"updated_at":           time.Now(),
		})
	if res.Error != nil {
		return false, mapUserConstraint(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Delete 删除用户及其票据、中奖记录与相关通知
// 被其推荐的用户 referred_by 由外键置空
func (r *userRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("related_user_id = ?", id).Delete(&model.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.Winner{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.Ticket{}).Error; err != nil {
			return err
		}
		res := tx.Where("user_id = ?", id).Delete(&model.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&n).Error
	return n, err
}

func (r *userRepo) CountNewsletterSubscribers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("newsletter_subscribed = ?", true).
		Count(&n).Error
	return n, err
}

// mapUserConstraint 将唯一约束冲突转换为仓储层语义错误
func mapUserConstraint(err error) error {
	switch {
	case err == nil:
		return nil
	case pkgerrors.IsUniqueViolation(err, constraintUsersEmail):
		return ErrDuplicateEmail
	case pkgerrors.IsUniqueViolation(err, constraintUsersReferralCode):
		return ErrDuplicateReferralCode
	default:
		return err
	}
}
