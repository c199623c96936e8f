package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"omninet-lottery/backend/internal/model"
)

// WinnerRepository 中奖记录数据访问接口
type WinnerRepository interface {
	Create(ctx context.Context, winner *model.Winner) error
	GetByID(ctx context.Context, id string) (*model.Winner, error)
	// List claimed 为 nil 时不过滤领取状态
	List(ctx context.Context, claimed *bool, offset, limit int) ([]model.Winner, int64, error)
	// Claim 将单条记录标记为已处理，返回是否发生变化
	Claim(ctx context.Context, id string) (bool, error)
	ClaimAll(ctx context.Context) (int64, error)
	CountUnclaimed(ctx context.Context) (int64, error)
}

type winnerRepo struct {
	db *gorm.DB
}

// NewWinnerRepo 创建 WinnerRepository 实例
func NewWinnerRepo(db *gorm.DB) WinnerRepository {
	return &winnerRepo{db: db}
}

func (r *winnerRepo) Create(ctx context.Context, winner *model.Winner) error {
	return r.db.WithContext(ctx).Create(winner).Error
}

func (r *winnerRepo) GetByID(ctx context.Context, id string) (*model.Winner, error) {
	var w model.Winner
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("winner_id = ?", id).
		First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *winnerRepo) List(ctx context.Context, claimed *bool, offset, limit int) ([]model.Winner, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Winner{})
	if claimed != nil {
		query = query.Where("claimed = ?", *claimed)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var winners []model.Winner
	err := query.
		Preload("User").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&winners).Error
	if err != nil {
		return nil, 0, err
	}

	return winners, total, nil
}

func (r *winnerRepo) Claim(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Winner{}).
		Where("winner_id = ? AND claimed = ?", id, false).
		Updates(map[string]interface{}{
			"claimed":    true,
			"claimed_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	// 区分"已领取"与"不存在"
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Winner{}).Where("winner_id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	if n == 0 {
		return false, gorm.ErrRecordNotFound
	}
	return false, nil
}

func (r *winnerRepo) ClaimAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Winner{}).
		Where("claimed = ?", false).
		Updates(map[string]interface{}{
			"claimed":    true,
			"claimed_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}

func (r *winnerRepo) CountUnclaimed(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Winner{}).
		Where("claimed = ?", false).
		Count(&n).Error
	return n, err
}
