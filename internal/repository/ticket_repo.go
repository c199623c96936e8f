package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"omninet-lottery/backend/internal/model"
)

// TicketRepository 抽奖票数据访问接口
type TicketRepository interface {
	CreateBatch(ctx context.Context, tickets []model.Ticket) error
	// CountByUser 返回指定用户的可用票数与已用票数
	CountByUser(ctx context.Context, userID string) (available, used int64, err error)
	Count(ctx context.Context) (int64, error)
	CountActive(ctx context.Context) (int64, error)
	MarkAllUsedForUser(ctx context.Context, userID string) (int64, error)
}

type ticketRepo struct {
	db *gorm.DB
}

// NewTicketRepo 创建 TicketRepository 实例
func NewTicketRepo(db *gorm.DB) TicketRepository {
	return &ticketRepo{db: db}
}

func (r *ticketRepo) CreateBatch(ctx context.Context, tickets []model.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(tickets, 100).Error
}

func (r *ticketRepo) CountByUser(ctx context.Context, userID string) (int64, int64, error) {
	var row struct {
		Available int64
		Used      int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Ticket{}).
		Select("COUNT(*) FILTER (WHERE is_used = false) AS available, COUNT(*) FILTER (WHERE is_used = true) AS used").
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Available, row.Used, nil
}

func (r *ticketRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Ticket{}).Count(&n).Error
	return n, err
}

func (r *ticketRepo) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Ticket{}).
		Where("is_used = ?", false).
		Count(&n).Error
	return n, err
}

func (r *ticketRepo) MarkAllUsedForUser(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Ticket{}).
		Where("user_id = ? AND is_used = ?", userID, false).
		Updates(map[string]interface{}{
			"is_used": true,
			"used_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}
