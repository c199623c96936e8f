package repository

import (
	"context"

	"gorm.io/gorm"

	"omninet-lottery/backend/internal/model"
)

// NotificationRepository 管理端通知数据访问接口
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	List(ctx context.Context, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error)
	MarkAllRead(ctx context.Context) (int64, error)
	CountUnread(ctx context.Context) (int64, error)
}

type notificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepo 创建 NotificationRepository 实例
func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepo) List(ctx context.Context, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Notification{})
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []model.Notification
	err := query.
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("is_read = ?", false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *notificationRepo) CountUnread(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("is_read = ?", false).
		Count(&n).Error
	return n, err
}
