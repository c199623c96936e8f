package service

import (
	"context"

	"go.uber.org/zap"

	"omninet-lottery/backend/internal/model"
)

// NotificationService 管理端通知业务接口
type NotificationService interface {
	List(ctx context.Context, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error)
	// MarkAllRead 只修改通知已读状态
	MarkAllRead(ctx context.Context) (int64, error)
	CountUnread(ctx context.Context) (int64, error)
}

type notificationService struct {
	*store
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(st *store) NotificationService {
	return &notificationService{store: st}
}

func (s *notificationService) List(ctx context.Context, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	var (
		list  []model.Notification
		total int64
	)
	err := s.do(ctx, "notification.list", func(ctx context.Context) error {
		var err error
		list, total, err = s.repo.Notification.List(ctx, unreadOnly, offset, limit)
		return err
	})
	if err != nil {
		s.logger.Error("列出通知失败", zap.Error(err))
		return nil, 0, err
	}
	return list, total, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context) (int64, error) {
	var n int64
	err := s.do(ctx, "notification.mark_all_read", func(ctx context.Context) error {
		var err error
		n, err = s.repo.Notification.MarkAllRead(ctx)
		return err
	})
	if err != nil {
		s.logger.Error("标记通知已读失败", zap.Error(err))
		return 0, err
	}
	return n, nil
}

func (s *notificationService) CountUnread(ctx context.Context) (int64, error) {
	var n int64
	err := s.do(ctx, "notification.count_unread", func(ctx context.Context) error {
		var err error
		n, err = s.repo.Notification.CountUnread(ctx)
		return err
	})
	return n, err
}
