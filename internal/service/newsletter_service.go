package service

import (
	"context"

	"go.uber.org/zap"

	"omninet-lottery/backend/pkg/metrics"
)

// NewsletterService 订阅业务接口
// 返回值 changed 为 false 表示状态本已如此（不是错误）
// 用户不存在时返回 ErrUserNotFound
type NewsletterService interface {
	Subscribe(ctx context.Context, userID string) (changed bool, err error)
	Unsubscribe(ctx context.Context, userID string) (changed bool, err error)
}

type newsletterService struct {
	*store
}

// NewNewsletterService 创建 NewsletterService 实例
func NewNewsletterService(st *store) NewsletterService {
	return &newsletterService{store: st}
}

func (s *newsletterService) Subscribe(ctx context.Context, userID string) (bool, error) {
	return s.set(ctx, userID, true)
}

func (s *newsletterService) Unsubscribe(ctx context.Context, userID string) (bool, error) {
	return s.set(ctx, userID, false)
}

func (s *newsletterService) set(ctx context.Context, userID string, subscribed bool) (bool, error) {
	var changed bool
	err := s.do(ctx, "user.set_newsletter", func(ctx context.Context) error {
		var err error
		changed, err = s.repo.User.SetNewsletter(ctx, userID, subscribed)
		return err
	})
	if err != nil {
		s.logger.Error("更新订阅状态失败", zap.String("user_id", userID), zap.Error(err))
		return false, err
	}
	if !changed {
		// 0 行受影响也可能是用户不存在
		if _, err := s.user(ctx, userID); err != nil {
			return false, err
		}
		return false, nil
	}

	action := "unsubscribe"
	if subscribed {
		action = "subscribe"
	}
	metrics.RecordNewsletterChange(action)
	return true, nil
}
