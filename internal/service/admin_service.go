package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"omninet-lottery/backend/internal/dto"
	"omninet-lottery/backend/internal/model"
	"omninet-lottery/backend/internal/repository"
)

// AdminService 管理端业务接口
// 调用方须已通过管理员授权
type AdminService interface {
	Counts(ctx context.Context) (*dto.CountsResponse, error)
	ListUsers(ctx context.Context, offset, limit int) ([]model.UserWithTicketCount, int64, error)
	SetBlocked(ctx context.Context, callerID, userID string, blocked bool) (*model.User, error)
	DeleteUser(ctx context.Context, callerID, userID string) error
	GrantTickets(ctx context.Context, userID string, count int) (*dto.TicketSummaryResponse, error)
	// ProbeStore 执行一次最小存储查询，供诊断接口使用
	ProbeStore(ctx context.Context) error
}

type adminService struct {
	*store
}

// NewAdminService 创建 AdminService 实例
func NewAdminService(st *store) AdminService {
	return &adminService{store: st}
}

// Counts 每次调用都实时统计
func (s *adminService) Counts(ctx context.Context) (*dto.CountsResponse, error) {
	var counts dto.CountsResponse
	steps := []struct {
		op  string
		dst *int64
		fn  func(ctx context.Context) (int64, error)
	}{
		{"user.count", &counts.Users, s.repo.User.Count},
		{"user.count_newsletter", &counts.NewsletterSubscribers, s.repo.User.CountNewsletterSubscribers},
		{"ticket.count", &counts.AppliedTickets, s.repo.Ticket.Count},
		{"winner.count_unclaimed", &counts.UnclaimedWinners, s.repo.Winner.CountUnclaimed},
		{"ticket.count_active", &counts.ActiveTickets, s.repo.Ticket.CountActive},
	}

	for _, step := range steps {
		step := step
		err := s.do(ctx, step.op, func(ctx context.Context) error {
			n, err := step.fn(ctx)
			if err != nil {
				return err
			}
			*step.dst = n
			return nil
		})
		if err != nil {
			s.logger.Error("统计失败", zap.String("op", step.op), zap.Error(err))
			return nil, err
		}
	}

	return &counts, nil
}

func (s *adminService) ListUsers(ctx context.Context, offset, limit int) ([]model.UserWithTicketCount, int64, error) {
	var (
		rows  []model.UserWithTicketCount
		total int64
	)
	err := s.do(ctx, "user.list", func(ctx context.Context) error {
		var err error
		rows, total, err = s.repo.User.ListWithTicketCounts(ctx, offset, limit)
		return err
	})
	if err != nil {
		s.logger.Error("列出用户失败", zap.Error(err))
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *adminService) SetBlocked(ctx context.Context, callerID, userID string, blocked bool) (*model.User, error) {
	if callerID == userID {
		return nil, ErrSelfBlock
	}

	err := s.do(ctx, "user.set_blocked", func(ctx context.Context) error {
		return s.repo.User.SetBlocked(ctx, userID, blocked)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		s.logger.Error("更新封禁状态失败", zap.String("id", userID), zap.Error(err))
		return nil, err
	}

	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}

	if blocked {
		s.notify(ctx, &model.Notification{
			Type:          model.NotificationUserBlocked,
			Title:         "User blocked",
			Content:       fmt.Sprintf("%s <%s> was blocked", user.Name, user.Email),
			RelatedUserID: &user.UserID,
		})
	}
	s.logger.Info("用户封禁状态已更新",
		zap.String("id", userID),
		zap.Bool("blocked", blocked),
		zap.String("by", callerID),
	)
	return user, nil
}

// DeleteUser 删除用户，票据、中奖记录与相关通知一并删除
func (s *adminService) DeleteUser(ctx context.Context, callerID, userID string) error {
	if callerID == userID {
		return ErrSelfDelete
	}

	err := s.do(ctx, "user.delete", func(ctx context.Context) error {
		return s.repo.User.Delete(ctx, userID)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		s.logger.Error("删除用户失败", zap.String("id", userID), zap.Error(err))
		return err
	}

	s.logger.Info("用户已删除", zap.String("id", userID), zap.String("by", callerID))
	return nil
}

func (s *adminService) GrantTickets(ctx context.Context, userID string, count int) (*dto.TicketSummaryResponse, error) {
	if _, err := s.user(ctx, userID); err != nil {
		return nil, err
	}

	var available, used int64
	err := s.tx(ctx, "ticket.grant", func(tx *repository.Repository) error {
		if err := tx.Ticket.CreateBatch(ctx, newTickets(userID, count, model.TicketSourceAdmin)); err != nil {
			return err
		}
		var err error
		available, used, err = tx.Ticket.CountByUser(ctx, userID)
		return err
	})
	if err != nil {
		s.logger.Error("发放票据失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	return &dto.TicketSummaryResponse{
		AvailableTickets: available,
		UsedTickets:      used,
		TotalTickets:     available + used,
	}, nil
}

func (s *adminService) ProbeStore(ctx context.Context) error {
	_, err := s.repo.User.Count(ctx)
	return err
}
