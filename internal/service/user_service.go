package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"omninet-lottery/backend/internal/dto"
	"omninet-lottery/backend/internal/model"
)

// UserService 用户自身相关业务接口
type UserService interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Tickets(ctx context.Context, userID string) (*dto.TicketSummaryResponse, error)
	DismissWinner(ctx context.Context, userID string) error
}

type userService struct {
	*store
}

// NewUserService 创建 UserService 实例
func NewUserService(st *store) UserService {
	return &userService{store: st}
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.user(ctx, id)
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user *model.User
	err := s.do(ctx, "user.get_by_email", func(ctx context.Context) error {
		var err error
		user, err = s.repo.User.GetByEmail(ctx, strings.ToLower(email))
		return err
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		s.logger.Error("按邮箱查询用户失败", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (s *userService) Tickets(ctx context.Context, userID string) (*dto.TicketSummaryResponse, error) {
	var available, used int64
	err := s.do(ctx, "ticket.count_by_user", func(ctx context.Context) error {
		var err error
		available, used, err = s.repo.Ticket.CountByUser(ctx, userID)
		return err
	})
	if err != nil {
		s.logger.Error("统计用户票数失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return &dto.TicketSummaryResponse{
		AvailableTickets: available,
		UsedTickets:      used,
		TotalTickets:     available + used,
	}, nil
}

// DismissWinner 用户确认中奖提示后清除 has_won 标记
func (s *userService) DismissWinner(ctx context.Context, userID string) error {
	err := s.do(ctx, "user.set_has_won", func(ctx context.Context) error {
		return s.repo.User.SetHasWon(ctx, userID, false)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}
