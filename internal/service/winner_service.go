package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"omninet-lottery/backend/internal/model"
	"omninet-lottery/backend/internal/repository"
)

// WinnerService 中奖业务接口
// 领取状态只由本服务修改，通知已读与否不影响领取
type WinnerService interface {
	Record(ctx context.Context, userID string) (*model.Winner, error)
	List(ctx context.Context, claimed *bool, offset, limit int) ([]model.Winner, int64, error)
	Claim(ctx context.Context, winnerID string) (changed bool, err error)
	ClaimAll(ctx context.Context) (int64, error)
}

type winnerService struct {
	*store
}

// NewWinnerService 创建 WinnerService 实例
func NewWinnerService(st *store) WinnerService {
	return &winnerService{store: st}
}

// Record 登记中奖：写入中奖记录、标记用户已中奖、作废其剩余票据并通知管理员
func (s *winnerService) Record(ctx context.Context, userID string) (*model.Winner, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}

	var winner *model.Winner
	err = s.tx(ctx, "winner.record", func(tx *repository.Repository) error {
		winner = &model.Winner{UserID: userID}
		if err := tx.Winner.Create(ctx, winner); err != nil {
			return err
		}
		if err := tx.User.SetHasWon(ctx, userID, true); err != nil {
			return err
		}
		if _, err := tx.Ticket.MarkAllUsedForUser(ctx, userID); err != nil {
			return err
		}
		return tx.Notification.Create(ctx, &model.Notification{
			Type:          model.NotificationWinnerDrawn,
			Title:         "Winner drawn",
			Content:       fmt.Sprintf("%s <%s> won the draw", user.Name, user.Email),
			RelatedUserID: &user.UserID,
		})
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		s.logger.Error("登记中奖失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	winner.User = user
	s.logger.Info("已登记中奖", zap.String("winner_id", winner.WinnerID), zap.String("user_id", userID))
	return winner, nil
}

func (s *winnerService) List(ctx context.Context, claimed *bool, offset, limit int) ([]model.Winner, int64, error) {
	var (
		winners []model.Winner
		total   int64
	)
	err := s.do(ctx, "winner.list", func(ctx context.Context) error {
		var err error
		winners, total, err = s.repo.Winner.List(ctx, claimed, offset, limit)
		return err
	})
	if err != nil {
		s.logger.Error("列出中奖记录失败", zap.Error(err))
		return nil, 0, err
	}
	return winners, total, nil
}

func (s *winnerService) Claim(ctx context.Context, winnerID string) (bool, error) {
	var changed bool
	err := s.do(ctx, "winner.claim", func(ctx context.Context) error {
		var err error
		changed, err = s.repo.Winner.Claim(ctx, winnerID)
		return err
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, ErrWinnerNotFound
	}
	if err != nil {
		s.logger.Error("领取中奖失败", zap.String("winner_id", winnerID), zap.Error(err))
		return false, err
	}
	return changed, nil
}

func (s *winnerService) ClaimAll(ctx context.Context) (int64, error) {
	var n int64
	err := s.do(ctx, "winner.claim_all", func(ctx context.Context) error {
		var err error
		n, err = s.repo.Winner.ClaimAll(ctx)
		return err
	})
	if err != nil {
		s.logger.Error("批量领取中奖失败", zap.Error(err))
		return 0, err
	}
	return n, nil
}
