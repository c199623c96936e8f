package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"omninet-lottery/backend/config"
	"omninet-lottery/backend/internal/model"
	"omninet-lottery/backend/internal/repository"
	pkgerrors "omninet-lottery/backend/pkg/errors"
	"omninet-lottery/backend/pkg/jwt"
	"omninet-lottery/backend/pkg/metrics"
	"omninet-lottery/backend/pkg/shortcode"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	User         UserService
	Admin        AdminService
	Newsletter   NewsletterService
	Referral     ReferralService
	Winner       WinnerService
	Notification NotificationService
	Export       ExportService
}

// TokenBlacklist 注销 Token 黑名单，*redis.Client 满足该接口
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// NewService 创建 Service 聚合，blacklist 可为 nil
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	st := newStore(repo, RetryPolicyFromConfig(&cfg.Retry), logger)
	return &Service{
		Auth:         NewAuthService(st, jwtMgr, blacklist, &cfg.Feature),
		User:         NewUserService(st),
		Admin:        NewAdminService(st),
		Newsletter:   NewNewsletterService(st),
		Referral:     NewReferralService(st, shortcode.New()),
		Winner:       NewWinnerService(st),
		Notification: NewNotificationService(st),
		Export:       NewExportService(st),
	}
}

// RetryPolicyFromConfig 由配置构造重试策略
func RetryPolicyFromConfig(cfg *config.RetryConfig) pkgerrors.RetryPolicy {
	return pkgerrors.RetryPolicy{
		MaxAttempts:    cfg.MaxAttempts,
		InitialBackoff: cfg.InitialBackoff,
		MaxBackoff:     cfg.MaxBackoff,
	}
}

// store 各 Service 共享的存储访问入口，所有存储调用经由重试包装
type store struct {
	repo   *repository.Repository
	retry  pkgerrors.RetryPolicy
	logger *zap.Logger
}

func newStore(repo *repository.Repository, retry pkgerrors.RetryPolicy, logger *zap.Logger) *store {
	return &store{repo: repo, retry: retry, logger: logger}
}

// do 以重试策略执行一次存储操作，op 用于日志与指标
func (s *store) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	policy := s.retry
	policy.OnRetry = func(attempt int, err error) {
		metrics.RecordStoreRetry(op)
		s.logger.Warn("存储操作瞬时失败，准备重试",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	return pkgerrors.WithRetry(ctx, policy, fn)
}

// tx 以重试策略执行一个事务
func (s *store) tx(ctx context.Context, op string, fn func(tx *repository.Repository) error) error {
	return s.do(ctx, op, func(ctx context.Context) error {
		return s.repo.Transaction(ctx, fn)
	})
}

// user 读取用户，不存在时返回 ErrUserNotFound
func (s *store) user(ctx context.Context, id string) (*model.User, error) {
	var user *model.User
	err := s.do(ctx, "user.get", func(ctx context.Context) error {
		var err error
		user, err = s.repo.User.GetByID(ctx, id)
		return err
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

// notify 在事务外写入管理端通知，失败只记录日志
func (s *store) notify(ctx context.Context, n *model.Notification) {
	if err := s.repo.Notification.Create(ctx, n); err != nil {
		s.logger.Warn("写入通知失败", zap.String("type", string(n.Type)), zap.Error(err))
	}
}

func newTickets(userID string, n int, source model.TicketSource) []model.Ticket {
	tickets := make([]model.Ticket, 0, n)
	for i := 0; i < n; i++ {
		tickets = append(tickets, model.Ticket{UserID: userID, Source: source})
	}
	return tickets
}
