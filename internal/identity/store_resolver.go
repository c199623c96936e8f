package identity

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"omninet-lottery/backend/internal/model"
	pkgerrors "omninet-lottery/backend/pkg/errors"
	"omninet-lottery/backend/pkg/jwt"
)

// UserLoader 按 ID 读取用户，repository.UserRepository 满足该接口
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// Blacklist 注销 Token 黑名单，*redis.Client 满足该接口
type Blacklist interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// StoreResolver 完整运行时的身份解析器
// 每次请求都从存储层重新读取用户，角色与封禁状态始终为最新
type StoreResolver struct {
	jwt       *jwt.Manager
	users     UserLoader
	blacklist Blacklist
	retry     pkgerrors.RetryPolicy
	logger    *zap.Logger
}

// NewStoreResolver 创建 StoreResolver，blacklist 可为 nil（未启用 Redis）
func NewStoreResolver(jwtMgr *jwt.Manager, users UserLoader, blacklist Blacklist, retry pkgerrors.RetryPolicy, logger *zap.Logger) *StoreResolver {
	return &StoreResolver{
		jwt:       jwtMgr,
		users:     users,
		blacklist: blacklist,
		retry:     retry,
		logger:    logger,
	}
}

func (s *StoreResolver) Resolve(ctx context.Context, r *http.Request) (*Identity, error) {
	token := TokenFromRequest(r)
	if token == "" {
		return nil, nil
	}

	claims, err := s.jwt.ParseToken(token)
	if err != nil {
		return nil, nil
	}

	if s.blacklist != nil && claims.ID != "" {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		switch {
		case err != nil:
			s.logger.Warn("查询 Token 黑名单失败，跳过检查", zap.Error(err))
		case revoked:
			return nil, nil
		}
	}

	var user *model.User
	err = pkgerrors.WithRetry(ctx, s.retry, func(ctx context.Context) error {
		var loadErr error
		user, loadErr = s.users.GetByID(ctx, claims.UserID)
		return loadErr
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	id := FromUser(user)
	id.TokenID = claims.ID
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

// FromUser 由用户记录构造身份
func FromUser(u *model.User) *Identity {
	return &Identity{
		ID:               u.UserID,
		Name:             u.Name,
		Email:            u.Email,
		Role:             u.Role,
		IsBlocked:        u.IsBlocked,
		TwoFactorEnabled: u.TwoFactorEnabled,
		HasWon:           u.HasWon,
	}
}
