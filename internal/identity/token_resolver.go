package identity

import (
	"context"
	"net/http"

	"omninet-lottery/backend/internal/model"
	"omninet-lottery/backend/pkg/jwt"
)

// TokenResolver 受限运行时的身份解析器，仅解码 Token，不访问存储层
// 结果来自签发时的快照，在 Token 刷新前可能落后于数据库
type TokenResolver struct {
	jwt *jwt.Manager
}

// NewTokenResolver 创建 TokenResolver
func NewTokenResolver(jwtMgr *jwt.Manager) *TokenResolver {
	return &TokenResolver{jwt: jwtMgr}
}

func (t *TokenResolver) Resolve(_ context.Context, r *http.Request) (*Identity, error) {
	token := TokenFromRequest(r)
	if token == "" {
		return nil, nil
	}

	claims, err := t.jwt.ParseToken(token)
	if err != nil {
		return nil, nil
	}

	id := &Identity{
		ID:               claims.UserID,
		Name:             claims.Name,
		Email:            claims.Email,
		Role:             model.Role(claims.Role),
		IsBlocked:        claims.IsBlocked,
		TwoFactorEnabled: claims.TwoFactorEnabled,
		HasWon:           claims.HasWon,
		TokenID:          claims.ID,
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}
