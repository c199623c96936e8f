// Package identity 解析请求携带的会话，得到当前调用者身份
package identity

import (
	"context"
	"net/http"
	"strings"
	"time"

	"omninet-lottery/backend/internal/model"
)

// CookieName 会话 Cookie 名称
const CookieName = "session_token"

// ContextKey 身份在 gin.Context 中的键
const ContextKey = "identity"

// Identity 已认证调用者的身份记录
type Identity struct {
	ID               string
	Name             string
	Email            string
	Role             model.Role
	IsBlocked        bool
	TwoFactorEnabled bool
	HasWon           bool

	// TokenID 与 ExpiresAt 来自会话 Token，注销时用于加入黑名单
	TokenID   string
	ExpiresAt time.Time
}

// IsAdmin 是否管理员
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == model.RoleAdmin
}

// Resolver 从请求中解析调用者身份
// 匿名调用者返回 (nil, nil)，仅在意外故障时返回错误
type Resolver interface {
	Resolve(ctx context.Context, r *http.Request) (*Identity, error)
}

// TokenFromRequest 依次从 Authorization: Bearer 头与会话 Cookie 中提取 Token
func TokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}
