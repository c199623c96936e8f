package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"omninet-lottery/backend/internal/health"
	"omninet-lottery/backend/internal/identity"
	"omninet-lottery/backend/internal/policy"
	"omninet-lottery/backend/pkg/response"
)

// Authenticate 解析调用者身份并注入上下文
// 匿名请求照常放行，由 Require 决定是否拒绝
func Authenticate(resolver identity.Resolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := resolver.Resolve(c.Request.Context(), c.Request)
		if err != nil {
			logger.Error("解析会话失败",
				zap.String("request_id", RequestIDFrom(c)),
				zap.Error(err),
			)
			health.FromContext(c.Request.Context()).MarkNeedsCheck()
			response.InternalError(c)
			c.Abort()
			return
		}

		if id != nil {
			c.Set(identity.ContextKey, id)
		}
		c.Next()
	}
}

// Require 按访问要求授权，未通过时在任何数据访问前终止请求
func Require(req policy.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := policy.Authorize(CurrentIdentity(c), req)
		if !decision.Allowed {
			response.Error(c, decision.Status(), decision.Message())
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAuth 要求已认证且未被封禁
func RequireAuth() gin.HandlerFunc {
	return Require(policy.Authenticated)
}

// RequireAdmin 要求管理员
func RequireAdmin() gin.HandlerFunc {
	return Require(policy.Admin)
}

// CurrentIdentity 读取 Authenticate 注入的身份，匿名时返回 nil
func CurrentIdentity(c *gin.Context) *identity.Identity {
	v, ok := c.Get(identity.ContextKey)
	if !ok {
		return nil
	}
	id, _ := v.(*identity.Identity)
	return id
}
