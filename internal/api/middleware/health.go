package middleware

import (
	"github.com/gin-gonic/gin"

	"omninet-lottery/backend/internal/health"
)

const healthHeader = "X-Store-Health"

// HealthHint 将健康检查服务注入请求上下文
// 存储层状态异常时附加 X-Store-Health: degraded 响应头，仅作提示
func HealthHint(svc *health.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if svc == nil {
			c.Next()
			return
		}
		ctx := health.WithService(c.Request.Context(), svc)
		c.Request = c.Request.WithContext(ctx)

		if !svc.Status(ctx).Healthy {
			c.Header(healthHeader, "degraded")
		}
		c.Next()
	}
}
