package middleware

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requestIDMaxLen 限制外部传入的 Request-ID 最大长度，防止日志注入
const requestIDMaxLen = 64

// RequestID 请求追踪 ID 中间件
// 从请求头 X-Request-ID 读取，若不存在则自动生成 UUID，并写回响应头
func RequestID() gin.HandlerFunc {
	return requestid.New(
		requestid.WithGenerator(func() string { return uuid.New().String() }),
	)
}

// RequestIDFrom 读取当前请求的追踪 ID
func RequestIDFrom(c *gin.Context) string {
	rid := requestid.Get(c)
	if len(rid) > requestIDMaxLen {
		return rid[:requestIDMaxLen]
	}
	return rid
}
