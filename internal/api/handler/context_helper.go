package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"omninet-lottery/backend/internal/api/middleware"
	"omninet-lottery/backend/internal/identity"
	"omninet-lottery/backend/pkg/response"
)

// MustGetIdentity 从 Gin 上下文中安全提取当前身份。
// 路由未挂载 RequireAuth 时可能为空，此时写入 401 响应并返回 false。
// 调用方应在 ok=false 时直接 return。
func MustGetIdentity(c *gin.Context) (*identity.Identity, bool) {
	id := middleware.CurrentIdentity(c)
	if id == nil || id.ID == "" {
		response.Unauthorized(c)
		return nil, false
	}
	return id, true
}

// pathUUID 读取 UUID 形式的路径参数。
// 格式不合法的 ID 不可能命中任何记录，直接写入 404 并返回 false，避免交给数据库报类型错误。
func pathUUID(c *gin.Context, name, notFoundMsg string) (string, bool) {
	v := c.Param(name)
	if uuid.Validate(v) != nil {
		response.NotFound(c, notFoundMsg)
		return "", false
	}
	return v, true
}
