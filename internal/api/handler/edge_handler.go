package handler

import (
	"github.com/gin-gonic/gin"

	"omninet-lottery/backend/internal/api/middleware"
	"omninet-lottery/backend/internal/dto"
	"omninet-lottery/backend/internal/policy"
	"omninet-lottery/backend/pkg/response"
)

// EdgeHandler 受限运行时的身份检查接口
// 仅依赖 Token 快照，不访问数据库与 Redis
type EdgeHandler struct{}

// NewEdgeHandler 创建 EdgeHandler
func NewEdgeHandler() *EdgeHandler {
	return &EdgeHandler{}
}

// Session 返回 Token 快照中的身份
// GET /edge/session
func (h *EdgeHandler) Session(c *gin.Context) {
	id := middleware.CurrentIdentity(c)
	if id == nil {
		response.Unauthorized(c)
		return
	}
	response.OK(c, gin.H{"user": dto.NewIdentityResponse(id)})
}

// AdminGate 管理后台入口的路由级检查
// GET /edge/admin-gate
func (h *EdgeHandler) AdminGate(c *gin.Context) {
	d := policy.Authorize(middleware.CurrentIdentity(c), policy.Admin)
	if !d.Allowed {
		response.Error(c, d.Status(), d.Message())
		return
	}
	response.OK(c, nil)
}
