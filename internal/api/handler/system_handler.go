package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"omninet-lottery/backend/internal/health"
	"omninet-lottery/backend/internal/service"
	"omninet-lottery/backend/pkg/response"
)

// SystemHandler 健康检查与诊断接口
type SystemHandler struct {
	*base
	adminSvc  service.AdminService
	healthSvc *health.Service
}

// NewSystemHandler 创建 SystemHandler
func NewSystemHandler(b *base, adminSvc service.AdminService, healthSvc *health.Service) *SystemHandler {
	return &SystemHandler{base: b, adminSvc: adminSvc, healthSvc: healthSvc}
}

// Health 健康状态快照
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	snap := h.healthSvc.Status(c.Request.Context())

	status := http.StatusOK
	state := health.StatusOK
	if !snap.Healthy {
		status = http.StatusServiceUnavailable
		state = "DEGRADED"
	}
	c.JSON(status, gin.H{
		"success":    snap.Healthy,
		"status":     state,
		"components": snap.Components,
		"lastCheck":  snap.LastCheck,
	})
}

// DebugStore 存储探测，失败时回显底层错误
// 仅在 feature.debug_endpoints 开启时注册，且要求管理员
// GET /api/debug/store
func (h *SystemHandler) DebugStore(c *gin.Context) {
	if err := h.adminSvc.ProbeStore(c.Request.Context()); err != nil {
		health.FromContext(c.Request.Context()).MarkNeedsCheck()
		response.DebugError(c, err)
		return
	}
	response.OKMessage(c, "Store reachable", nil)
}
