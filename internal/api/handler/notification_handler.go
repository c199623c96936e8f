package handler

import (
	"github.com/gin-gonic/gin"

	"omninet-lottery/backend/internal/dto"
	"omninet-lottery/backend/internal/service"
	"omninet-lottery/backend/pkg/response"
)

// NotificationHandler 管理端通知 HTTP 处理器
type NotificationHandler struct {
	*base
	notificationSvc service.NotificationService
}

// NewNotificationHandler 创建 NotificationHandler
func NewNotificationHandler(b *base, notificationSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{base: b, notificationSvc: notificationSvc}
}

// List 通知列表
// GET /api/admin/notifications?unread=true
func (h *NotificationHandler) List(c *gin.Context) {
	var req dto.NotificationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query")
		return
	}

	ctx := c.Request.Context()
	list, total, err := h.notificationSvc.List(ctx, req.Unread, req.GetOffset(), req.GetPageSize())
	if err != nil {
		h.internalError(c, "notification.list", err)
		return
	}
	unread, err := h.notificationSvc.CountUnread(ctx)
	if err != nil {
		h.internalError(c, "notification.count_unread", err)
		return
	}

	items := make([]dto.NotificationResponse, 0, len(list))
	for i := range list {
		items = append(items, dto.NewNotificationResponse(&list[i]))
	}
	response.OK(c, gin.H{
		"notifications": items,
		"total":         total,
		"unread":        unread,
	})
}

// MarkAllRead 全部标记已读，不影响中奖领取状态
// POST /api/admin/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.notificationSvc.MarkAllRead(c.Request.Context())
	if err != nil {
		h.internalError(c, "notification.read_all", err)
		return
	}
	response.OK(c, gin.H{"updated": n})
}
