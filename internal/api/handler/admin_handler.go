package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"omninet-lottery/backend/internal/dto"
	"omninet-lottery/backend/internal/service"
	"omninet-lottery/backend/pkg/response"
)

// AdminHandler 管理端 HTTP 处理器
// 路由层已通过 RequireAdmin 授权，此处不再重复校验角色
type AdminHandler struct {
	*base
	adminSvc service.AdminService
}

// NewAdminHandler 创建 AdminHandler
func NewAdminHandler(b *base, adminSvc service.AdminService) *AdminHandler {
	return &AdminHandler{base: b, adminSvc: adminSvc}
}

// Check 管理员身份确认
// GET /api/admin/check
func (h *AdminHandler) Check(c *gin.Context) {
	response.OKMessage(c, "Admin access granted", nil)
}

// Counts 聚合计数，每次实时计算
// GET /api/admin/counts
func (h *AdminHandler) Counts(c *gin.Context) {
	counts, err := h.adminSvc.Counts(c.Request.Context())
	if err != nil {
		h.internalError(c, "admin.counts", err)
		return
	}
	response.OK(c, gin.H{"counts": counts})
}

// ListUsers 用户列表（含票数），按注册时间倒序
// GET /api/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query")
		return
	}

	rows, total, err := h.adminSvc.ListUsers(c.Request.Context(), req.GetOffset(), req.GetPageSize())
	if err != nil {
		h.internalError(c, "admin.list_users", err)
		return
	}

	users := make([]dto.AdminUserResponse, 0, len(rows))
	for i := range rows {
		users = append(users, dto.NewAdminUserResponse(&rows[i]))
	}
	response.OK(c, gin.H{
		"users":      users,
		"total":      total,
		"pagination": response.NewPagination(total, req.GetPage(), req.GetPageSize()),
	})
}

// DeleteUser 删除用户
// DELETE /api/admin/user/:userId
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	targetID, ok := pathUUID(c, "userId", service.ErrUserNotFound.Error())
	if !ok {
		return
	}

	err := h.adminSvc.DeleteUser(c.Request.Context(), caller.ID, targetID)
	if err != nil {
		h.handleUserError(c, "admin.delete_user", err)
		return
	}
	response.OKMessage(c, "User deleted", nil)
}

// BlockUser 封禁/解封用户
// POST /api/admin/user/block/:userId
func (h *AdminHandler) BlockUser(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	targetID, ok := pathUUID(c, "userId", service.ErrUserNotFound.Error())
	if !ok {
		return
	}

	var req dto.BlockUserRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsBlocked == nil {
		response.BadRequest(c, "isBlocked is required")
		return
	}

	user, err := h.adminSvc.SetBlocked(c.Request.Context(), caller.ID, targetID, *req.IsBlocked)
	if err != nil {
		h.handleUserError(c, "admin.block_user", err)
		return
	}

	msg := "User unblocked"
	if *req.IsBlocked {
		msg = "User blocked"
	}
	response.OKMessage(c, msg, gin.H{"user": dto.NewUserResponse(user)})
}

// GrantTickets 为用户发放票
// POST /api/admin/user/:userId/tickets
func (h *AdminHandler) GrantTickets(c *gin.Context) {
	targetID, ok := pathUUID(c, "userId", service.ErrUserNotFound.Error())
	if !ok {
		return
	}

	var req dto.GrantTicketsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "count must be between 1 and 100")
		return
	}

	summary, err := h.adminSvc.GrantTickets(c.Request.Context(), targetID, req.Count)
	if err != nil {
		h.handleUserError(c, "admin.grant_tickets", err)
		return
	}
	response.OK(c, gin.H{"tickets": summary})
}

func (h *AdminHandler) handleUserError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrSelfBlock), errors.Is(err, service.ErrSelfDelete):
		response.BadRequest(c, err.Error())
	default:
		h.internalError(c, op, err)
	}
}
