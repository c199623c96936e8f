package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"omninet-lottery/backend/internal/dto"
	"omninet-lottery/backend/internal/policy"
	"omninet-lottery/backend/internal/service"
	"omninet-lottery/backend/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	*base
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(b *base, userSvc service.UserService) *UserHandler {
	return &UserHandler{base: b, userSvc: userSvc}
}

// GetUser 按 ID 查询用户（本人或管理员），仅返回受限字段
// GET /api/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	targetID := c.Param("id")
	if d := policy.Authorize(id, policy.SelfOrAdmin(targetID)); !d.Allowed {
		response.Error(c, d.Status(), d.Message())
		return
	}
	if _, ok := pathUUID(c, "id", service.ErrUserNotFound.Error()); !ok {
		return
	}

	user, err := h.userSvc.GetByID(c.Request.Context(), targetID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		h.internalError(c, "user.get", err)
		return
	}

	response.OK(c, gin.H{"user": dto.NewUserResponse(user)})
}

// GetUserByEmail 按邮箱查询用户（本人或管理员）
// GET /api/users/by-email?email=
func (h *UserHandler) GetUserByEmail(c *gin.Context) {
	id, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	var q dto.UserByEmailQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query")
		return
	}
	if err := q.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	// 非管理员只能查询自己，不暴露目标邮箱是否存在
	if !policy.IsAdmin(id) && !sameEmail(id.Email, q.Email) {
		response.Forbidden(c, "")
		return
	}

	user, err := h.userSvc.GetByEmail(c.Request.Context(), q.Email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		h.internalError(c, "user.get_by_email", err)
		return
	}

	if d := policy.Authorize(id, policy.SelfOrAdmin(user.UserID)); !d.Allowed {
		response.Error(c, d.Status(), d.Message())
		return
	}

	response.OK(c, gin.H{"user": dto.NewUserResponse(user)})
}

// Tickets 当前用户票数
// GET /api/user/tickets
func (h *UserHandler) Tickets(c *gin.Context) {
	id, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	summary, err := h.userSvc.Tickets(c.Request.Context(), id.ID)
	if err != nil {
		h.internalError(c, "user.tickets", err)
		return
	}

	response.OK(c, gin.H{
		"availableTickets": summary.AvailableTickets,
		"usedTickets":      summary.UsedTickets,
		"totalTickets":     summary.TotalTickets,
	})
}

// DismissWinner 用户关闭中奖提示
// POST /api/user/dismiss-winner
func (h *UserHandler) DismissWinner(c *gin.Context) {
	id, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	if err := h.userSvc.DismissWinner(c.Request.Context(), id.ID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		h.internalError(c, "user.dismiss_winner", err)
		return
	}

	response.OKMessage(c, "Winner notice dismissed", nil)
}

func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
