package dto

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"omninet-lottery/backend/internal/identity"
	"omninet-lottery/backend/internal/model"
)

// ── 用户模块 DTO ──

// UserResponse 受限用户字段，对外仅暴露这些字段
type UserResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Role             string `json:"role"`
	IsBlocked        bool   `json:"isBlocked"`
	TwoFactorEnabled bool   `json:"twoFactorEnabled"`
	HasWon           bool   `json:"hasWon"`
}

// NewUserResponse 由用户记录构造
func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:               u.UserID,
		Name:             u.Name,
		Email:            u.Email,
		Role:             string(u.Role),
		IsBlocked:        u.IsBlocked,
		TwoFactorEnabled: u.TwoFactorEnabled,
		HasWon:           u.HasWon,
	}
}

// NewIdentityResponse 由身份构造
func NewIdentityResponse(id *identity.Identity) UserResponse {
	return UserResponse{
		ID:               id.ID,
		Name:             id.Name,
		Email:            id.Email,
		Role:             string(id.Role),
		IsBlocked:        id.IsBlocked,
		TwoFactorEnabled: id.TwoFactorEnabled,
		HasWon:           id.HasWon,
	}
}

// AdminUserResponse 管理端用户列表行
type AdminUserResponse struct {
	UserResponse
	NewsletterSubscribed bool      `json:"newsletterSubscribed"`
	ReferralCode         string    `json:"referralCode,omitempty"`
	TicketCount          int64     `json:"ticketCount"`
	CreatedAt            time.Time `json:"createdAt"`
}

// NewAdminUserResponse 由列表行构造
func NewAdminUserResponse(row *model.UserWithTicketCount) AdminUserResponse {
	resp := AdminUserResponse{
		UserResponse:         NewUserResponse(&row.User),
		NewsletterSubscribed: row.NewsletterSubscribed,
		TicketCount:          row.TicketCount,
		CreatedAt:            row.CreatedAt,
	}
	if row.ReferralCode != nil {
		resp.ReferralCode = *row.ReferralCode
	}
	return resp
}

// UserListRequest 管理端用户列表查询参数
type UserListRequest struct {
	PaginationRequest
}

// BlockUserRequest 封禁/解封请求
// 使用指针区分"字段缺失"与 false
type BlockUserRequest struct {
	IsBlocked *bool `json:"isBlocked" binding:"required"`
}

// UserByEmailQuery 按邮箱查询参数
type UserByEmailQuery struct {
	Email string `form:"email"`
}

// Validate 校验查询参数
func (q *UserByEmailQuery) Validate() error {
	q.Email = strings.TrimSpace(q.Email)
	return validation.ValidateStruct(q,
		validation.Field(&q.Email, validation.Required, is.Email),
	)
}

// TicketSummaryResponse 当前用户票数
type TicketSummaryResponse struct {
	AvailableTickets int64 `json:"availableTickets"`
	UsedTickets      int64 `json:"usedTickets"`
	TotalTickets     int64 `json:"totalTickets"`
}

// GrantTicketsRequest 管理员发放票据请求
type GrantTicketsRequest struct {
	Count int `json:"count" binding:"required,min=1,max=100"`
}
