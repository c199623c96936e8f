package dto

import (
	"time"

	"omninet-lottery/backend/internal/model"
)

// ── 管理端 DTO ──

// CountsResponse 管理端统计
type CountsResponse struct {
	Users                 int64 `json:"users"`
	NewsletterSubscribers int64 `json:"newsletterSubscribers"`
	AppliedTickets        int64 `json:"appliedTickets"`
	UnclaimedWinners      int64 `json:"unclaimedWinners"`
	ActiveTickets         int64 `json:"activeTickets"`
}

// RecordWinnerRequest 登记中奖请求
type RecordWinnerRequest struct {
	UserID string `json:"userId" binding:"required,uuid"`
}

// WinnerListRequest 中奖列表查询参数
type WinnerListRequest struct {
	PaginationRequest
	Claimed *bool `form:"claimed"`
}

// WinnerResponse 中奖记录
type WinnerResponse struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	Claimed   bool          `json:"claimed"`
	ClaimedAt *time.Time    `json:"claimedAt,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	User      *UserResponse `json:"user,omitempty"`
}

// NewWinnerResponse 由中奖记录构造
func NewWinnerResponse(w *model.Winner) WinnerResponse {
	resp := WinnerResponse{
		ID:        w.WinnerID,
		UserID:    w.UserID,
		Claimed:   w.Claimed,
		ClaimedAt: w.ClaimedAt,
		CreatedAt: w.CreatedAt,
	}
	if w.User != nil {
		u := NewUserResponse(w.User)
		resp.User = &u
	}
	return resp
}

// NotificationListRequest 通知列表查询参数
type NotificationListRequest struct {
	PaginationRequest
	Unread bool `form:"unread"`
}

// NotificationResponse 管理端通知
type NotificationResponse struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	IsRead        bool      `json:"isRead"`
	RelatedUserID *string   `json:"relatedUserId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewNotificationResponse 由通知记录构造
func NewNotificationResponse(n *model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:            n.NotificationID,
		Type:          string(n.Type),
		Title:         n.Title,
		Content:       n.Content,
		IsRead:        n.IsRead,
		RelatedUserID: n.RelatedUserID,
		CreatedAt:     n.CreatedAt,
	}
}
