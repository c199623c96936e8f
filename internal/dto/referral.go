package dto

import (
	"time"

	"omninet-lottery/backend/internal/model"
)

// ── 推荐模块 DTO ──

// SetReferralCodeRequest 自定义推荐码请求
type SetReferralCodeRequest struct {
	Code string `json:"code" binding:"required,referralcode"`
}

// ReferralResponse 被推荐用户
type ReferralResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewReferralResponse 由用户记录构造
func NewReferralResponse(u *model.User) ReferralResponse {
	return ReferralResponse{
		ID:        u.UserID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
