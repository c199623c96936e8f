package dto

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// ── 认证模块 DTO ──

// SignupRequest 注册请求
type SignupRequest struct {
	Name         string `json:"name"         binding:"required,min=2,max=100"`
	Email        string `json:"email"        binding:"required,email,max=255"`
	Password     string `json:"password"     binding:"required,min=8,max=72"`
	ReferralCode string `json:"referralCode" binding:"omitempty,referralcode"`
}

// Validate 二次校验（binding 之后调用）
func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 72)),
	)
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse 登录响应载荷
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}
