package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"omninet-lottery/backend/config"
	"omninet-lottery/backend/internal/dto"
	"omninet-lottery/backend/internal/identity"
	"omninet-lottery/backend/internal/service"
	"omninet-lottery/backend/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	*base
	authSvc service.AuthService
	cookie  config.CookieConfig
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(b *base, authSvc service.AuthService, cfg *config.AuthConfig) *AuthHandler {
	return &AuthHandler{base: b, authSvc: authSvc, cookie: cfg.Cookie}
}

// Signup 注册
// POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.authSvc.Signup(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailExists):
			response.Conflict(c, err.Error())
		case errors.Is(err, service.ErrReferralCodeNotFound):
			response.BadRequest(c, err.Error())
		default:
			h.internalError(c, "auth.signup", err)
		}
		return
	}

	response.Created(c, gin.H{"user": dto.NewUserResponse(user)})
}

// Login 登录，Token 同时写入 Cookie 与响应体
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, err.Error())
		case errors.Is(err, service.ErrAccountBlocked):
			response.Forbidden(c, err.Error())
		default:
			h.internalError(c, "auth.login", err)
		}
		return
	}

	h.setSessionCookie(c, result.Token, time.Until(result.ExpiresAt))
	response.OK(c, gin.H{
		"token":     result.Token,
		"expiresAt": result.ExpiresAt,
		"user":      result.User,
	})
}

// Logout 注销当前会话
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	id, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), id); err != nil {
		h.internalError(c, "auth.logout", err)
		return
	}

	h.setSessionCookie(c, "", -time.Second)
	response.OKMessage(c, "Logged out", nil)
}

// Me 当前身份（以数据库最新记录为准）
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	response.OK(c, gin.H{"user": dto.NewIdentityResponse(id)})
}

// setSessionCookie ttl <= 0 时删除 Cookie
func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, ttl time.Duration) {
	maxAge := int(ttl.Seconds())
	if ttl <= 0 {
		maxAge = -1
	}
	c.SetSameSite(sameSite(h.cookie.SameSite))
	c.SetCookie(identity.CookieName, token, maxAge, "/", h.cookie.Domain, h.cookie.Secure, true)
}

func sameSite(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
