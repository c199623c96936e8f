package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"omninet-lottery/backend/internal/dto"
	"omninet-lottery/backend/internal/service"
	"omninet-lottery/backend/pkg/response"
)

// ReferralHandler 推荐码模块 HTTP 处理器
type ReferralHandler struct {
	*base
	referralSvc service.ReferralService
}

// NewReferralHandler 创建 ReferralHandler
func NewReferralHandler(b *base, referralSvc service.ReferralService) *ReferralHandler {
	return &ReferralHandler{base: b, referralSvc: referralSvc}
}

// GetCode 获取（首次时生成）推荐码
// GET /api/referrals/code
func (h *ReferralHandler) GetCode(c *gin.Context) {
	id, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	code, err := h.referralSvc.GetOrCreateCode(c.Request.Context(), id.ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		h.internalError(c, "referral.get_code", err)
		return
	}
	response.OK(c, gin.H{"referralCode": code})
}

// SetCode 自定义推荐码
// PUT /api/referrals/code
func (h *ReferralHandler) SetCode(c *gin.Context) {
	id, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	var req dto.SetReferralCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, service.ErrInvalidReferralCode.Error())
		return
	}

	code, err := h.referralSvc.SetCustomCode(c.Request.Context(), id.ID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidReferralCode):
			response.BadRequest(c, err.Error())
		case errors.Is(err, service.ErrReferralCodeTaken),
			errors.Is(err, service.ErrReferralCodeAlreadyCustom),
			errors.Is(err, service.ErrReferralCodeIssued):
			response.Conflict(c, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, err.Error())
		default:
			h.internalError(c, "referral.set_code", err)
		}
		return
	}
	response.OK(c, gin.H{"referralCode": code})
}

// ListReferrals 当前用户推荐的用户
// GET /api/referrals
func (h *ReferralHandler) ListReferrals(c *gin.Context) {
	id, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	users, err := h.referralSvc.ListReferrals(c.Request.Context(), id.ID)
	if err != nil {
		h.internalError(c, "referral.list", err)
		return
	}

	referrals := make([]dto.ReferralResponse, 0, len(users))
	for i := range users {
		referrals = append(referrals, dto.NewReferralResponse(&users[i]))
	}
	response.OK(c, gin.H{"referrals": referrals, "total": len(referrals)})
}
