package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"omninet-lottery/backend/internal/dto"
	"omninet-lottery/backend/internal/service"
	"omninet-lottery/backend/pkg/response"
)

// WinnerHandler 中奖模块 HTTP 处理器（管理端）
type WinnerHandler struct {
	*base
	winnerSvc service.WinnerService
}

// NewWinnerHandler 创建 WinnerHandler
func NewWinnerHandler(b *base, winnerSvc service.WinnerService) *WinnerHandler {
	return &WinnerHandler{base: b, winnerSvc: winnerSvc}
}

// Record 登记中奖用户
// POST /api/admin/winners
func (h *WinnerHandler) Record(c *gin.Context) {
	var req dto.RecordWinnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "userId is required")
		return
	}

	winner, err := h.winnerSvc.Record(c.Request.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		h.internalError(c, "winner.record", err)
		return
	}
	response.Created(c, gin.H{"winner": dto.NewWinnerResponse(winner)})
}

// List 中奖列表，可按 claimed 过滤
// GET /api/admin/winners?claimed=
func (h *WinnerHandler) List(c *gin.Context) {
	var req dto.WinnerListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query")
		return
	}

	winners, total, err := h.winnerSvc.List(c.Request.Context(), req.Claimed, req.GetOffset(), req.GetPageSize())
	if err != nil {
		h.internalError(c, "winner.list", err)
		return
	}

	items := make([]dto.WinnerResponse, 0, len(winners))
	for i := range winners {
		items = append(items, dto.NewWinnerResponse(&winners[i]))
	}
	response.OK(c, gin.H{
		"winners":    items,
		"total":      total,
		"pagination": response.NewPagination(total, req.GetPage(), req.GetPageSize()),
	})
}

// Claim 标记单条中奖为已领取
// POST /api/admin/winners/:winnerId/claim
func (h *WinnerHandler) Claim(c *gin.Context) {
	winnerID, ok := pathUUID(c, "winnerId", service.ErrWinnerNotFound.Error())
	if !ok {
		return
	}

	changed, err := h.winnerSvc.Claim(c.Request.Context(), winnerID)
	if err != nil {
		if errors.Is(err, service.ErrWinnerNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		h.internalError(c, "winner.claim", err)
		return
	}
	if !changed {
		response.NoOp(c, "Already claimed")
		return
	}
	response.OKMessage(c, "Winner claimed", nil)
}

// ClaimAll 将全部未领取记录标记为已领取
// POST /api/admin/winners/claim-all
func (h *WinnerHandler) ClaimAll(c *gin.Context) {
	n, err := h.winnerSvc.ClaimAll(c.Request.Context())
	if err != nil {
		h.internalError(c, "winner.claim_all", err)
		return
	}
	response.OK(c, gin.H{"claimed": n})
}
