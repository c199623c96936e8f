package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"omninet-lottery/backend/internal/service"
	"omninet-lottery/backend/pkg/response"
)

// NewsletterHandler 订阅模块 HTTP 处理器
type NewsletterHandler struct {
	*base
	newsletterSvc service.NewsletterService
}

// NewNewsletterHandler 创建 NewsletterHandler
func NewNewsletterHandler(b *base, newsletterSvc service.NewsletterService) *NewsletterHandler {
	return &NewsletterHandler{base: b, newsletterSvc: newsletterSvc}
}

// Subscribe 订阅
// POST /api/newsletter/subscribe
func (h *NewsletterHandler) Subscribe(c *gin.Context) {
	id, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	changed, err := h.newsletterSvc.Subscribe(c.Request.Context(), id.ID)
	if err != nil {
		h.handleError(c, "newsletter.subscribe", err)
		return
	}
	if !changed {
		response.NoOp(c, "Already subscribed")
		return
	}
	response.OKMessage(c, "Subscribed to newsletter", nil)
}

// Unsubscribe 取消订阅
// POST /api/newsletter/unsubscribe
func (h *NewsletterHandler) Unsubscribe(c *gin.Context) {
	id, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	changed, err := h.newsletterSvc.Unsubscribe(c.Request.Context(), id.ID)
	if err != nil {
		h.handleError(c, "newsletter.unsubscribe", err)
		return
	}
	if !changed {
		response.NoOp(c, "Already unsubscribed")
		return
	}
	response.OKMessage(c, "Unsubscribed from newsletter", nil)
}

func (h *NewsletterHandler) handleError(c *gin.Context, op string, err error) {
	if errors.Is(err, service.ErrUserNotFound) {
		response.NotFound(c, err.Error())
		return
	}
	h.internalError(c, op, err)
}
