package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"omninet-lottery/backend/config"
	"omninet-lottery/backend/internal/api/middleware"
	"omninet-lottery/backend/internal/health"
	"omninet-lottery/backend/internal/service"
	pkgerrors "omninet-lottery/backend/pkg/errors"
	"omninet-lottery/backend/pkg/response"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Admin        *AdminHandler
	Newsletter   *NewsletterHandler
	Referral     *ReferralHandler
	Winner       *WinnerHandler
	Notification *NotificationHandler
	Export       *ExportHandler
	Edge         *EdgeHandler
	System       *SystemHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service, healthSvc *health.Service, reporter *pkgerrors.Reporter, logger *zap.Logger) *Handler {
	b := &base{logger: logger, reporter: reporter}
	return &Handler{
		Auth:         NewAuthHandler(b, svc.Auth, &cfg.Auth),
		User:         NewUserHandler(b, svc.User),
		Admin:        NewAdminHandler(b, svc.Admin),
		Newsletter:   NewNewsletterHandler(b, svc.Newsletter),
		Referral:     NewReferralHandler(b, svc.Referral),
		Winner:       NewWinnerHandler(b, svc.Winner),
		Notification: NewNotificationHandler(b, svc.Notification),
		Export:       NewExportHandler(b, svc.Export),
		Edge:         NewEdgeHandler(),
		System:       NewSystemHandler(b, svc.Admin, healthSvc),
	}
}

// base 各 Handler 共享的错误出口
type base struct {
	logger   *zap.Logger
	reporter *pkgerrors.Reporter
}

// internalError 记录并上报非预期错误，调用方只看到通用提示
// 同时提示健康检查服务在下次查询时重新探测存储
func (b *base) internalError(c *gin.Context, op string, err error) {
	rid := middleware.RequestIDFrom(c)
	b.logger.Error("请求内部错误",
		zap.String("op", op),
		zap.String("request_id", rid),
		zap.String("route", c.FullPath()),
		zap.Error(err),
	)
	b.reporter.Capture(c.Request.Context(), err, map[string]string{
		"op":         op,
		"request_id": rid,
	})
	health.FromContext(c.Request.Context()).MarkNeedsCheck()
	response.InternalError(c)
}
