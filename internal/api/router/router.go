package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"omninet-lottery/backend/config"
	"omninet-lottery/backend/internal/api/handler"
	"omninet-lottery/backend/internal/api/middleware"
	"omninet-lottery/backend/internal/health"
	"omninet-lottery/backend/internal/identity"
)

// Deps 路由装配所需的外部依赖
type Deps struct {
	// Sessions 完整运行时的身份解析（读取数据库最新记录）
	Sessions identity.Resolver
	// Snapshots 受限运行时的身份解析（仅解码 Token）
	Snapshots identity.Resolver
	// Limiter 为 nil 时不限流
	Limiter middleware.RateLimiter
	Health  *health.Service
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, deps Deps, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimitBytes))
	r.Use(middleware.HealthHint(deps.Health))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
	}
	r.Use(middleware.Logger(logger))

	// ── 健康检查 / 指标 ──
	r.GET("/health", h.System.Health)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// ── 受限运行时：仅 Token 快照 ──
	edge := r.Group("/edge")
	edge.Use(middleware.Authenticate(deps.Snapshots, logger))
	{
		edge.GET("/session", h.Edge.Session)
		edge.GET("/admin-gate", h.Edge.AdminGate)
	}

	// ── API ──
	api := r.Group("/api")
	api.Use(middleware.Authenticate(deps.Sessions, logger))
	{
		authLimit := middleware.RateLimit(deps.Limiter, cfg.RateLimit.AuthLimit, cfg.RateLimit.AuthWindow)

		// 认证模块（无需认证）
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authLimit, h.Auth.Signup)
			auth.POST("/login", authLimit, h.Auth.Login)
		}

		// 需要认证的路由
		authorized := api.Group("")
		authorized.Use(middleware.RequireAuth())
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 订阅模块
			newsletter := authorized.Group("/newsletter")
			{
				newsletter.POST("/subscribe", h.Newsletter.Subscribe)
				newsletter.POST("/unsubscribe", h.Newsletter.Unsubscribe)
			}

			// 推荐模块
			referrals := authorized.Group("/referrals")
			{
				referrals.GET("", h.Referral.ListReferrals)
				referrals.GET("/code", h.Referral.GetCode)
				referrals.PUT("/code", h.Referral.SetCode)
			}

			// 当前用户
			me := authorized.Group("/user")
			{
				me.GET("/tickets", h.User.Tickets)
				me.POST("/dismiss-winner", h.User.DismissWinner)
			}

			// 用户查询（本人或管理员，Handler 内鉴权）
			users := authorized.Group("/users")
			{
				users.GET("/by-email", h.User.GetUserByEmail)
				users.GET("/:id", h.User.GetUser)
			}
		}

		// 管理端
		admin := api.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/check", h.Admin.Check)
			admin.GET("/counts", h.Admin.Counts)
			admin.GET("/users", h.Admin.ListUsers)
			admin.GET("/users/export", h.Export.ExportUsers)
			admin.DELETE("/user/:userId", h.Admin.DeleteUser)
			admin.POST("/user/block/:userId", h.Admin.BlockUser)
			admin.POST("/user/:userId/tickets", h.Admin.GrantTickets)

			admin.GET("/winners", h.Winner.List)
			admin.POST("/winners", h.Winner.Record)
			admin.POST("/winners/claim-all", h.Winner.ClaimAll)
			admin.POST("/winners/:winnerId/claim", h.Winner.Claim)

			admin.GET("/notifications", h.Notification.List)
			admin.POST("/notifications/read-all", h.Notification.MarkAllRead)
		}

		// 诊断接口（默认关闭）
		if cfg.Feature.DebugEndpoints {
			api.GET("/debug/store", middleware.RequireAdmin(), h.System.DebugStore)
		}
	}

	return r
}
