package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"omninet-lottery/backend/config"
	"omninet-lottery/backend/internal/api/handler"
	"omninet-lottery/backend/internal/api/middleware"
	"omninet-lottery/backend/internal/api/router"
	"omninet-lottery/backend/internal/health"
	"omninet-lottery/backend/internal/identity"
	"omninet-lottery/backend/internal/repository"
	"omninet-lottery/backend/internal/service"
	"omninet-lottery/backend/pkg/database"
	pkgerrors "omninet-lottery/backend/pkg/errors"
	"omninet-lottery/backend/pkg/jwt"
	applogger "omninet-lottery/backend/pkg/logger"
	"omninet-lottery/backend/pkg/redis"
	"omninet-lottery/backend/pkg/validate"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	flag.Parse()

	// 1. 加载配置（配置文件变更时热更新日志级别）
	levelCh := make(chan string, 1)
	cfg, err := config.LoadWatched(*configPath, func(next *config.Config) {
		select {
		case levelCh <- next.Log.Level:
		default:
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, atom, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	go func() {
		for lvl := range levelCh {
			if err := applogger.SetLevel(atom, lvl); err != nil {
				logger.Warn("日志级别热更新失败", zap.Error(err))
				continue
			}
			logger.Info("日志级别已更新", zap.String("level", lvl))
		}
	}()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 错误上报
	reporter, err := pkgerrors.NewReporter(cfg.Sentry.DSN, cfg.Sentry.Environment)
	if err != nil {
		logger.Warn("Sentry 初始化失败，错误上报已禁用", zap.Error(err))
		reporter, _ = pkgerrors.NewReporter("", "")
	}
	defer reporter.Flush(2 * time.Second)

	// 4. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	// 4.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 5. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	healthSvc := health.NewService(cfg.Health.RefreshInterval, logger)
	healthSvc.AddCheck("database", health.NewDBChecker(sqlDB))

	var (
		blacklist service.TokenBlacklist
		revoked   identity.Blacklist
		limiter   middleware.RateLimiter
	)
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单与限流将不可用", zap.Error(err))
	} else {
		blacklist, revoked, limiter = rdb, rdb, rdb
		healthSvc.AddCheck("redis", rdb)
	}

	// 6. 注册自定义校验标签
	if err := validate.RegisterGinValidators(); err != nil {
		logger.Fatal("注册校验器失败", zap.Error(err))
	}

	// 7. 依赖注入: Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, blacklist, logger)
	h := handler.NewHandler(cfg, svc, healthSvc, reporter, logger)

	// 8. 初始化路由
	engine := router.Setup(cfg, h, router.Deps{
		Sessions:  identity.NewStoreResolver(jwtMgr, repo.User, revoked, service.RetryPolicyFromConfig(&cfg.Retry), logger),
		Snapshots: identity.NewTokenResolver(jwtMgr),
		Limiter:   limiter,
		Health:    healthSvc,
	}, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	if err := sqlDB.Close(); err != nil {
		logger.Warn("关闭数据库连接失败", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
