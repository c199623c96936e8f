package errors

import (
	"context"
	"errors"
	"time"

	"github.com/getsentry/sentry-go"
)

// Reporter 将非预期错误上报至 Sentry；未配置 DSN 时为空操作
type Reporter struct {
	enabled bool
}

// NewReporter 初始化 Sentry 客户端，dsn 为空时返回禁用的 Reporter
func NewReporter(dsn, environment string) (*Reporter, error) {
	if dsn == "" {
		return &Reporter{}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	}); err != nil {
		return nil, err
	}
	return &Reporter{enabled: true}, nil
}

// Enabled 是否已启用上报
func (r *Reporter) Enabled() bool {
	return r != nil && r.enabled
}

// Capture 上报错误，tags 作为 Sentry 标签附加
func (r *Reporter) Capture(_ context.Context, err error, tags map[string]string) {
	if !r.Enabled() || err == nil {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		var appErr *AppError
		if errors.As(err, &appErr) && appErr != nil {
			scope.SetTag("kind", appErr.Kind.String())
			if appErr.Code != "" {
				scope.SetTag("code", appErr.Code)
			}
		}
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}

// Flush 进程退出前等待事件发送
func (r *Reporter) Flush(timeout time.Duration) {
	if r.Enabled() {
		sentry.Flush(timeout)
	}
}
