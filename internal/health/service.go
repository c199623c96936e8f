// Package health 维护存储层健康状态缓存
// 状态只作为响应头提示，不参与任何业务判定
package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	StatusOK       = "OK"
	StatusDown     = "DOWN"
	defaultTimeout = 3 * time.Second
)

// Snapshot 某一时刻的健康状态
type Snapshot struct {
	Healthy    bool              `json:"healthy"`
	Components map[string]string `json:"components"`
	LastCheck  time.Time         `json:"lastCheck"`
}

// Service 健康检查服务，由进程显式创建并注入请求上下文
type Service struct {
	logger   *zap.Logger
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time

	mu         sync.Mutex
	checks     map[string]Checkable
	lastCheck  time.Time
	healthy    bool
	components map[string]string
	needsCheck bool
}

// NewService 创建健康检查服务，interval 为缓存刷新周期
func NewService(interval time.Duration, logger *zap.Logger) *Service {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Service{
		logger:     logger,
		interval:   interval,
		timeout:    defaultTimeout,
		now:        time.Now,
		checks:     make(map[string]Checkable),
		healthy:    true,
		components: map[string]string{},
		needsCheck: true,
	}
}

// AddCheck 注册组件检查
func (s *Service) AddCheck(name string, check Checkable) {
	if name == "" || check == nil {
		return
	}
	s.mu.Lock()
	s.checks[name] = check
	s.needsCheck = true
	s.mu.Unlock()
}

// MarkNeedsCheck 标记下一次读取时强制刷新（发生内部错误后调用）
func (s *Service) MarkNeedsCheck() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.needsCheck = true
	s.mu.Unlock()
}

// Cached 返回缓存状态，不触发检查
func (s *Service) Cached() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Status 返回健康状态，缓存过期或被标记时先执行检查
func (s *Service) Status(ctx context.Context) Snapshot {
	s.mu.Lock()
	stale := s.needsCheck || s.now().Sub(s.lastCheck) >= s.interval
	if !stale {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap
	}
	checks := make(map[string]Checkable, len(s.checks))
	for name, c := range s.checks {
		checks[name] = c
	}
	s.mu.Unlock()

	components, healthy := s.run(ctx, checks)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.components = components
	s.healthy = healthy
	s.lastCheck = s.now()
	s.needsCheck = false
	return s.snapshotLocked()
}

func (s *Service) run(ctx context.Context, checks map[string]Checkable) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	results := make(map[string]string, len(checks))
	healthy := true
	for name, check := range checks {
		if err := check.HealthCheck(ctx); err != nil {
			// 错误详情只进日志，快照对外公开
			results[name] = StatusDown
			healthy = false
			s.logger.Warn("健康检查失败", zap.String("component", name), zap.Error(err))
			continue
		}
		results[name] = StatusOK
	}
	return results, healthy
}

func (s *Service) snapshotLocked() Snapshot {
	components := make(map[string]string, len(s.components))
	for k, v := range s.components {
		components[k] = v
	}
	return Snapshot{
		Healthy:    s.healthy,
		Components: components,
		LastCheck:  s.lastCheck,
	}
}

type ctxKey struct{}

// WithService 将服务注入 context
func WithService(ctx context.Context, s *Service) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext 从 context 读取服务，未注入时返回 nil
func FromContext(ctx context.Context) *Service {
	s, _ := ctx.Value(ctxKey{}).(*Service)
	return s
}
