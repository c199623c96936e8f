package health

import (
	"context"
	"database/sql"
)

// Checkable 可报告自身健康状态的组件
type Checkable interface {
	HealthCheck(ctx context.Context) error
}

// DBChecker 数据库连通性检查
type DBChecker struct {
	db *sql.DB
}

// NewDBChecker 创建 DBChecker
func NewDBChecker(db *sql.DB) *DBChecker {
	return &DBChecker{db: db}
}

func (c *DBChecker) HealthCheck(ctx context.Context) error {
	if c == nil || c.db == nil {
		return sql.ErrConnDone
	}
	return c.db.PingContext(ctx)
}

// CheckFunc 函数适配器
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) HealthCheck(ctx context.Context) error { return f(ctx) }
