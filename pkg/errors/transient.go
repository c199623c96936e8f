package errors

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// IsTransient 判断错误是否属于可重试的瞬时故障
//   - 标记为 Retryable 的 AppError
//   - PostgreSQL 连接异常（08 类）、序列化失败、死锁、管理员关闭连接
//   - driver.ErrBadConn、网络超时
//
// context 取消或超时不可重试
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr.Retryable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgerrcode.IsConnectionException(pgErr.Code):
			return true
		case pgErr.Code == pgerrcode.SerializationFailure,
			pgErr.Code == pgerrcode.DeadlockDetected,
			pgErr.Code == pgerrcode.AdminShutdown,
			pgErr.Code == pgerrcode.CannotConnectNow:
			return true
		}
		return false
	}

	if pgconn.SafeToRetry(err) {
		return true
	}

	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}

// IsUniqueViolation 判断是否为唯一约束冲突，constraint 非空时同时匹配约束名
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
