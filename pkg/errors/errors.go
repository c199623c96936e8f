package errors

import (
	"errors"
	"fmt"
)

// Kind 错误分类，与 HTTP 状态码一一对应
type Kind int

const (
	KindUnexpected Kind = iota
	KindUnauthenticated
	KindUnauthorized
	KindValidation
	KindNotFound
	KindConflict
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTransient:
		return "transient"
	default:
		return "unexpected"
	}
}

// AppError 带分类的业务错误
type AppError struct {
	Kind      Kind
	Code      string
	Message   string
	Retryable bool
	cause     error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// New 创建指定分类的错误
func New(kind Kind, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

// NewTransientStoreError 包装可重试的存储层错误
func NewTransientStoreError(cause error) *AppError {
	return &AppError{
		Kind:      KindTransient,
		Code:      "STORE_TRANSIENT",
		Message:   "存储层暂时不可用",
		Retryable: true,
		cause:     cause,
	}
}

// Wrap 以指定分类包装底层错误
func Wrap(kind Kind, code, message string, cause error) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message, cause: cause}
}

// KindOf 提取错误分类；非 AppError 一律视为 KindUnexpected
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr.Kind
	}
	return KindUnexpected
}
