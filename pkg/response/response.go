package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 统一响应结构：
//
//	成功        {success:true, message?, ...payload}
//	已处于目标态 {success:false, message}（HTTP 200）
//	失败        {success:false, error}

const (
	MsgUnauthenticated = "Not authenticated"
	MsgForbidden       = "Forbidden"
	MsgInternal        = "Internal server error"
)

// Pagination 分页元数据
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPagination 计算分页元数据
func NewPagination(total int64, page, pageSize int) Pagination {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(total) / pageSize
		if int(total)%pageSize > 0 {
			totalPages++
		}
	}
	return Pagination{Page: page, PageSize: pageSize, Total: total, TotalPages: totalPages}
}

func envelope(success bool, payload gin.H) gin.H {
	body := gin.H{}
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = success
	return body
}

// ── 成功响应 ──

// OK 200 成功响应，payload 字段平铺到顶层
func OK(c *gin.Context, payload gin.H) {
	c.JSON(http.StatusOK, envelope(true, payload))
}

// OKMessage 200 成功响应，附带提示信息
func OKMessage(c *gin.Context, message string, payload gin.H) {
	body := envelope(true, payload)
	body["message"] = message
	c.JSON(http.StatusOK, body)
}

// Created 201 创建成功
func Created(c *gin.Context, payload gin.H) {
	c.JSON(http.StatusCreated, envelope(true, payload))
}

// NoOp 200 请求合法但状态未变化（如重复订阅）
func NoOp(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"success": false, "message": message})
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, gin.H{"success": false, "error": message})
}

// BadRequest 400
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, MsgUnauthenticated)
}

// Forbidden 403
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = MsgForbidden
	}
	Error(c, http.StatusForbidden, message)
}

// NotFound 404
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// Conflict 409
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

// InternalError 500，不向调用方暴露内部细节
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, MsgInternal)
}

// DebugError 500，仅供显式标记的调试接口使用，回显底层错误
func DebugError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   err.Error(),
		"debug":   true,
	})
}
