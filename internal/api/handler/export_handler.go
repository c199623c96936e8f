package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"omninet-lottery/backend/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	*base
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(b *base, exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{base: b, exportSvc: exportSvc}
}

// ExportUsers 导出用户列表
// GET /api/admin/users/export
func (h *ExportHandler) ExportUsers(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportUsers(c.Request.Context())
	if err != nil {
		h.internalError(c, "export.users", err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
