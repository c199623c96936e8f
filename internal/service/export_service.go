package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"omninet-lottery/backend/internal/model"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("failed to generate export file")

// exportPageSize 导出时分批读取用户的批大小
const exportPageSize = 500

// ExportService 导出业务接口
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportUsers 导出全部用户为 Excel，返回内容与建议文件名
	ExportUsers(ctx context.Context) (*bytes.Buffer, string, error)
}

type exportService struct {
	*store
	now func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(st *store) ExportService {
	return &exportService{store: st, now: time.Now}
}

var userExportHeaders = []string{"ID", "Name", "Email", "Role", "Blocked", "Newsletter", "Tickets", "Has Won", "Created"}

func (s *exportService) ExportUsers(ctx context.Context) (*bytes.Buffer, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Users"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 38)
	f.SetColWidth(sheetName, "B", "C", 28)
	f.SetColWidth(sheetName, "D", "H", 12)
	f.SetColWidth(sheetName, "I", "I", 22)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 表头
	for i, h := range userExportHeaders {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(userExportHeaders)-1), 1), headerStyle)

	// 数据行
	row := 2
	for offset := 0; ; offset += exportPageSize {
		users, total, err := s.page(ctx, offset)
		if err != nil {
			return nil, "", err
		}
		for _, u := range users {
			values := []interface{}{
				u.UserID,
				u.Name,
				u.Email,
				string(u.Role),
				yesNo(u.IsBlocked),
				yesNo(u.NewsletterSubscribed),
				u.TicketCount,
				yesNo(u.HasWon),
				u.CreatedAt.UTC().Format(time.RFC3339),
			}
			for i, v := range values {
				f.SetCellValue(sheetName, cell(colName(i), row), v)
			}
			row++
		}
		if len(users) < exportPageSize || int64(offset+len(users)) >= total {
			break
		}
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("users_%s.xlsx", s.now().UTC().Format("20060102"))
	return buf, filename, nil
}

func (s *exportService) page(ctx context.Context, offset int) ([]model.UserWithTicketCount, int64, error) {
	var (
		rows  []model.UserWithTicketCount
		total int64
	)
	err := s.do(ctx, "user.list", func(ctx context.Context) error {
		var err error
		rows, total, err = s.repo.User.ListWithTicketCounts(ctx, offset, exportPageSize)
		return err
	})
	if err != nil {
		s.logger.Error("导出读取用户失败", zap.Int("offset", offset), zap.Error(err))
	}
	return rows, total, err
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
