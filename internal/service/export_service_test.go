package service

import (
	"context"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"omninet-lottery/backend/internal/model"
)

func TestExportService_ExportUsers(t *testing.T) {
	m := newMemStore()
	a := m.addUser(&model.User{Name: "Alice", Email: "alice@example.com", NewsletterSubscribed: true})
	m.addUser(&model.User{Name: "Bob", Email: "bob@example.com", IsBlocked: true})
	m.addTickets(a.UserID, 2, false)

	svc := NewExportService(newTestStore(m))
	buf, filename, err := svc.ExportUsers(context.Background())
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("期望 .xlsx 文件名，实际 %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("无法解析导出文件: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Users")
	if err != nil {
		t.Fatalf("读取 Sheet 失败: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("期望 1 行表头 + 2 行数据，实际 %d", len(rows))
	}
	if rows[0][0] != "ID" {
		t.Errorf("表头错误: %v", rows[0])
	}
	// 倒序：Bob 在前
	if rows[1][1] != "Bob" || rows[1][4] != "yes" {
		t.Errorf("Bob 行错误: %v", rows[1])
	}
	if rows[2][1] != "Alice" || rows[2][5] != "yes" || rows[2][6] != "2" {
		t.Errorf("Alice 行错误: %v", rows[2])
	}
}
