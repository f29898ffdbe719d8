package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jbronzo/seat-saver/internal/dto"
	"github.com/jbronzo/seat-saver/internal/model"
	"github.com/jbronzo/seat-saver/internal/service"
	"github.com/jbronzo/seat-saver/internal/store"
	"github.com/jbronzo/seat-saver/pkg/response"
)

// LayoutHandler 布局模块 HTTP 处理器
type LayoutHandler struct {
	layoutSvc service.LayoutService
}

// NewLayoutHandler 创建 LayoutHandler
func NewLayoutHandler(layoutSvc service.LayoutService) *LayoutHandler {
	return &LayoutHandler{layoutSvc: layoutSvc}
}

// ListTables 获取全部桌子
// GET /api/v1/tables
func (h *LayoutHandler) ListTables(c *gin.Context) {
	response.OK(c, gin.H{"list": h.layoutSvc.Tables()})
}

// GetTable 获取桌子详情
// GET /api/v1/tables/:id
func (h *LayoutHandler) GetTable(c *gin.Context) {
	id := c.Param("id")
	tbl, err := h.layoutSvc.Table(id)
	if err != nil {
		h.handleLayoutError(c, err)
		return
	}
	response.OK(c, tbl)
}

// PlaceTable 在指定位置新增桌子
// POST /api/v1/tables
func (h *LayoutHandler) PlaceTable(c *gin.Context) {
	var req dto.PlaceTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	tbl, err := h.layoutSvc.PlaceTable(model.Point{X: *req.X, Y: *req.Y})
	if err != nil {
		h.handleLayoutError(c, err)
		return
	}
	response.Created(c, tbl)
}

// MoveTable 移动桌子
// PUT /api/v1/tables/:id/position
func (h *LayoutHandler) MoveTable(c *gin.Context) {
	id := c.Param("id")
	var req dto.MoveTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.layoutSvc.MoveTable(id, model.Point{X: *req.X, Y: *req.Y}); err != nil {
		h.handleLayoutError(c, err)
		return
	}
	tbl, err := h.layoutSvc.Table(id)
	if err != nil {
		h.handleLayoutError(c, err)
		return
	}
	response.OK(c, tbl)
}

// RemoveTable 删除桌子，在座宾客回到未入座状态
// DELETE /api/v1/tables/:id
func (h *LayoutHandler) RemoveTable(c *gin.Context) {
	id := c.Param("id")
	unassigned, err := h.layoutSvc.RemoveTable(id)
	if err != nil {
		h.handleLayoutError(c, err)
		return
	}
	response.OK(c, gin.H{"unassigned": unassigned})
}

// EditTableConfig 修改桌子配置
// PUT /api/v1/tables/:id/config
//
// 容量缩减导致在座超员时返回 409，data 里带超员宾客名单；
// 调用方确认后带 force=true 重试，超员宾客被移出座位
func (h *LayoutHandler) EditTableConfig(c *gin.Context) {
	id := c.Param("id")
	var req dto.TableConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	cfg := model.TableConfig{
		Shape:           model.TableShape(req.Shape),
		Size:            req.Size,
		Capacity:        req.Capacity,
		BackgroundColor: req.BackgroundColor,
	}

	if req.Force {
		unassigned, err := h.layoutSvc.EditTableConfigForced(id, cfg)
		if err != nil {
			h.handleLayoutError(c, err)
			return
		}
		response.OK(c, gin.H{"unassigned": unassigned})
		return
	}

	if err := h.layoutSvc.EditTableConfig(id, cfg); err != nil {
		h.handleLayoutError(c, err)
		return
	}
	response.OK(c, nil)
}

// SetTableLabel 修改桌标签，空串恢复默认
// PUT /api/v1/tables/:id/label
func (h *LayoutHandler) SetTableLabel(c *gin.Context) {
	id := c.Param("id")
	var req dto.SetLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.layoutSvc.SetTableLabel(id, req.Label); err != nil {
		h.handleLayoutError(c, err)
		return
	}
	response.OK(c, nil)
}

// GetNewTableConfig 获取暂存的新桌配置
// GET /api/v1/tables/new-config
func (h *LayoutHandler) GetNewTableConfig(c *gin.Context) {
	response.OK(c, h.layoutSvc.NewTableConfig())
}

// SetNewTableConfig 暂存新桌配置，后续新增的桌子沿用
// PUT /api/v1/tables/new-config
func (h *LayoutHandler) SetNewTableConfig(c *gin.Context) {
	var req dto.TableConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	h.layoutSvc.SetNewTableConfig(model.TableConfig{
		Shape:           model.TableShape(req.Shape),
		Size:            req.Size,
		Capacity:        req.Capacity,
		BackgroundColor: req.BackgroundColor,
	})
	response.OK(c, h.layoutSvc.NewTableConfig())
}

// GetSeatMap 获取一张桌子的座位图
// GET /api/v1/tables/:id/seats
func (h *LayoutHandler) GetSeatMap(c *gin.Context) {
	id := c.Param("id")
	sm, err := h.layoutSvc.SeatMap(id)
	if err != nil {
		h.handleLayoutError(c, err)
		return
	}
	response.OK(c, sm)
}

// ListSeatMaps 获取全部座位图
// GET /api/v1/layout/seats
func (h *LayoutHandler) ListSeatMaps(c *gin.Context) {
	response.OK(c, gin.H{"list": h.layoutSvc.SeatMaps()})
}

// GetDanceFloor 获取舞池状态
// GET /api/v1/layout/dance-floor
func (h *LayoutHandler) GetDanceFloor(c *gin.Context) {
	response.OK(c, h.layoutSvc.DanceFloor())
}

// MoveDanceFloor 移动舞池
// PUT /api/v1/layout/dance-floor/position
func (h *LayoutHandler) MoveDanceFloor(c *gin.Context) {
	var req dto.MoveDanceFloorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	h.layoutSvc.MoveDanceFloor(model.Point{X: *req.X, Y: *req.Y})
	response.OK(c, h.layoutSvc.DanceFloor())
}

// ResizeDanceFloor 增量缩放舞池，尺寸夹在合法区间内
// PUT /api/v1/layout/dance-floor/size
func (h *LayoutHandler) ResizeDanceFloor(c *gin.Context) {
	var req dto.ResizeDanceFloorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	size := h.layoutSvc.ResizeDanceFloor(req.DW, req.DH)
	response.OK(c, size)
}

// GetViewport 获取视口状态
// GET /api/v1/layout/viewport
func (h *LayoutHandler) GetViewport(c *gin.Context) {
	response.OK(c, h.layoutSvc.Viewport())
}

// SetViewport 更新视口，缩放夹在 0.2–3.0
// PUT /api/v1/layout/viewport
func (h *LayoutHandler) SetViewport(c *gin.Context) {
	var req dto.ViewportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	vp := h.layoutSvc.SetViewport(req.Zoom, model.Point{X: *req.PanX, Y: *req.PanY})
	response.OK(c, vp)
}

// ResetLayout 整场重置：布局回种子状态，名册清空
// POST /api/v1/layout/reset
func (h *LayoutHandler) ResetLayout(c *gin.Context) {
	h.layoutSvc.Reset()
	response.OK(c, nil)
}

// handleLayoutError 统一处理布局模块业务错误
func (h *LayoutHandler) handleLayoutError(c *gin.Context, err error) {
	var collision *store.CollisionError
	var conflict *store.CapacityConflictError
	switch {
	case errors.Is(err, store.ErrTableNotFound):
		response.NotFound(c, 12001, "桌子不存在")
	case errors.As(err, &collision):
		response.ErrorWithData(c, http.StatusConflict, 12002, "位置与其他对象过近", gin.H{
			"position": collision.Position,
		})
	case errors.As(err, &conflict):
		response.ErrorWithData(c, http.StatusConflict, 12003, "新容量小于在座人数", gin.H{
			"excessGuests": conflict.ExcessGuests,
			"newCapacity":  conflict.NewCapacity,
		})
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/layout_handler.go
