package dto

// ── 布局模块 DTO ──

// PlaceTableRequest 新增桌子请求
// 坐标用指针承载：0 是合法值，缺字段要报 400
type PlaceTableRequest struct {
	X *float64 `json:"x" binding:"required"`
	Y *float64 `json:"y" binding:"required"`
}

// MoveTableRequest 移动桌子请求
type MoveTableRequest struct {
	X *float64 `json:"x" binding:"required"`
	Y *float64 `json:"y" binding:"required"`
}

// TableConfigRequest 桌子配置请求（编辑现有桌 / 暂存新桌配置共用）
// 越界值由归一化收敛，不在绑定层拒绝
type TableConfigRequest struct {
	Shape           string  `json:"shape"`
	Size            float64 `json:"size"`
	Capacity        int     `json:"capacity"`
	BackgroundColor string  `json:"backgroundColor"`
	// Force 为 true 时确认容量缩减：超员宾客先被移出座位
	Force bool `json:"force"`
}

// SetLabelRequest 修改桌标签请求，空串表示恢复默认标签
type SetLabelRequest struct {
	Label string `json:"label"`
}

// MoveDanceFloorRequest 移动舞池请求
type MoveDanceFloorRequest struct {
	X *float64 `json:"x" binding:"required"`
	Y *float64 `json:"y" binding:"required"`
}

// ResizeDanceFloorRequest 舞池增量缩放请求
type ResizeDanceFloorRequest struct {
	DW float64 `json:"dw"`
	DH float64 `json:"dh"`
}

// ViewportRequest 视口请求
type ViewportRequest struct {
	Zoom float64  `json:"zoom" binding:"required"`
	PanX *float64 `json:"panX" binding:"required"`
	PanY *float64 `json:"panY" binding:"required"`
}
