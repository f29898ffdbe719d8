package dto

// ── 宾客模块 DTO ──

// AddGuestRequest 新增宾客请求
type AddGuestRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=100"`
	Group string `json:"group"`
}

// SetGuestGroupRequest 修改宾客分组请求
type SetGuestGroupRequest struct {
	Group string `json:"group"`
}

// AssignGuestRequest 宾客入座请求
type AssignGuestRequest struct {
	Table string `json:"table" binding:"required"`
}

// DropGuestRequest 拖放入座请求，按落点吸附最近的桌
type DropGuestRequest struct {
	X *float64 `json:"x" binding:"required"`
	Y *float64 `json:"y" binding:"required"`
}

// CreateAndAssignRequest 在桌上直接建宾客并入座的请求
type CreateAndAssignRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// ── 交互模块 DTO ──

// BeginDragRequest 开始拖拽请求，Subject 为桌号或宾客名
type BeginDragRequest struct {
	Subject string `json:"subject" binding:"required"`
}

// BeginConfirmationRequest 进入确认态请求
type BeginConfirmationRequest struct {
	Action string `json:"action" binding:"required"`
}
