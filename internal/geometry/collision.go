package geometry

import (
	"math"

	"github.com/jbronzo/seat-saver/internal/model"
)

// CanPlace 判断候选位置是否可放置桌子
//
// 仅做圆心距判定：与任一其他桌子或舞池中心距离 < 120 即拒绝。
// excludeID 用于桌子自身移动时跳过与旧位置的比较。
//
// 已知简化：不感知桌型与尺寸，极端 size 下两桌仍可能视觉重叠。
// 既有存档的合法性依赖这一宽松判定，不得擅自升级为精确碰撞。
func CanPlace(candidate model.Point, tables map[string]model.Point, danceFloor model.Point, excludeID string) bool {
	for id, pos := range tables {
		if id == excludeID {
			continue
		}
		if distance(candidate, pos) < model.CollisionDistance {
			return false
		}
	}
	if distance(candidate, danceFloor) < model.CollisionDistance {
		return false
	}
	return true
}

// NearestTable 返回距离 (x,y) 最近且在 maxDistance 范围内的桌子 ID
// 找不到时返回空串。用于把画布落点换算成目标桌
func NearestTable(p model.Point, tables map[string]model.Point, maxDistance float64) string {
	nearest := ""
	minDist := math.Inf(1)
	for id, pos := range tables {
		d := distance(p, pos)
		if d < maxDistance && d < minDist {
			minDist = d
			nearest = id
		}
	}
	return nearest
}

func distance(a, b model.Point) float64 {
	return math.Sqrt(math.Pow(a.X-b.X, 2) + math.Pow(a.Y-b.Y, 2))
}
