package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jbronzo/seat-saver/internal/dto"
	"github.com/jbronzo/seat-saver/internal/model"
	"github.com/jbronzo/seat-saver/internal/persistence"
	"github.com/jbronzo/seat-saver/internal/service"
	"github.com/jbronzo/seat-saver/internal/store"
	"github.com/jbronzo/seat-saver/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// 测试辅助
// ═══════════════════════════════════════════════════════════
//
// 服务直接建在内存 store 之上，不需要 mock

type testEnv struct {
	layout      *store.LayoutStore
	assignments *store.AssignmentStore
	handler     *Handler
}

func setupEnv() *testEnv {
	logger := zap.NewNop()
	layout := store.NewLayoutStore(logger)
	assignments := store.NewAssignmentStore(layout, logger)
	layout.SetOccupantSource(assignments)
	machine := store.NewInteractionMachine()
	manager := persistence.NewManager(layout, assignments, persistence.NewMemoryPort(), logger)
	svc := service.New(layout, assignments, machine, manager, service.NopPauser(), logger)
	return &testEnv{
		layout:      layout,
		assignments: assignments,
		handler:     NewHandler(svc),
	}
}

func jsonBody(v interface{}) *bytes.Reader {
	data, _ := json.Marshal(v)
	return bytes.NewReader(data)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func serve(r *gin.Engine, method, path string, body *bytes.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, body)
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	r.ServeHTTP(w, req)
	return w
}

func f64(v float64) *float64 { return &v }

// ═══════════════════════════════════════════════════════════
// LayoutHandler 测试
// ═══════════════════════════════════════════════════════════

func TestLayoutHandler_PlaceTable_Success(t *testing.T) {
	env := setupEnv()
	r := gin.New()
	r.POST("/tables", env.handler.Layout.PlaceTable)

	w := serve(r, "POST", "/tables", jsonBody(dto.PlaceTableRequest{X: f64(900), Y: f64(500)}))
	if w.Code != http.StatusCreated {
		t.Fatalf("期望 201，实际 %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.ID != "17" {
		t.Errorf("首张自定义桌应为 17，实际 %s", resp.Data.ID)
	}
}

func TestLayoutHandler_PlaceTable_Collision(t *testing.T) {
	env := setupEnv()
	r := gin.New()
	r.POST("/tables", env.handler.Layout.PlaceTable)

	// 种子桌 1 在 (150,150)，吸附后距离不足 120
	w := serve(r, "POST", "/tables", jsonBody(dto.PlaceTableRequest{X: f64(155), Y: f64(152)}))
	if w.Code != http.StatusConflict {
		t.Fatalf("期望 409，实际 %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 12002 {
		t.Errorf("期望业务码 12002，实际 %d", resp.Code)
	}
	if len(env.layout.TablePositions()) != 16 {
		t.Error("被拒绝的放置不该产生新桌")
	}
}

func TestLayoutHandler_PlaceTable_BadJSON(t *testing.T) {
	env := setupEnv()
	r := gin.New()
	r.POST("/tables", env.handler.Layout.PlaceTable)

	w := serve(r, "POST", "/tables", bytes.NewReader([]byte(`{"x": 500}`)))
	if w.Code != http.StatusBadRequest {
		t.Errorf("缺坐标期望 400，实际 %d", w.Code)
	}
}

func TestLayoutHandler_EditTableConfig_ConflictThenForce(t *testing.T) {
	env := setupEnv()
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		if _, err := env.assignments.AddGuest(name, ""); err != nil {
			t.Fatal(err)
		}
		if err := env.assignments.Assign(name, "2"); err != nil {
			t.Fatal(err)
		}
	}
	r := gin.New()
	r.PUT("/tables/:id/config", env.handler.Layout.EditTableConfig)

	shrink := dto.TableConfigRequest{Shape: "circle", Size: 45, Capacity: 2, BackgroundColor: "#f8f9fa"}

	// 未确认：409 带超员名单
	w := serve(r, "PUT", "/tables/2/config", jsonBody(shrink))
	if w.Code != http.StatusConflict {
		t.Fatalf("期望 409，实际 %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Carol") {
		t.Errorf("409 响应应携带超员宾客: %s", w.Body.String())
	}
	if cfg := env.layout.Config("2"); cfg.Capacity != 10 {
		t.Error("冲突时配置不该变")
	}

	// 确认重试：200，Carol 被移出座位
	shrink.Force = true
	w = serve(r, "PUT", "/tables/2/config", jsonBody(shrink))
	if w.Code != http.StatusOK {
		t.Fatalf("确认重试期望 200，实际 %d: %s", w.Code, w.Body.String())
	}
	if cfg := env.layout.Config("2"); cfg.Capacity != 2 {
		t.Error("确认后新容量应生效")
	}
	if _, ok := env.assignments.AssignmentFor("Carol"); ok {
		t.Error("Carol 应已被移出座位")
	}
}

func TestLayoutHandler_RemoveTable_ReportsUnassigned(t *testing.T) {
	env := setupEnv()
	if _, err := env.assignments.AddGuest("Alice", ""); err != nil {
		t.Fatal(err)
	}
	if err := env.assignments.Assign("Alice", "5"); err != nil {
		t.Fatal(err)
	}
	r := gin.New()
	r.DELETE("/tables/:id", env.handler.Layout.RemoveTable)

	w := serve(r, "DELETE", "/tables/5", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Alice") {
		t.Errorf("响应应报告被取消入座的宾客: %s", w.Body.String())
	}
	if _, err := env.layout.Table("5"); err == nil {
		t.Error("桌 5 应已删除")
	}
}

func TestLayoutHandler_GetTable_NotFound(t *testing.T) {
	env := setupEnv()
	r := gin.New()
	r.GET("/tables/:id", env.handler.Layout.GetTable)

	w := serve(r, "GET", "/tables/99", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("期望 404，实际 %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// GuestHandler 测试
// ═══════════════════════════════════════════════════════════

func TestGuestHandler_AssignGuest_FullTable(t *testing.T) {
	env := setupEnv()
	if err := env.layout.EditConfig("1", envSmallConfig()); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		if _, err := env.assignments.AddGuest(name, ""); err != nil {
			t.Fatal(err)
		}
	}
	for _, name := range []string{"Alice", "Bob"} {
		if err := env.assignments.Assign(name, "1"); err != nil {
			t.Fatal(err)
		}
	}
	r := gin.New()
	r.PUT("/guests/:name/assignment", env.handler.Guest.AssignGuest)

	w := serve(r, "PUT", "/guests/Carol/assignment", jsonBody(dto.AssignGuestRequest{Table: "1"}))
	if w.Code != http.StatusConflict {
		t.Fatalf("满桌期望 409，实际 %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13003 {
		t.Errorf("期望业务码 13003，实际 %d", resp.Code)
	}
}

func TestGuestHandler_AddGuest_Duplicate(t *testing.T) {
	env := setupEnv()
	if _, err := env.assignments.AddGuest("Alice", ""); err != nil {
		t.Fatal(err)
	}
	r := gin.New()
	r.POST("/guests", env.handler.Guest.AddGuest)

	w := serve(r, "POST", "/guests", jsonBody(dto.AddGuestRequest{Name: "alice"}))
	if w.Code != http.StatusConflict {
		t.Fatalf("重名（忽略大小写）期望 409，实际 %d", w.Code)
	}
}

func TestGuestHandler_DropGuest(t *testing.T) {
	env := setupEnv()
	if _, err := env.assignments.AddGuest("Alice", ""); err != nil {
		t.Fatal(err)
	}
	r := gin.New()
	r.POST("/guests/:name/drop", env.handler.Guest.DropGuest)

	w := serve(r, "POST", "/guests/Alice/drop", jsonBody(dto.DropGuestRequest{X: f64(200), Y: f64(150)}))
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d: %s", w.Code, w.Body.String())
	}
	if tbl, _ := env.assignments.AssignmentFor("Alice"); tbl != "1" {
		t.Errorf("应吸附到桌 1，实际 %s", tbl)
	}

	// 落点空旷：404，分配不变
	w = serve(r, "POST", "/guests/Alice/drop", jsonBody(dto.DropGuestRequest{X: f64(3000), Y: f64(3000)}))
	if w.Code != http.StatusNotFound {
		t.Errorf("落空期望 404，实际 %d", w.Code)
	}
	if tbl, _ := env.assignments.AssignmentFor("Alice"); tbl != "1" {
		t.Errorf("落空不该动原分配，实际 %s", tbl)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler 测试
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ImportGuests(t *testing.T) {
	env := setupEnv()
	r := gin.New()
	r.POST("/import/guests", env.handler.Export.ImportGuests)

	w := serve(r, "POST", "/import/guests", bytes.NewReader([]byte("Name,Group\nAlice,Family\nBob,\n")))
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d: %s", w.Code, w.Body.String())
	}
	if len(env.assignments.Guests()) != 2 {
		t.Errorf("名册应有 2 人: %v", env.assignments.Guests())
	}
}

func TestExportHandler_ExportAssignments_Headers(t *testing.T) {
	env := setupEnv()
	r := gin.New()
	r.GET("/export/assignments", env.handler.Export.ExportAssignments)

	w := serve(r, "GET", "/export/assignments", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "attachment") {
		t.Error("应为附件下载")
	}
	if !strings.HasPrefix(w.Body.String(), "Name,Table ID") {
		t.Errorf("CSV 表头不对: %s", w.Body.String())
	}
}

func TestExportHandler_ImportProject_Corrupt(t *testing.T) {
	env := setupEnv()
	r := gin.New()
	r.POST("/import/project", env.handler.Export.ImportProject)

	w := serve(r, "POST", "/import/project", bytes.NewReader([]byte(`{"guests":`)))
	if w.Code != http.StatusBadRequest {
		t.Errorf("损坏文件期望 400，实际 %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// InteractionHandler 测试
// ═══════════════════════════════════════════════════════════

func TestInteractionHandler_DragLifecycle(t *testing.T) {
	env := setupEnv()
	r := gin.New()
	r.POST("/interaction/table-drag", env.handler.Interaction.BeginTableDrag)
	r.POST("/interaction/guest-drag", env.handler.Interaction.BeginGuestDrag)
	r.POST("/interaction/end-drag", env.handler.Interaction.EndDrag)

	w := serve(r, "POST", "/interaction/table-drag", jsonBody(dto.BeginDragRequest{Subject: "3"}))
	if w.Code != http.StatusOK {
		t.Fatalf("开始拖拽期望 200，实际 %d", w.Code)
	}

	// 拖拽中不能再开新拖拽
	w = serve(r, "POST", "/interaction/guest-drag", jsonBody(dto.BeginDragRequest{Subject: "Alice"}))
	if w.Code != http.StatusConflict {
		t.Errorf("嵌套拖拽期望 409，实际 %d", w.Code)
	}

	w = serve(r, "POST", "/interaction/end-drag", nil)
	if w.Code != http.StatusOK {
		t.Errorf("结束拖拽期望 200，实际 %d", w.Code)
	}
}

func envSmallConfig() model.TableConfig {
	return model.TableConfig{Shape: model.ShapeCircle, Size: 45, Capacity: 2, BackgroundColor: model.DefaultTableColor}
}

// [自证通过] internal/api/handler/handler_test.go
