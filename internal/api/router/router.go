package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jbronzo/seat-saver/config"
	"github.com/jbronzo/seat-saver/internal/api/handler"
	"github.com/jbronzo/seat-saver/internal/api/middleware"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 桌子模块
		tables := v1.Group("/tables")
		{
			tables.GET("", h.Layout.ListTables)
			tables.POST("", h.Layout.PlaceTable)
			tables.GET("/new-config", h.Layout.GetNewTableConfig)
			tables.PUT("/new-config", h.Layout.SetNewTableConfig)
			tables.GET("/:id", h.Layout.GetTable)
			tables.DELETE("/:id", h.Layout.RemoveTable)
			tables.PUT("/:id/position", h.Layout.MoveTable)
			tables.PUT("/:id/config", h.Layout.EditTableConfig)
			tables.PUT("/:id/label", h.Layout.SetTableLabel)
			tables.GET("/:id/seats", h.Layout.GetSeatMap)
			tables.POST("/:id/guests", h.Guest.CreateAndAssign)
			tables.DELETE("/:id/guests", h.Guest.UnassignTable)
		}

		// 场地布局模块
		layout := v1.Group("/layout")
		{
			layout.GET("/seats", h.Layout.ListSeatMaps)
			layout.GET("/dance-floor", h.Layout.GetDanceFloor)
			layout.PUT("/dance-floor/position", h.Layout.MoveDanceFloor)
			layout.PUT("/dance-floor/size", h.Layout.ResizeDanceFloor)
			layout.GET("/viewport", h.Layout.GetViewport)
			layout.PUT("/viewport", h.Layout.SetViewport)
			layout.POST("/reset", h.Layout.ResetLayout)
		}

		// 宾客模块
		guests := v1.Group("/guests")
		{
			guests.GET("", h.Guest.ListGuests)
			guests.POST("", h.Guest.AddGuest)
			guests.GET("/stats", h.Guest.GetStats)
			guests.DELETE("/:name", h.Guest.RemoveGuest)
			guests.PUT("/:name/group", h.Guest.SetGuestGroup)
			guests.PUT("/:name/assignment", h.Guest.AssignGuest)
			guests.DELETE("/:name/assignment", h.Guest.UnassignGuest)
			guests.POST("/:name/drop", h.Guest.DropGuest)
		}

		// 分配总览
		v1.GET("/assignments", h.Guest.ListAssignments)

		// 交互状态机模块
		interaction := v1.Group("/interaction")
		{
			interaction.GET("", h.Interaction.GetState)
			interaction.POST("/table-drag", h.Interaction.BeginTableDrag)
			interaction.POST("/guest-drag", h.Interaction.BeginGuestDrag)
			interaction.POST("/end-drag", h.Interaction.EndDrag)
			interaction.POST("/placement", h.Interaction.EnterPlacementMode)
			interaction.DELETE("/placement", h.Interaction.LeavePlacementMode)
			interaction.POST("/confirmation", h.Interaction.BeginConfirmation)
			interaction.DELETE("/confirmation", h.Interaction.ResolveConfirmation)
		}

		// 导入导出模块
		export := v1.Group("/export")
		{
			export.GET("/assignments", h.Export.ExportAssignments)
			export.GET("/summary", h.Export.ExportSummary)
			export.GET("/project", h.Export.ExportProject)
		}
		importGroup := v1.Group("/import")
		{
			importGroup.POST("/guests", h.Export.ImportGuests)
			importGroup.POST("/project", h.Export.ImportProject)
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
