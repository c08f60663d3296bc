package services

import (
	"github.com/ketsolab/ketoan/internal/core/domain"
	portsrepo "github.com/ketsolab/ketoan/internal/core/ports/repositories"
	portssvc "github.com/ketsolab/ketoan/internal/core/ports/services"
	"github.com/ketsolab/ketoan/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, schedules domain.ScheduleSet) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Registry and tax have no service dependencies; the posting engine
	// consumes all three calculators.
	container.Registry = NewRegistryService(repos.AccountRepo, repos.LedgerRepo)
	container.Tax = NewTaxService(schedules)
	container.Costing = NewCostingService(repos.InventoryRepo, cfg.AllowNegativeStock)

	container.Document = NewDocumentService(repos.DocumentRepo)
	container.Posting = NewPostingService(
		repos.DocumentRepo,
		repos.LedgerRepo,
		repos.TxRunner,
		container.Registry,
		container.Costing,
		container.Tax,
	)
	container.Reporting = NewReportingService(repos.LedgerRepo, repos.AccountRepo)

	return container
}
