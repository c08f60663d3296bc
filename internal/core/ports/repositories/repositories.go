package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// It lets the application wire any persistence backend (memory or pgsql).
type RepositoryProvider struct {
	AccountRepo   AccountRepositoryFacade
	LedgerRepo    LedgerRepositoryFacade
	DocumentRepo  DocumentRepositoryFacade
	InventoryRepo InventoryRepositoryFacade
	TxRunner      TxRunner
}
