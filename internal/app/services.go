package app

import (
	"gorm.io/gorm"

	"github.com/specgraph/fgp-backend/internal/platform/logger"
	"github.com/specgraph/fgp-backend/internal/services"
)

type Services struct {
	Directory services.DirectoryService
	Ledger    services.LedgerService
	Catalog   services.CatalogService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos) Services {
	log.Info("Wiring services...")
	directory := services.NewDirectoryService(db, log, r.Document, r.Procedure, r.GraphVersion)
	ledger := services.NewLedgerService(db, log, r.Procedure, r.GraphVersion, directory, cfg.InsertRetries)
	catalog := services.NewCatalogService(db, log, ledger, r.Document, r.Procedure, r.Section, r.GraphVersion)
	return Services{
		Directory: directory,
		Ledger:    ledger,
		Catalog:   catalog,
	}
}
