package persistence

import (
	"gorm.io/gorm"

	"github.com/partsledger/backend/internal/domain/catalog"
	"github.com/partsledger/backend/internal/domain/ledger"
)

// AutoMigrate creates or updates the schema for all persisted entities.
// Order matters only for readability; GORM resolves the tables independently.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&catalog.Part{},
		&catalog.Location{},
		&ledger.StockBalance{},
		&ledger.LedgerEntry{},
	)
}
