package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/partsledger/backend/internal/domain/shared"
)

// StockBalanceRepository defines the persistence interface for stock balances
type StockBalanceRepository interface {
	// FindByID finds a balance by ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockBalance, error)

	// FindByIDForCompany finds a balance by ID scoped to a company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*StockBalance, error)

	// FindByTriple finds the balance for one (company, part, location) triple.
	// Returns shared.ErrNotFound when no row exists yet.
	FindByTriple(ctx context.Context, companyID, partID, locationID uuid.UUID) (*StockBalance, error)

	// GetOrCreate returns the balance for the triple, creating a zero row
	// if none exists
	GetOrCreate(ctx context.Context, companyID, partID, locationID uuid.UUID) (*StockBalance, error)

	// FindAllForCompany returns balances for a company with pagination
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]*StockBalance, error)

	// CountForCompany counts balances for a company matching the filter
	CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error)

	// Save persists a balance without a version check
	Save(ctx context.Context, balance *StockBalance) error

	// SaveWithLock persists a balance only if its version is unchanged.
	// Returns shared.ErrConcurrencyConflict when another writer got there first.
	SaveWithLock(ctx context.Context, balance *StockBalance) error

	// SumValueByLocation returns the total on-hand value at a location
	SumValueByLocation(ctx context.Context, companyID, locationID uuid.UUID) (decimal.Decimal, error)
}

// EntryQuery narrows ledger history reads
type EntryQuery struct {
	PartID       *uuid.UUID
	LocationID   *uuid.UUID
	MovementType *MovementType
	From         *time.Time
	To           *time.Time
}

// LedgerEntryRepository defines the persistence interface for ledger entries.
// Entries are append-only; there is deliberately no update or delete.
type LedgerEntryRepository interface {
	// Create appends a new entry
	Create(ctx context.Context, entry *LedgerEntry) error

	// FindByIDForCompany finds an entry by ID scoped to a company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*LedgerEntry, error)

	// FindForCompany returns entries for a company, newest first
	FindForCompany(ctx context.Context, companyID uuid.UUID, query EntryQuery, filter shared.Filter) ([]*LedgerEntry, error)

	// CountForCompany counts entries matching the query
	CountForCompany(ctx context.Context, companyID uuid.UUID, query EntryQuery) (int64, error)

	// FindByReference returns entries carrying the given reference string
	FindByReference(ctx context.Context, companyID uuid.UUID, reference string) ([]*LedgerEntry, error)
}

// PartRef is the slice of catalog data the ledger needs: existence plus the
// catalog cost used as the fallback when a movement carries no cost.
type PartRef struct {
	ID       uuid.UUID
	SKU      string
	UnitCost *decimal.Decimal
}

// ReferenceCatalog validates the part and location references on movements.
// Backed by the catalog bounded context; the ledger never reads catalog
// tables directly.
type ReferenceCatalog interface {
	// FindPart returns the part ref, or shared.ErrInvalidReference if the
	// part does not exist or belongs to another company
	FindPart(ctx context.Context, companyID, partID uuid.UUID) (*PartRef, error)

	// LocationExists reports whether the location exists for the company
	LocationExists(ctx context.Context, companyID, locationID uuid.UUID) (bool, error)
}
