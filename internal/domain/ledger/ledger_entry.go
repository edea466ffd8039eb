package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/partsledger/backend/internal/domain/shared"
)

// LedgerEntry is an immutable record of one stock movement. Entries are
// append-only: corrections are made with new movements, never by editing
// history. The entry is the audit trail and the basis for reconstructing
// any balance.
type LedgerEntry struct {
	shared.BaseEntity
	CompanyID      uuid.UUID        `gorm:"type:uuid;not null;index:idx_ledger_company_time,priority:1"`
	PartID         uuid.UUID        `gorm:"type:uuid;not null;index:idx_ledger_part"`
	LocationID     uuid.UUID        `gorm:"type:uuid;not null;index:idx_ledger_location"`
	MovementType   MovementType     `gorm:"type:varchar(20);not null;index:idx_ledger_type"`
	Quantity       int64            `gorm:"not null"` // Magnitude; adjustments carry the signed delta
	UnitCost       *decimal.Decimal `gorm:"type:decimal(18,4)"`
	TotalCost      *decimal.Decimal `gorm:"type:decimal(18,4)"` // UnitCost x |Quantity| when cost present
	BalanceBefore  int64            `gorm:"not null"`           // On-hand before the movement
	BalanceAfter   int64            `gorm:"not null"`           // On-hand after the movement
	Reason         string           `gorm:"type:varchar(255)"`
	Notes          string           `gorm:"type:varchar(1000)"`
	Reference      string           `gorm:"type:varchar(100);index:idx_ledger_reference"`
	ReferenceType  string           `gorm:"type:varchar(50)"`
	RelatedID      *uuid.UUID       `gorm:"type:uuid;index"`
	FromLocationID *uuid.UUID       `gorm:"type:uuid"`
	ToLocationID   *uuid.UUID       `gorm:"type:uuid"`
	UserID         *uuid.UUID       `gorm:"type:uuid"`
	OccurredAt     time.Time        `gorm:"type:timestamptz;not null;index:idx_ledger_company_time,priority:2"`
}

// TableName returns the table name for GORM
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// NewLedgerEntry creates a new ledger entry for a movement against one
// triple. Quantity is the signed delta for adjustments and a positive
// magnitude for every other movement type.
func NewLedgerEntry(
	companyID, partID, locationID uuid.UUID,
	movementType MovementType,
	quantity int64,
	unitCost *decimal.Decimal,
	balanceBefore, balanceAfter int64,
) (*LedgerEntry, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if partID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PART", "Part ID cannot be empty")
	}
	if locationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Location ID cannot be empty")
	}
	if !movementType.IsValid() {
		return nil, shared.ErrInvalidMovementType
	}
	if quantity == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Quantity cannot be zero")
	}
	if movementType != MovementAdjustment && quantity < 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Quantity must be positive")
	}
	if unitCost != nil && unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	entry := &LedgerEntry{
		BaseEntity:    shared.NewBaseEntity(),
		CompanyID:     companyID,
		PartID:        partID,
		LocationID:    locationID,
		MovementType:  movementType,
		Quantity:      quantity,
		UnitCost:      unitCost,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
		OccurredAt:    time.Now(),
	}

	if unitCost != nil {
		magnitude := quantity
		if magnitude < 0 {
			magnitude = -magnitude
		}
		total := unitCost.Mul(decimal.NewFromInt(magnitude))
		entry.TotalCost = &total
	}

	return entry, nil
}

// WithDetails attaches the caller-supplied movement metadata
func (e *LedgerEntry) WithDetails(d Details) *LedgerEntry {
	e.Reason = d.Reason
	e.Notes = d.Notes
	e.Reference = d.Reference
	e.ReferenceType = d.ReferenceType
	e.RelatedID = d.RelatedID
	return e
}

// WithTransferRoute records the two endpoints of a transfer on the entry
func (e *LedgerEntry) WithTransferRoute(fromLocationID, toLocationID uuid.UUID) *LedgerEntry {
	e.FromLocationID = &fromLocationID
	e.ToLocationID = &toLocationID
	return e
}

// WithUser records who triggered the movement
func (e *LedgerEntry) WithUser(userID uuid.UUID) *LedgerEntry {
	e.UserID = &userID
	return e
}

// SignedQuantity returns the quantity with sign based on movement direction.
// Adjustments already carry their sign.
func (e *LedgerEntry) SignedQuantity() int64 {
	if e.MovementType.IsOutbound() {
		return -e.Quantity
	}
	return e.Quantity
}

// QuantityChange returns the net on-hand change recorded by this entry
func (e *LedgerEntry) QuantityChange() int64 {
	return e.BalanceAfter - e.BalanceBefore
}
