package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/partsledger/backend/internal/domain/shared"
)

// StockBalance is the live stock state for one (company, part, location)
// triple. It is the aggregate root for all ledger mutations: on-hand,
// reserved and available are kept in lock-step by every operation, and
// Available is stored rather than derived at read time.
type StockBalance struct {
	shared.CompanyAggregateRoot
	PartID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_balance_triple,priority:2"`
	LocationID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_balance_triple,priority:3"`
	OnHand        int64           `gorm:"not null;default:0"`
	Reserved      int64           `gorm:"not null;default:0"`
	Available     int64           `gorm:"not null;default:0"`
	AverageCost   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Moving weighted average
	LastCountedAt *time.Time      `gorm:"type:timestamptz"`
	LastCountedBy *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (StockBalance) TableName() string {
	return "stock_balances"
}

// NewStockBalance creates a zeroed balance for a triple. Balances are
// created lazily on first movement and never deleted.
func NewStockBalance(companyID, partID, locationID uuid.UUID) (*StockBalance, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if partID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PART", "Part ID cannot be empty")
	}
	if locationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Location ID cannot be empty")
	}

	return &StockBalance{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		PartID:               partID,
		LocationID:           locationID,
		AverageCost:          decimal.Zero,
	}, nil
}

// TotalValue returns on-hand quantity valued at the current average cost
func (b *StockBalance) TotalValue() decimal.Decimal {
	return decimal.NewFromInt(b.OnHand).Mul(b.AverageCost)
}

// CanFulfill returns true if the available quantity covers the request
func (b *StockBalance) CanFulfill(quantity int64) bool {
	return quantity <= b.Available
}

// ApplyInbound increases on-hand and available by quantity. If a unit cost
// is supplied the moving average is recomputed over the pre-movement
// on-hand quantity; without a cost the average is left as-is.
func (b *StockBalance) ApplyInbound(movementType MovementType, quantity int64, unitCost *decimal.Decimal) error {
	if !movementType.IsInbound() {
		return shared.ErrInvalidMovementType
	}
	if err := validateInbound(quantity, unitCost); err != nil {
		return err
	}

	onHandBefore := b.OnHand
	b.OnHand += quantity
	b.Available += quantity

	if unitCost != nil {
		b.AverageCost = WeightedAverageCost(b.AverageCost, onHandBefore, *unitCost, quantity, b.OnHand)
	}

	b.touch()
	b.AddDomainEvent(NewStockIncreasedEvent(b, movementType, quantity, unitCost))
	return nil
}

// ApplyOutbound decreases on-hand and available by quantity. The average
// cost is untouched: cost basis is only revised by inbound movements.
func (b *StockBalance) ApplyOutbound(movementType MovementType, quantity int64) error {
	if !movementType.IsOutbound() {
		return shared.ErrInvalidMovementType
	}
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	if quantity > b.Available {
		return shared.ErrInsufficientStock
	}

	b.OnHand -= quantity
	b.Available -= quantity

	b.touch()
	b.AddDomainEvent(NewStockDecreasedEvent(b, movementType, quantity))
	return nil
}

// ApplyAdjustment applies a signed delta to on-hand and available. A
// positive delta re-averages cost with the pre-adjustment on-hand as the
// base; a negative delta leaves cost alone. Fails with NegativeStock if
// the delta would drive either quantity below zero.
func (b *StockBalance) ApplyAdjustment(delta int64, unitCost *decimal.Decimal) error {
	if delta == 0 {
		return shared.NewDomainError("INVALID_INPUT", "Adjustment delta cannot be zero")
	}
	if b.OnHand+delta < 0 || b.Available+delta < 0 {
		return shared.ErrNegativeStock
	}

	onHandBefore := b.OnHand
	b.OnHand += delta
	b.Available += delta

	if delta > 0 && unitCost != nil {
		b.AverageCost = WeightedAverageCost(b.AverageCost, onHandBefore, *unitCost, delta, b.OnHand)
	}

	b.touch()
	b.AddDomainEvent(NewStockAdjustedEvent(b, delta))
	return nil
}

// Reserve earmarks quantity for a pending use. On-hand is untouched and
// no ledger entry is produced: reservation is not a physical movement.
func (b *StockBalance) Reserve(quantity int64) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	if quantity > b.Available {
		return shared.ErrInsufficientStock
	}

	b.Reserved += quantity
	b.Available -= quantity

	b.touch()
	b.AddDomainEvent(NewStockReservedEvent(b, quantity))
	return nil
}

// Release returns previously reserved quantity to available.
func (b *StockBalance) Release(quantity int64) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	if quantity > b.Reserved {
		return shared.ErrInsufficientReservation
	}

	b.Reserved -= quantity
	b.Available += quantity

	b.touch()
	b.AddDomainEvent(NewReservationReleasedEvent(b, quantity))
	return nil
}

// MarkCounted refreshes the physical-count audit fields
func (b *StockBalance) MarkCounted(countedAt time.Time, countedBy *uuid.UUID) {
	b.LastCountedAt = &countedAt
	b.LastCountedBy = countedBy
	b.touch()
}

// CheckInvariants verifies the balance identity that must hold after every
// committed mutation.
func (b *StockBalance) CheckInvariants() error {
	if b.OnHand < 0 || b.Reserved < 0 || b.Available < 0 {
		return shared.ErrNegativeStock
	}
	if b.Available != b.OnHand-b.Reserved {
		return shared.NewDomainError("BALANCE_MISMATCH", "Available must equal on-hand minus reserved")
	}
	if b.AverageCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Average cost cannot be negative")
	}
	return nil
}

// touch refreshes the modification timestamp. The version bump happens in
// SaveWithLock so an operation that mutates twice still advances one step.
func (b *StockBalance) touch() {
	b.UpdatedAt = time.Now()
}
