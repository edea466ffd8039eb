package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/partsledger/backend/internal/domain/shared"
)

// MovementType represents the type of a stock movement
type MovementType string

const (
	// MovementReceipt represents stock received into a location (purchase receiving)
	MovementReceipt MovementType = "receipt"
	// MovementIssue represents stock issued out of a location (work-order consumption)
	MovementIssue MovementType = "issue"
	// MovementAdjustment represents a signed correction (stock count variance, damage)
	MovementAdjustment MovementType = "adjustment"
	// MovementTransferOut represents stock leaving a location for another location
	MovementTransferOut MovementType = "transfer_out"
	// MovementTransferIn represents stock arriving from another location
	MovementTransferIn MovementType = "transfer_in"
	// MovementReturn represents stock returned to a location
	MovementReturn MovementType = "return"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is one of the six known values
func (t MovementType) IsValid() bool {
	switch t {
	case MovementReceipt,
		MovementIssue,
		MovementAdjustment,
		MovementTransferOut,
		MovementTransferIn,
		MovementReturn:
		return true
	}
	return false
}

// IsInbound returns true if this movement type increases on-hand stock
func (t MovementType) IsInbound() bool {
	switch t {
	case MovementReceipt, MovementTransferIn, MovementReturn:
		return true
	}
	return false
}

// IsOutbound returns true if this movement type decreases on-hand stock
func (t MovementType) IsOutbound() bool {
	switch t {
	case MovementIssue, MovementTransferOut:
		return true
	}
	return false
}

// ParseMovementType parses s against the closed set of movement types
func ParseMovementType(s string) (MovementType, error) {
	t := MovementType(s)
	if !t.IsValid() {
		return "", shared.ErrInvalidMovementType
	}
	return t, nil
}

// ReferenceTypeTransfer tags the two linked entries of one transfer
const ReferenceTypeTransfer = "transfer"

// PhysicalCountReason is the reason recorded on count-variance adjustments
const PhysicalCountReason = "Physical Count"

// Details carries the caller-supplied metadata common to every movement.
type Details struct {
	Reason        string
	Notes         string
	Reference     string
	ReferenceType string
	RelatedID     *uuid.UUID
}

// Movement is one stock-affecting event to apply against a balance. Each
// movement type is its own variant carrying only the fields that type uses,
// so a caller cannot, for example, hand an unsigned quantity to an adjustment.
type Movement interface {
	Type() MovementType
	Validate() error
}

// Receipt increases stock, optionally at an explicit unit cost.
type Receipt struct {
	Details
	Quantity int64
	UnitCost *decimal.Decimal
}

// Type implements Movement
func (Receipt) Type() MovementType { return MovementReceipt }

// Validate implements Movement
func (m Receipt) Validate() error { return validateInbound(m.Quantity, m.UnitCost) }

// Issue decreases available stock.
type Issue struct {
	Details
	Quantity int64
}

// Type implements Movement
func (Issue) Type() MovementType { return MovementIssue }

// Validate implements Movement
func (m Issue) Validate() error { return validateQuantity(m.Quantity) }

// Return increases stock, optionally at an explicit unit cost.
type Return struct {
	Details
	Quantity int64
	UnitCost *decimal.Decimal
}

// Type implements Movement
func (Return) Type() MovementType { return MovementReturn }

// Validate implements Movement
func (m Return) Validate() error { return validateInbound(m.Quantity, m.UnitCost) }

// TransferOut is the outbound leg of a transfer.
type TransferOut struct {
	Details
	Quantity     int64
	ToLocationID uuid.UUID
}

// Type implements Movement
func (TransferOut) Type() MovementType { return MovementTransferOut }

// Validate implements Movement
func (m TransferOut) Validate() error {
	if m.ToLocationID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Transfer destination is required")
	}
	return validateQuantity(m.Quantity)
}

// TransferIn is the inbound leg of a transfer. Its unit cost normally
// carries the source location's average cost so value survives the move.
type TransferIn struct {
	Details
	Quantity       int64
	UnitCost       *decimal.Decimal
	FromLocationID uuid.UUID
}

// Type implements Movement
func (TransferIn) Type() MovementType { return MovementTransferIn }

// Validate implements Movement
func (m TransferIn) Validate() error {
	if m.FromLocationID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Transfer source is required")
	}
	return validateInbound(m.Quantity, m.UnitCost)
}

// Adjustment applies an explicit signed delta. A positive delta re-averages
// cost like an inbound movement; a negative delta leaves cost untouched.
// Magnitude-only adjustment calls are illegal: the delta is always required.
type Adjustment struct {
	Details
	Delta    int64
	UnitCost *decimal.Decimal
}

// Type implements Movement
func (Adjustment) Type() MovementType { return MovementAdjustment }

// Validate implements Movement
func (m Adjustment) Validate() error {
	if m.Delta == 0 {
		return shared.NewDomainError("INVALID_INPUT", "Adjustment delta cannot be zero")
	}
	if m.UnitCost != nil && m.UnitCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	return nil
}

func validateQuantity(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_INPUT", "Quantity must be positive")
	}
	return nil
}

func validateInbound(quantity int64, unitCost *decimal.Decimal) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	if unitCost != nil && unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	return nil
}
