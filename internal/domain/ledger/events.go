package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/partsledger/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeStockBalance = "StockBalance"

// Event type constants
const (
	EventTypeStockIncreased      = "StockIncreased"
	EventTypeStockDecreased      = "StockDecreased"
	EventTypeStockAdjusted       = "StockAdjusted"
	EventTypeStockReserved       = "StockReserved"
	EventTypeReservationReleased = "ReservationReleased"
	EventTypeStockTransferred    = "StockTransferred"
	EventTypeStockCounted        = "StockCounted"
)

// StockIncreasedEvent is raised when an inbound movement raises on-hand stock
type StockIncreasedEvent struct {
	shared.BaseDomainEvent
	PartID       uuid.UUID        `json:"part_id"`
	LocationID   uuid.UUID        `json:"location_id"`
	MovementType MovementType     `json:"movement_type"`
	Quantity     int64            `json:"quantity"`
	UnitCost     *decimal.Decimal `json:"unit_cost,omitempty"`
	OnHandAfter  int64            `json:"on_hand_after"`
}

// NewStockIncreasedEvent creates a new StockIncreasedEvent
func NewStockIncreasedEvent(b *StockBalance, movementType MovementType, quantity int64, unitCost *decimal.Decimal) *StockIncreasedEvent {
	return &StockIncreasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockIncreased, AggregateTypeStockBalance, b.ID, b.CompanyID),
		PartID:          b.PartID,
		LocationID:      b.LocationID,
		MovementType:    movementType,
		Quantity:        quantity,
		UnitCost:        unitCost,
		OnHandAfter:     b.OnHand,
	}
}

// EventType returns the event type name
func (e *StockIncreasedEvent) EventType() string {
	return EventTypeStockIncreased
}

// StockDecreasedEvent is raised when an outbound movement lowers on-hand stock
type StockDecreasedEvent struct {
	shared.BaseDomainEvent
	PartID       uuid.UUID    `json:"part_id"`
	LocationID   uuid.UUID    `json:"location_id"`
	MovementType MovementType `json:"movement_type"`
	Quantity     int64        `json:"quantity"`
	OnHandAfter  int64        `json:"on_hand_after"`
}

// NewStockDecreasedEvent creates a new StockDecreasedEvent
func NewStockDecreasedEvent(b *StockBalance, movementType MovementType, quantity int64) *StockDecreasedEvent {
	return &StockDecreasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockDecreased, AggregateTypeStockBalance, b.ID, b.CompanyID),
		PartID:          b.PartID,
		LocationID:      b.LocationID,
		MovementType:    movementType,
		Quantity:        quantity,
		OnHandAfter:     b.OnHand,
	}
}

// EventType returns the event type name
func (e *StockDecreasedEvent) EventType() string {
	return EventTypeStockDecreased
}

// StockAdjustedEvent is raised when a signed correction is applied to on-hand stock
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	PartID      uuid.UUID `json:"part_id"`
	LocationID  uuid.UUID `json:"location_id"`
	Delta       int64     `json:"delta"`
	OnHandAfter int64     `json:"on_hand_after"`
}

// NewStockAdjustedEvent creates a new StockAdjustedEvent
func NewStockAdjustedEvent(b *StockBalance, delta int64) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, AggregateTypeStockBalance, b.ID, b.CompanyID),
		PartID:          b.PartID,
		LocationID:      b.LocationID,
		Delta:           delta,
		OnHandAfter:     b.OnHand,
	}
}

// EventType returns the event type name
func (e *StockAdjustedEvent) EventType() string {
	return EventTypeStockAdjusted
}

// StockReservedEvent is raised when available stock is set aside for later issue
type StockReservedEvent struct {
	shared.BaseDomainEvent
	PartID         uuid.UUID `json:"part_id"`
	LocationID     uuid.UUID `json:"location_id"`
	Quantity       int64     `json:"quantity"`
	ReservedAfter  int64     `json:"reserved_after"`
	AvailableAfter int64     `json:"available_after"`
}

// NewStockReservedEvent creates a new StockReservedEvent
func NewStockReservedEvent(b *StockBalance, quantity int64) *StockReservedEvent {
	return &StockReservedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReserved, AggregateTypeStockBalance, b.ID, b.CompanyID),
		PartID:          b.PartID,
		LocationID:      b.LocationID,
		Quantity:        quantity,
		ReservedAfter:   b.Reserved,
		AvailableAfter:  b.Available,
	}
}

// EventType returns the event type name
func (e *StockReservedEvent) EventType() string {
	return EventTypeStockReserved
}

// ReservationReleasedEvent is raised when a reservation is returned to available stock
type ReservationReleasedEvent struct {
	shared.BaseDomainEvent
	PartID         uuid.UUID `json:"part_id"`
	LocationID     uuid.UUID `json:"location_id"`
	Quantity       int64     `json:"quantity"`
	ReservedAfter  int64     `json:"reserved_after"`
	AvailableAfter int64     `json:"available_after"`
}

// NewReservationReleasedEvent creates a new ReservationReleasedEvent
func NewReservationReleasedEvent(b *StockBalance, quantity int64) *ReservationReleasedEvent {
	return &ReservationReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationReleased, AggregateTypeStockBalance, b.ID, b.CompanyID),
		PartID:          b.PartID,
		LocationID:      b.LocationID,
		Quantity:        quantity,
		ReservedAfter:   b.Reserved,
		AvailableAfter:  b.Available,
	}
}

// EventType returns the event type name
func (e *ReservationReleasedEvent) EventType() string {
	return EventTypeReservationReleased
}

// StockTransferredEvent is raised once per completed transfer, after both legs
// have been applied
type StockTransferredEvent struct {
	shared.BaseDomainEvent
	PartID         uuid.UUID        `json:"part_id"`
	FromLocationID uuid.UUID        `json:"from_location_id"`
	ToLocationID   uuid.UUID        `json:"to_location_id"`
	Quantity       int64            `json:"quantity"`
	UnitCost       *decimal.Decimal `json:"unit_cost,omitempty"`
	Reference      string           `json:"reference,omitempty"`
}

// NewStockTransferredEvent creates a new StockTransferredEvent
func NewStockTransferredEvent(source *StockBalance, toLocationID uuid.UUID, quantity int64, unitCost *decimal.Decimal, reference string) *StockTransferredEvent {
	return &StockTransferredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockTransferred, AggregateTypeStockBalance, source.ID, source.CompanyID),
		PartID:          source.PartID,
		FromLocationID:  source.LocationID,
		ToLocationID:    toLocationID,
		Quantity:        quantity,
		UnitCost:        unitCost,
		Reference:       reference,
	}
}

// EventType returns the event type name
func (e *StockTransferredEvent) EventType() string {
	return EventTypeStockTransferred
}

// StockCountedEvent is raised when a physical count is recorded, whether or
// not it produced a correction
type StockCountedEvent struct {
	shared.BaseDomainEvent
	PartID        uuid.UUID `json:"part_id"`
	LocationID    uuid.UUID `json:"location_id"`
	CountedQty    int64     `json:"counted_qty"`
	Delta         int64     `json:"delta"`
	CountedByUser uuid.UUID `json:"counted_by_user"`
}

// NewStockCountedEvent creates a new StockCountedEvent
func NewStockCountedEvent(b *StockBalance, countedQty, delta int64, countedBy uuid.UUID) *StockCountedEvent {
	return &StockCountedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockCounted, AggregateTypeStockBalance, b.ID, b.CompanyID),
		PartID:          b.PartID,
		LocationID:      b.LocationID,
		CountedQty:      countedQty,
		Delta:           delta,
		CountedByUser:   countedBy,
	}
}

// EventType returns the event type name
func (e *StockCountedEvent) EventType() string {
	return EventTypeStockCounted
}
