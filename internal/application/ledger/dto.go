package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/partsledger/backend/internal/domain/ledger"
)

// StockBalanceResponse represents a stock balance in API responses
type StockBalanceResponse struct {
	ID            uuid.UUID       `json:"id"`
	CompanyID     uuid.UUID       `json:"company_id"`
	PartID        uuid.UUID       `json:"part_id"`
	LocationID    uuid.UUID       `json:"location_id"`
	OnHand        int64           `json:"on_hand"`
	Reserved      int64           `json:"reserved"`
	Available     int64           `json:"available"`
	AverageCost   decimal.Decimal `json:"average_cost"`
	TotalValue    decimal.Decimal `json:"total_value"`
	LastCountedAt *time.Time      `json:"last_counted_at,omitempty"`
	LastCountedBy *uuid.UUID      `json:"last_counted_by,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

// LedgerEntryResponse represents a ledger entry in API responses
type LedgerEntryResponse struct {
	ID             uuid.UUID        `json:"id"`
	CompanyID      uuid.UUID        `json:"company_id"`
	PartID         uuid.UUID        `json:"part_id"`
	LocationID     uuid.UUID        `json:"location_id"`
	MovementType   string           `json:"movement_type"`
	Quantity       int64            `json:"quantity"`
	UnitCost       *decimal.Decimal `json:"unit_cost,omitempty"`
	TotalCost      *decimal.Decimal `json:"total_cost,omitempty"`
	BalanceBefore  int64            `json:"balance_before"`
	BalanceAfter   int64            `json:"balance_after"`
	Reason         string           `json:"reason,omitempty"`
	Notes          string           `json:"notes,omitempty"`
	Reference      string           `json:"reference,omitempty"`
	ReferenceType  string           `json:"reference_type,omitempty"`
	RelatedID      *uuid.UUID       `json:"related_id,omitempty"`
	FromLocationID *uuid.UUID       `json:"from_location_id,omitempty"`
	ToLocationID   *uuid.UUID       `json:"to_location_id,omitempty"`
	UserID         *uuid.UUID       `json:"user_id,omitempty"`
	OccurredAt     time.Time        `json:"occurred_at"`
}

// AdjustStockRequest applies one movement to a (part, location) triple.
// MovementType selects the variant; Quantity is the positive magnitude for
// receipt, issue and return, and the signed delta for adjustment.
type AdjustStockRequest struct {
	PartID       uuid.UUID        `json:"part_id" binding:"required"`
	LocationID   uuid.UUID        `json:"location_id" binding:"required"`
	MovementType string           `json:"movement_type" binding:"required"`
	Quantity     int64            `json:"quantity" binding:"required"`
	UnitCost     *decimal.Decimal `json:"unit_cost"`
	Reason       string           `json:"reason"`
	Notes        string           `json:"notes"`
	Reference    string           `json:"reference"`
	RelatedID    *uuid.UUID       `json:"related_id"`
	UserID       *uuid.UUID       `json:"user_id"`
}

// AdjustStockResponse returns the entry written and the balance it produced
type AdjustStockResponse struct {
	Entry   *LedgerEntryResponse  `json:"entry"`
	Balance *StockBalanceResponse `json:"balance"`
}

// TransferStockRequest moves quantity between two locations of one company.
// UnitCost overrides the cost carried to the destination; when omitted the
// source location's current average cost is used instead.
type TransferStockRequest struct {
	PartID         uuid.UUID        `json:"part_id" binding:"required"`
	FromLocationID uuid.UUID        `json:"from_location_id" binding:"required"`
	ToLocationID   uuid.UUID        `json:"to_location_id" binding:"required"`
	Quantity       int64            `json:"quantity" binding:"required,min=1"`
	UnitCost       *decimal.Decimal `json:"unit_cost"`
	Reason         string           `json:"reason"`
	Notes          string           `json:"notes"`
	Reference      string           `json:"reference"`
	UserID         *uuid.UUID       `json:"user_id"`
}

// TransferStockResponse returns both legs of the transfer
type TransferStockResponse struct {
	OutEntry    *LedgerEntryResponse  `json:"out_entry"`
	InEntry     *LedgerEntryResponse  `json:"in_entry"`
	FromBalance *StockBalanceResponse `json:"from_balance"`
	ToBalance   *StockBalanceResponse `json:"to_balance"`
}

// ReserveStockRequest earmarks available stock at a location
type ReserveStockRequest struct {
	PartID     uuid.UUID `json:"part_id" binding:"required"`
	LocationID uuid.UUID `json:"location_id" binding:"required"`
	Quantity   int64     `json:"quantity" binding:"required,min=1"`
}

// ReleaseStockRequest returns reserved stock to available
type ReleaseStockRequest struct {
	PartID     uuid.UUID `json:"part_id" binding:"required"`
	LocationID uuid.UUID `json:"location_id" binding:"required"`
	Quantity   int64     `json:"quantity" binding:"required,min=1"`
}

// StockCountRequest records a physical count for one triple
type StockCountRequest struct {
	PartID     uuid.UUID  `json:"part_id" binding:"required"`
	LocationID uuid.UUID  `json:"location_id" binding:"required"`
	CountedQty int64      `json:"counted_qty" binding:"min=0"`
	Notes      string     `json:"notes"`
	UserID     *uuid.UUID `json:"user_id"`
}

// StockCountResponse reports the count outcome. Entry is nil when the
// counted quantity matched the book quantity and no correction was needed.
type StockCountResponse struct {
	Delta   int64                 `json:"delta"`
	Entry   *LedgerEntryResponse  `json:"entry,omitempty"`
	Balance *StockBalanceResponse `json:"balance"`
}

// BalanceListFilter represents filter options for balance list
type BalanceListFilter struct {
	PartID     *uuid.UUID `form:"part_id"`
	LocationID *uuid.UUID `form:"location_id"`
	Page       int        `form:"page" binding:"min=0"`
	PageSize   int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// EntryListFilter represents filter options for ledger history
type EntryListFilter struct {
	PartID       *uuid.UUID `form:"part_id"`
	LocationID   *uuid.UUID `form:"location_id"`
	MovementType string     `form:"movement_type"`
	From         *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To           *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Page         int        `form:"page" binding:"min=0"`
	PageSize     int        `form:"page_size" binding:"min=0,max=100"`
}

// LocationValueResponse reports the total on-hand value at one location
type LocationValueResponse struct {
	LocationID uuid.UUID       `json:"location_id"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// toBalanceResponse converts a domain balance to a response DTO
func toBalanceResponse(b *ledger.StockBalance) *StockBalanceResponse {
	return &StockBalanceResponse{
		ID:            b.ID,
		CompanyID:     b.CompanyID,
		PartID:        b.PartID,
		LocationID:    b.LocationID,
		OnHand:        b.OnHand,
		Reserved:      b.Reserved,
		Available:     b.Available,
		AverageCost:   b.AverageCost,
		TotalValue:    b.TotalValue(),
		LastCountedAt: b.LastCountedAt,
		LastCountedBy: b.LastCountedBy,
		UpdatedAt:     b.UpdatedAt,
		Version:       b.Version,
	}
}

// toEntryResponse converts a domain ledger entry to a response DTO
func toEntryResponse(e *ledger.LedgerEntry) *LedgerEntryResponse {
	return &LedgerEntryResponse{
		ID:             e.ID,
		CompanyID:      e.CompanyID,
		PartID:         e.PartID,
		LocationID:     e.LocationID,
		MovementType:   e.MovementType.String(),
		Quantity:       e.Quantity,
		UnitCost:       e.UnitCost,
		TotalCost:      e.TotalCost,
		BalanceBefore:  e.BalanceBefore,
		BalanceAfter:   e.BalanceAfter,
		Reason:         e.Reason,
		Notes:          e.Notes,
		Reference:      e.Reference,
		ReferenceType:  e.ReferenceType,
		RelatedID:      e.RelatedID,
		FromLocationID: e.FromLocationID,
		ToLocationID:   e.ToLocationID,
		UserID:         e.UserID,
		OccurredAt:     e.OccurredAt,
	}
}

func toEntryResponses(entries []*ledger.LedgerEntry) []*LedgerEntryResponse {
	out := make([]*LedgerEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = toEntryResponse(e)
	}
	return out
}

func toBalanceResponses(balances []*ledger.StockBalance) []*StockBalanceResponse {
	out := make([]*StockBalanceResponse, len(balances))
	for i, b := range balances {
		out[i] = toBalanceResponse(b)
	}
	return out
}
