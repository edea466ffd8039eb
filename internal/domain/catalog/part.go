package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/partsledger/backend/internal/domain/shared"
)

// Part is a spare part in the company catalog. The stock ledger consults
// parts read-only: to validate ownership and to obtain the fallback unit
// cost when a movement does not carry an explicit cost.
type Part struct {
	shared.CompanyAggregateRoot
	SKU         string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_part_company_sku,priority:2"`
	Name        string          `gorm:"type:varchar(255);not null"`
	Description string          `gorm:"type:varchar(1000)"`
	UnitCost    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Active      bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Part) TableName() string {
	return "parts"
}

// NewPart creates a new part in the company catalog
func NewPart(companyID uuid.UUID, sku, name string, unitCost decimal.Decimal) (*Part, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Part name cannot be empty")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	return &Part{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		SKU:                  sku,
		Name:                 name,
		UnitCost:             unitCost,
		Active:               true,
	}, nil
}

// UpdateCost changes the catalog unit cost. This does not reprice existing
// stock; moving-average cost on balances is only revised by inbound movements.
func (p *Part) UpdateCost(unitCost decimal.Decimal) error {
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	p.UnitCost = unitCost
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Deactivate soft-disables the part for new movements
func (p *Part) Deactivate() {
	p.Active = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}
