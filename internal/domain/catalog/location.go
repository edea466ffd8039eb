package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/partsledger/backend/internal/domain/shared"
)

// Location is a company-owned stock location (warehouse, depot, service van).
type Location struct {
	shared.CompanyAggregateRoot
	Code    string `gorm:"type:varchar(32);not null;uniqueIndex:idx_location_company_code,priority:2"`
	Name    string `gorm:"type:varchar(255);not null"`
	Address string `gorm:"type:varchar(500)"`
	Active  bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Location) TableName() string {
	return "locations"
}

// NewLocation creates a new stock location
func NewLocation(companyID uuid.UUID, code, name string) (*Location, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Location code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Location name cannot be empty")
	}

	return &Location{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Code:                 code,
		Name:                 name,
		Active:               true,
	}, nil
}

// Deactivate soft-disables the location for new movements
func (l *Location) Deactivate() {
	l.Active = false
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
}
