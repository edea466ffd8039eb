package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/partsledger/backend/internal/domain/shared"
)

// PartRepository defines the interface for part persistence
type PartRepository interface {
	// FindByID finds a part by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Part, error)

	// FindByIDForCompany finds a part by ID within a company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*Part, error)

	// FindBySKU finds a part by SKU within a company
	FindBySKU(ctx context.Context, companyID uuid.UUID, sku string) (*Part, error)

	// FindAllForCompany finds all parts for a company
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]Part, error)

	// Save creates or updates a part
	Save(ctx context.Context, part *Part) error

	// CountForCompany counts parts for a company
	CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error)
}

// LocationRepository defines the interface for location persistence
type LocationRepository interface {
	// FindByID finds a location by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Location, error)

	// FindByIDForCompany finds a location by ID within a company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*Location, error)

	// FindByCode finds a location by code within a company
	FindByCode(ctx context.Context, companyID uuid.UUID, code string) (*Location, error)

	// FindAllForCompany finds all locations for a company
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]Location, error)

	// Save creates or updates a location
	Save(ctx context.Context, location *Location) error

	// CountForCompany counts locations for a company
	CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error)
}
