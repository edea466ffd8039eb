package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/partsledger/backend/internal/domain/catalog"
	"github.com/partsledger/backend/internal/domain/shared"
)

// CatalogService manages the part and location master data the stock
// ledger runs against.
type CatalogService struct {
	partRepo     catalog.PartRepository
	locationRepo catalog.LocationRepository
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(partRepo catalog.PartRepository, locationRepo catalog.LocationRepository) *CatalogService {
	return &CatalogService{
		partRepo:     partRepo,
		locationRepo: locationRepo,
	}
}

// PartResponse represents a part in API responses
type PartResponse struct {
	ID          uuid.UUID       `json:"id"`
	CompanyID   uuid.UUID       `json:"company_id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// LocationResponse represents a location in API responses
type LocationResponse struct {
	ID        uuid.UUID `json:"id"`
	CompanyID uuid.UUID `json:"company_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreatePartRequest creates a new catalog part
type CreatePartRequest struct {
	SKU         string          `json:"sku" binding:"required"`
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// UpdatePartCostRequest changes the catalog fallback cost of a part
type UpdatePartCostRequest struct {
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// CreateLocationRequest creates a new stock location
type CreateLocationRequest struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
}

// ListFilter represents filter options for catalog lists
type ListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CreatePart creates a new part, rejecting duplicate SKUs per company
func (s *CatalogService) CreatePart(ctx context.Context, companyID uuid.UUID, req CreatePartRequest) (*PartResponse, error) {
	if _, err := s.partRepo.FindBySKU(ctx, companyID, req.SKU); err == nil {
		return nil, shared.ErrAlreadyExists
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	part, err := catalog.NewPart(companyID, req.SKU, req.Name, req.UnitCost)
	if err != nil {
		return nil, err
	}
	part.Description = req.Description

	if err := s.partRepo.Save(ctx, part); err != nil {
		return nil, err
	}
	return toPartResponse(part), nil
}

// GetPart returns one part by ID
func (s *CatalogService) GetPart(ctx context.Context, companyID, partID uuid.UUID) (*PartResponse, error) {
	part, err := s.partRepo.FindByIDForCompany(ctx, companyID, partID)
	if err != nil {
		return nil, err
	}
	return toPartResponse(part), nil
}

// ListParts returns parts for a company with pagination
func (s *CatalogService) ListParts(ctx context.Context, companyID uuid.UUID, filter ListFilter) (*shared.Paginated[*PartResponse], error) {
	f := filter.toShared()

	parts, err := s.partRepo.FindAllForCompany(ctx, companyID, f)
	if err != nil {
		return nil, err
	}
	total, err := s.partRepo.CountForCompany(ctx, companyID, f)
	if err != nil {
		return nil, err
	}

	items := make([]*PartResponse, len(parts))
	for i := range parts {
		items[i] = toPartResponse(&parts[i])
	}
	result := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &result, nil
}

// UpdatePartCost changes the catalog fallback cost for a part
func (s *CatalogService) UpdatePartCost(ctx context.Context, companyID, partID uuid.UUID, req UpdatePartCostRequest) (*PartResponse, error) {
	part, err := s.partRepo.FindByIDForCompany(ctx, companyID, partID)
	if err != nil {
		return nil, err
	}
	if err := part.UpdateCost(req.UnitCost); err != nil {
		return nil, err
	}
	if err := s.partRepo.Save(ctx, part); err != nil {
		return nil, err
	}
	return toPartResponse(part), nil
}

// DeactivatePart soft-disables a part for new movements
func (s *CatalogService) DeactivatePart(ctx context.Context, companyID, partID uuid.UUID) error {
	part, err := s.partRepo.FindByIDForCompany(ctx, companyID, partID)
	if err != nil {
		return err
	}
	part.Deactivate()
	return s.partRepo.Save(ctx, part)
}

// CreateLocation creates a new stock location, rejecting duplicate codes
func (s *CatalogService) CreateLocation(ctx context.Context, companyID uuid.UUID, req CreateLocationRequest) (*LocationResponse, error) {
	if _, err := s.locationRepo.FindByCode(ctx, companyID, req.Code); err == nil {
		return nil, shared.ErrAlreadyExists
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	location, err := catalog.NewLocation(companyID, req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	location.Address = req.Address

	if err := s.locationRepo.Save(ctx, location); err != nil {
		return nil, err
	}
	return toLocationResponse(location), nil
}

// GetLocation returns one location by ID
func (s *CatalogService) GetLocation(ctx context.Context, companyID, locationID uuid.UUID) (*LocationResponse, error) {
	location, err := s.locationRepo.FindByIDForCompany(ctx, companyID, locationID)
	if err != nil {
		return nil, err
	}
	return toLocationResponse(location), nil
}

// ListLocations returns locations for a company with pagination
func (s *CatalogService) ListLocations(ctx context.Context, companyID uuid.UUID, filter ListFilter) (*shared.Paginated[*LocationResponse], error) {
	f := filter.toShared()

	locations, err := s.locationRepo.FindAllForCompany(ctx, companyID, f)
	if err != nil {
		return nil, err
	}
	total, err := s.locationRepo.CountForCompany(ctx, companyID, f)
	if err != nil {
		return nil, err
	}

	items := make([]*LocationResponse, len(locations))
	for i := range locations {
		items[i] = toLocationResponse(&locations[i])
	}
	result := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &result, nil
}

// DeactivateLocation soft-disables a location for new movements
func (s *CatalogService) DeactivateLocation(ctx context.Context, companyID, locationID uuid.UUID) error {
	location, err := s.locationRepo.FindByIDForCompany(ctx, companyID, locationID)
	if err != nil {
		return err
	}
	location.Deactivate()
	return s.locationRepo.Save(ctx, location)
}

func (f ListFilter) toShared() shared.Filter {
	out := shared.DefaultFilter()
	if f.Page > 0 {
		out.Page = f.Page
	}
	if f.PageSize > 0 {
		out.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		out.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		out.OrderDir = f.OrderDir
	}
	if f.Search != "" {
		out.Filters["search"] = f.Search
	}
	return out
}

func toPartResponse(p *catalog.Part) *PartResponse {
	return &PartResponse{
		ID:          p.ID,
		CompanyID:   p.CompanyID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		UnitCost:    p.UnitCost,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toLocationResponse(l *catalog.Location) *LocationResponse {
	return &LocationResponse{
		ID:        l.ID,
		CompanyID: l.CompanyID,
		Code:      l.Code,
		Name:      l.Name,
		Address:   l.Address,
		Active:    l.Active,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}
