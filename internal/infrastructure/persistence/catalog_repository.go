package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/partsledger/backend/internal/domain/catalog"
	"github.com/partsledger/backend/internal/domain/ledger"
	"github.com/partsledger/backend/internal/domain/shared"
)

// GormPartRepository implements PartRepository using GORM
type GormPartRepository struct {
	db *gorm.DB
}

// NewGormPartRepository creates a new GormPartRepository
func NewGormPartRepository(db *gorm.DB) *GormPartRepository {
	return &GormPartRepository{db: db}
}

// FindByID finds a part by its ID
func (r *GormPartRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Part, error) {
	var part catalog.Part
	if err := r.db.WithContext(ctx).First(&part, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &part, nil
}

// FindByIDForCompany finds a part by ID within a company
func (r *GormPartRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*catalog.Part, error) {
	var part catalog.Part
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&part).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &part, nil
}

// FindBySKU finds a part by SKU within a company
func (r *GormPartRepository) FindBySKU(ctx context.Context, companyID uuid.UUID, sku string) (*catalog.Part, error) {
	var part catalog.Part
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND sku = ?", companyID, sku).
		First(&part).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &part, nil
}

// FindAllForCompany finds all parts for a company
func (r *GormPartRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]catalog.Part, error) {
	var parts []catalog.Part
	query := applyCatalogFilter(
		r.db.WithContext(ctx).Model(&catalog.Part{}).
			Where("company_id = ?", companyID),
		filter, "sku",
	)

	if err := query.Find(&parts).Error; err != nil {
		return nil, err
	}
	return parts, nil
}

// Save creates or updates a part
func (r *GormPartRepository) Save(ctx context.Context, part *catalog.Part) error {
	return r.db.WithContext(ctx).Save(part).Error
}

// CountForCompany counts parts for a company
func (r *GormPartRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&catalog.Part{}).Where("company_id = ?", companyID)
	if search, ok := filter.Filters["search"].(string); ok && search != "" {
		query = applySearch(query, search, "sku")
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GormLocationRepository implements LocationRepository using GORM
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GormLocationRepository
func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

// FindByID finds a location by its ID
func (r *GormLocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Location, error) {
	var location catalog.Location
	if err := r.db.WithContext(ctx).First(&location, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &location, nil
}

// FindByIDForCompany finds a location by ID within a company
func (r *GormLocationRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*catalog.Location, error) {
	var location catalog.Location
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&location).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &location, nil
}

// FindByCode finds a location by code within a company
func (r *GormLocationRepository) FindByCode(ctx context.Context, companyID uuid.UUID, code string) (*catalog.Location, error) {
	var location catalog.Location
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND code = ?", companyID, code).
		First(&location).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &location, nil
}

// FindAllForCompany finds all locations for a company
func (r *GormLocationRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]catalog.Location, error) {
	var locations []catalog.Location
	query := applyCatalogFilter(
		r.db.WithContext(ctx).Model(&catalog.Location{}).
			Where("company_id = ?", companyID),
		filter, "code",
	)

	if err := query.Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

// Save creates or updates a location
func (r *GormLocationRepository) Save(ctx context.Context, location *catalog.Location) error {
	return r.db.WithContext(ctx).Save(location).Error
}

// CountForCompany counts locations for a company
func (r *GormLocationRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&catalog.Location{}).Where("company_id = ?", companyID)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GormReferenceCatalog implements the ledger's reference validation against
// the catalog tables. The ledger only ever reads existence plus the part's
// fallback cost through this adapter.
type GormReferenceCatalog struct {
	db *gorm.DB
}

// NewGormReferenceCatalog creates a new GormReferenceCatalog
func NewGormReferenceCatalog(db *gorm.DB) *GormReferenceCatalog {
	return &GormReferenceCatalog{db: db}
}

// FindPart returns the part ref or ErrInvalidReference
func (c *GormReferenceCatalog) FindPart(ctx context.Context, companyID, partID uuid.UUID) (*ledger.PartRef, error) {
	var part catalog.Part
	if err := c.db.WithContext(ctx).
		Where("company_id = ? AND id = ? AND active = ?", companyID, partID, true).
		First(&part).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrInvalidReference
		}
		return nil, err
	}

	cost := part.UnitCost
	return &ledger.PartRef{ID: part.ID, SKU: part.SKU, UnitCost: &cost}, nil
}

// LocationExists reports whether the location exists for the company
func (c *GormReferenceCatalog) LocationExists(ctx context.Context, companyID, locationID uuid.UUID) (bool, error) {
	var count int64
	err := c.db.WithContext(ctx).
		Model(&catalog.Location{}).
		Where("company_id = ? AND id = ? AND active = ?", companyID, locationID, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyCatalogFilter applies shared filter options to catalog queries.
// codeColumn is the per-table identifier column matched alongside name.
func applyCatalogFilter(query *gorm.DB, filter shared.Filter, codeColumn string) *gorm.DB {
	if search, ok := filter.Filters["search"].(string); ok && search != "" {
		query = applySearch(query, search, codeColumn)
	}
	if active, ok := filter.Filters["active"].(bool); ok {
		query = query.Where("active = ?", active)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

func applySearch(query *gorm.DB, search string, codeColumn string) *gorm.DB {
	pattern := "%" + search + "%"
	return query.Where("name ILIKE ? OR "+codeColumn+" ILIKE ?", pattern, pattern)
}

// Ensure implementations
var (
	_ catalog.PartRepository     = (*GormPartRepository)(nil)
	_ catalog.LocationRepository = (*GormLocationRepository)(nil)
	_ ledger.ReferenceCatalog    = (*GormReferenceCatalog)(nil)
)
