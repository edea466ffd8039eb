package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/partsledger/backend/internal/domain/ledger"
	"github.com/partsledger/backend/internal/domain/shared"
)

// GormStockBalanceRepository implements StockBalanceRepository using GORM
type GormStockBalanceRepository struct {
	db *gorm.DB
}

// NewGormStockBalanceRepository creates a new GormStockBalanceRepository
func NewGormStockBalanceRepository(db *gorm.DB) *GormStockBalanceRepository {
	return &GormStockBalanceRepository{db: db}
}

// FindByID finds a stock balance by its ID
func (r *GormStockBalanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.StockBalance, error) {
	var balance ledger.StockBalance
	if err := r.db.WithContext(ctx).First(&balance, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &balance, nil
}

// FindByIDForCompany finds a stock balance by ID within a company
func (r *GormStockBalanceRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*ledger.StockBalance, error) {
	var balance ledger.StockBalance
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &balance, nil
}

// FindByTriple finds the balance for one (company, part, location) triple
func (r *GormStockBalanceRepository) FindByTriple(ctx context.Context, companyID, partID, locationID uuid.UUID) (*ledger.StockBalance, error) {
	var balance ledger.StockBalance
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND part_id = ? AND location_id = ?", companyID, partID, locationID).
		First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &balance, nil
}

// GetOrCreate gets the existing balance or creates a zero row for the triple
func (r *GormStockBalanceRepository) GetOrCreate(ctx context.Context, companyID, partID, locationID uuid.UUID) (*ledger.StockBalance, error) {
	balance, err := r.FindByTriple(ctx, companyID, partID, locationID)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	balance, err = ledger.NewStockBalance(companyID, partID, locationID)
	if err != nil {
		return nil, err
	}

	// ON CONFLICT covers the race where two operations create the triple
	// at the same time
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}, {Name: "part_id"}, {Name: "location_id"}},
			DoNothing: true,
		}).
		Create(balance)
	if result.Error != nil {
		return nil, result.Error
	}

	// Conflict means another writer created the row first: fetch theirs
	if result.RowsAffected == 0 {
		return r.FindByTriple(ctx, companyID, partID, locationID)
	}

	return balance, nil
}

// FindAllForCompany finds all balances for a company
func (r *GormStockBalanceRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]*ledger.StockBalance, error) {
	var balances []*ledger.StockBalance
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&ledger.StockBalance{}).
			Where("company_id = ?", companyID),
		filter,
	)

	if err := query.Find(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

// CountForCompany counts balances for a company
func (r *GormStockBalanceRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&ledger.StockBalance{}).
			Where("company_id = ?", companyID),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a balance without a version check
func (r *GormStockBalanceRepository) Save(ctx context.Context, balance *ledger.StockBalance) error {
	return r.db.WithContext(ctx).Save(balance).Error
}

// SaveWithLock saves with optimistic locking. The update only lands if the
// stored version still matches the version the aggregate was loaded at;
// otherwise another writer got there first and the caller must retry.
func (r *GormStockBalanceRepository) SaveWithLock(ctx context.Context, balance *ledger.StockBalance) error {
	result := r.db.WithContext(ctx).
		Model(balance).
		Where("id = ? AND version = ?", balance.ID, balance.Version).
		Updates(map[string]interface{}{
			"on_hand":         balance.OnHand,
			"reserved":        balance.Reserved,
			"available":       balance.Available,
			"average_cost":    balance.AverageCost,
			"last_counted_at": balance.LastCountedAt,
			"last_counted_by": balance.LastCountedBy,
			"version":         balance.Version + 1,
			"updated_at":      balance.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	balance.IncrementVersion()
	return nil
}

// SumValueByLocation returns sum(on_hand * average_cost) at a location
func (r *GormStockBalanceRepository) SumValueByLocation(ctx context.Context, companyID, locationID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&ledger.StockBalance{}).
		Select("COALESCE(SUM(on_hand * average_cost), 0)").
		Where("company_id = ? AND location_id = ?", companyID, locationID).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// applyFilter applies filter options to the query
func (r *GormStockBalanceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

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

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormStockBalanceRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "part_id":
			query = query.Where("part_id = ?", value)
		case "location_id":
			query = query.Where("location_id = ?", value)
		case "has_stock":
			if value == true {
				query = query.Where("on_hand > 0")
			}
		case "has_reservation":
			if value == true {
				query = query.Where("reserved > 0")
			}
		}
	}
	return query
}

// Ensure GormStockBalanceRepository implements StockBalanceRepository
var _ ledger.StockBalanceRepository = (*GormStockBalanceRepository)(nil)
