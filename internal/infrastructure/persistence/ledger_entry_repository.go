package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/partsledger/backend/internal/domain/ledger"
	"github.com/partsledger/backend/internal/domain/shared"
)

// GormLedgerEntryRepository implements LedgerEntryRepository using GORM.
// The table is append-only: no update or delete paths exist.
type GormLedgerEntryRepository struct {
	db *gorm.DB
}

// NewGormLedgerEntryRepository creates a new GormLedgerEntryRepository
func NewGormLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: db}
}

// Create appends a new ledger entry
func (r *GormLedgerEntryRepository) Create(ctx context.Context, entry *ledger.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByIDForCompany finds an entry by ID within a company
func (r *GormLedgerEntryRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*ledger.LedgerEntry, error) {
	var entry ledger.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindForCompany finds entries for a company, newest first
func (r *GormLedgerEntryRepository) FindForCompany(ctx context.Context, companyID uuid.UUID, query ledger.EntryQuery, filter shared.Filter) ([]*ledger.LedgerEntry, error) {
	var entries []*ledger.LedgerEntry
	q := r.applyQuery(
		r.db.WithContext(ctx).Model(&ledger.LedgerEntry{}).
			Where("company_id = ?", companyID),
		query,
	)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		q = q.Offset(offset).Limit(filter.PageSize)
	}
	q = q.Order("occurred_at DESC")

	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CountForCompany counts entries matching the query
func (r *GormLedgerEntryRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, query ledger.EntryQuery) (int64, error) {
	var count int64
	q := r.applyQuery(
		r.db.WithContext(ctx).Model(&ledger.LedgerEntry{}).
			Where("company_id = ?", companyID),
		query,
	)

	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByReference finds entries carrying a reference string, such as the
// two legs of one transfer
func (r *GormLedgerEntryRepository) FindByReference(ctx context.Context, companyID uuid.UUID, reference string) ([]*ledger.LedgerEntry, error) {
	var entries []*ledger.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND reference = ?", companyID, reference).
		Order("occurred_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// applyQuery narrows the statement to the given entry query
func (r *GormLedgerEntryRepository) applyQuery(q *gorm.DB, query ledger.EntryQuery) *gorm.DB {
	if query.PartID != nil {
		q = q.Where("part_id = ?", *query.PartID)
	}
	if query.LocationID != nil {
		q = q.Where("location_id = ?", *query.LocationID)
	}
	if query.MovementType != nil {
		q = q.Where("movement_type = ?", *query.MovementType)
	}
	if query.From != nil {
		q = q.Where("occurred_at >= ?", *query.From)
	}
	if query.To != nil {
		q = q.Where("occurred_at <= ?", *query.To)
	}
	return q
}

// Ensure GormLedgerEntryRepository implements LedgerEntryRepository
var _ ledger.LedgerEntryRepository = (*GormLedgerEntryRepository)(nil)
