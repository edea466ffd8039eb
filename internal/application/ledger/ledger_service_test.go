package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partsledger/backend/internal/domain/ledger"
	"github.com/partsledger/backend/internal/domain/shared"
)

// memoryBalanceRepo is an in-memory StockBalanceRepository keyed by triple
type memoryBalanceRepo struct {
	mu       sync.Mutex
	balances map[string]ledger.StockBalance
	saveErr  error
}

func newMemoryBalanceRepo() *memoryBalanceRepo {
	return &memoryBalanceRepo{balances: make(map[string]ledger.StockBalance)}
}

func tripleKey(companyID, partID, locationID uuid.UUID) string {
	return fmt.Sprintf("%s|%s|%s", companyID, partID, locationID)
}

func (r *memoryBalanceRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.StockBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.balances {
		if b.ID == id {
			copied := b
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryBalanceRepo) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*ledger.StockBalance, error) {
	b, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.CompanyID != companyID {
		return nil, shared.ErrNotFound
	}
	return b, nil
}

func (r *memoryBalanceRepo) FindByTriple(_ context.Context, companyID, partID, locationID uuid.UUID) (*ledger.StockBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.balances[tripleKey(companyID, partID, locationID)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := b
	return &copied, nil
}

func (r *memoryBalanceRepo) GetOrCreate(_ context.Context, companyID, partID, locationID uuid.UUID) (*ledger.StockBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := tripleKey(companyID, partID, locationID)
	if b, ok := r.balances[key]; ok {
		copied := b
		return &copied, nil
	}
	b, err := ledger.NewStockBalance(companyID, partID, locationID)
	if err != nil {
		return nil, err
	}
	r.balances[key] = *b
	copied := *b
	return &copied, nil
}

func (r *memoryBalanceRepo) FindAllForCompany(_ context.Context, companyID uuid.UUID, _ shared.Filter) ([]*ledger.StockBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*ledger.StockBalance
	for _, b := range r.balances {
		if b.CompanyID == companyID {
			copied := b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memoryBalanceRepo) CountForCompany(_ context.Context, companyID uuid.UUID, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.balances {
		if b.CompanyID == companyID {
			n++
		}
	}
	return n, nil
}

func (r *memoryBalanceRepo) Save(_ context.Context, balance *ledger.StockBalance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[tripleKey(balance.CompanyID, balance.PartID, balance.LocationID)] = *balance
	return nil
}

func (r *memoryBalanceRepo) SaveWithLock(_ context.Context, balance *ledger.StockBalance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	key := tripleKey(balance.CompanyID, balance.PartID, balance.LocationID)
	stored, ok := r.balances[key]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != balance.Version {
		return shared.ErrConcurrencyConflict
	}
	balance.IncrementVersion()
	r.balances[key] = *balance
	return nil
}

func (r *memoryBalanceRepo) SumValueByLocation(_ context.Context, companyID, locationID uuid.UUID) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := decimal.Zero
	for _, b := range r.balances {
		if b.CompanyID == companyID && b.LocationID == locationID {
			total = total.Add(b.TotalValue())
		}
	}
	return total, nil
}

func (r *memoryBalanceRepo) snapshot() map[string]ledger.StockBalance {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := make(map[string]ledger.StockBalance, len(r.balances))
	for k, v := range r.balances {
		snap[k] = v
	}
	return snap
}

func (r *memoryBalanceRepo) restore(snap map[string]ledger.StockBalance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances = snap
}

// memoryEntryRepo is an in-memory append-only LedgerEntryRepository
type memoryEntryRepo struct {
	mu        sync.Mutex
	entries   []ledger.LedgerEntry
	createErr func(e *ledger.LedgerEntry) error
}

func newMemoryEntryRepo() *memoryEntryRepo {
	return &memoryEntryRepo{}
}

func (r *memoryEntryRepo) Create(_ context.Context, entry *ledger.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		if err := r.createErr(entry); err != nil {
			return err
		}
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memoryEntryRepo) FindByIDForCompany(_ context.Context, companyID, id uuid.UUID) (*ledger.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.CompanyID == companyID && e.ID == id {
			copied := e
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryEntryRepo) FindForCompany(_ context.Context, companyID uuid.UUID, query ledger.EntryQuery, _ shared.Filter) ([]*ledger.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*ledger.LedgerEntry
	for _, e := range r.entries {
		if e.CompanyID != companyID {
			continue
		}
		if query.PartID != nil && e.PartID != *query.PartID {
			continue
		}
		if query.LocationID != nil && e.LocationID != *query.LocationID {
			continue
		}
		if query.MovementType != nil && e.MovementType != *query.MovementType {
			continue
		}
		copied := e
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memoryEntryRepo) CountForCompany(ctx context.Context, companyID uuid.UUID, query ledger.EntryQuery) (int64, error) {
	entries, err := r.FindForCompany(ctx, companyID, query, shared.DefaultFilter())
	if err != nil {
		return 0, err
	}
	return int64(len(entries)), nil
}

func (r *memoryEntryRepo) FindByReference(_ context.Context, companyID uuid.UUID, reference string) ([]*ledger.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*ledger.LedgerEntry
	for _, e := range r.entries {
		if e.CompanyID == companyID && e.Reference == reference {
			copied := e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memoryEntryRepo) snapshot() []ledger.LedgerEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := make([]ledger.LedgerEntry, len(r.entries))
	copy(snap, r.entries)
	return snap
}

func (r *memoryEntryRepo) restore(snap []ledger.LedgerEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = snap
}

func (r *memoryEntryRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// fakeTxScope snapshots the in-memory stores before the unit of work and
// restores them on error, mimicking a rolled-back transaction
type fakeTxScope struct {
	balanceRepo *memoryBalanceRepo
	entryRepo   *memoryEntryRepo
}

func (s *fakeTxScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	balSnap := s.balanceRepo.snapshot()
	entSnap := s.entryRepo.snapshot()
	if err := fn(s); err != nil {
		s.balanceRepo.restore(balSnap)
		s.entryRepo.restore(entSnap)
		return err
	}
	return nil
}

func (s *fakeTxScope) BalanceRepo() ledger.StockBalanceRepository { return s.balanceRepo }
func (s *fakeTxScope) EntryRepo() ledger.LedgerEntryRepository    { return s.entryRepo }

// fakeCatalog resolves part and location references from fixed maps
type fakeCatalog struct {
	parts     map[uuid.UUID]*ledger.PartRef
	locations map[uuid.UUID]bool
}

func (c *fakeCatalog) FindPart(_ context.Context, _, partID uuid.UUID) (*ledger.PartRef, error) {
	part, ok := c.parts[partID]
	if !ok {
		return nil, shared.ErrInvalidReference
	}
	return part, nil
}

func (c *fakeCatalog) LocationExists(_ context.Context, _, locationID uuid.UUID) (bool, error) {
	return c.locations[locationID], nil
}

type serviceFixture struct {
	service     *StockLedgerService
	balanceRepo *memoryBalanceRepo
	entryRepo   *memoryEntryRepo
	catalog     *fakeCatalog
	companyID   uuid.UUID
	partID      uuid.UUID
	locationA   uuid.UUID
	locationB   uuid.UUID
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	f := &serviceFixture{
		balanceRepo: newMemoryBalanceRepo(),
		entryRepo:   newMemoryEntryRepo(),
		companyID:   uuid.New(),
		partID:      uuid.New(),
		locationA:   uuid.New(),
		locationB:   uuid.New(),
	}
	catalogCost := decimal.NewFromFloat(4.50)
	f.catalog = &fakeCatalog{
		parts: map[uuid.UUID]*ledger.PartRef{
			f.partID: {ID: f.partID, SKU: "BRG-6204", UnitCost: &catalogCost},
		},
		locations: map[uuid.UUID]bool{f.locationA: true, f.locationB: true},
	}
	scope := &fakeTxScope{balanceRepo: f.balanceRepo, entryRepo: f.entryRepo}
	f.service = NewStockLedgerService(scope, f.balanceRepo, f.entryRepo, f.catalog)
	return f
}

func (f *serviceFixture) receive(t *testing.T, locationID uuid.UUID, quantity int64, cost float64) {
	t.Helper()
	c := decimal.NewFromFloat(cost)
	_, err := f.service.AdjustStock(context.Background(), f.companyID, AdjustStockRequest{
		PartID:       f.partID,
		LocationID:   locationID,
		MovementType: "receipt",
		Quantity:     quantity,
		UnitCost:     &c,
	})
	require.NoError(t, err)
}

func TestStockLedgerService_AdjustStock(t *testing.T) {
	ctx := context.Background()

	t.Run("receipt creates balance and entry with weighted average", func(t *testing.T) {
		f := newServiceFixture(t)

		f.receive(t, f.locationA, 10, 5.00)
		resp, err := f.service.AdjustStock(ctx, f.companyID, AdjustStockRequest{
			PartID:       f.partID,
			LocationID:   f.locationA,
			MovementType: "receipt",
			Quantity:     10,
			UnitCost:     costOf(7.00),
		})

		require.NoError(t, err)
		assert.Equal(t, int64(20), resp.Balance.OnHand)
		assert.Equal(t, int64(20), resp.Balance.Available)
		assert.Equal(t, "6", resp.Balance.AverageCost.String())
		require.NotNil(t, resp.Entry.UnitCost)
		assert.Equal(t, "7", resp.Entry.UnitCost.String())
		require.NotNil(t, resp.Entry.TotalCost)
		assert.Equal(t, "70", resp.Entry.TotalCost.String())
		assert.Equal(t, int64(10), resp.Entry.BalanceBefore)
		assert.Equal(t, int64(20), resp.Entry.BalanceAfter)
		assert.Equal(t, 2, f.entryRepo.count())
	})

	t.Run("receipt without cost falls back to catalog cost", func(t *testing.T) {
		f := newServiceFixture(t)

		resp, err := f.service.AdjustStock(ctx, f.companyID, AdjustStockRequest{
			PartID:       f.partID,
			LocationID:   f.locationA,
			MovementType: "receipt",
			Quantity:     4,
		})

		require.NoError(t, err)
		assert.Equal(t, "4.5", resp.Balance.AverageCost.String())
		require.NotNil(t, resp.Entry.UnitCost)
		assert.Equal(t, "4.5", resp.Entry.UnitCost.String())
	})

	t.Run("issue values consumption at the current average", func(t *testing.T) {
		f := newServiceFixture(t)
		f.receive(t, f.locationA, 20, 6.00)

		resp, err := f.service.AdjustStock(ctx, f.companyID, AdjustStockRequest{
			PartID:       f.partID,
			LocationID:   f.locationA,
			MovementType: "issue",
			Quantity:     8,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(12), resp.Balance.OnHand)
		assert.Equal(t, "6", resp.Balance.AverageCost.String())
		require.NotNil(t, resp.Entry.UnitCost)
		assert.Equal(t, "6", resp.Entry.UnitCost.String())
	})

	t.Run("insufficient stock leaves state untouched", func(t *testing.T) {
		f := newServiceFixture(t)
		f.receive(t, f.locationA, 5, 2.00)
		entriesBefore := f.entryRepo.count()

		_, err := f.service.AdjustStock(ctx, f.companyID, AdjustStockRequest{
			PartID:       f.partID,
			LocationID:   f.locationA,
			MovementType: "issue",
			Quantity:     6,
		})

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, entriesBefore, f.entryRepo.count())
		balance, err := f.balanceRepo.FindByTriple(ctx, f.companyID, f.partID, f.locationA)
		require.NoError(t, err)
		assert.Equal(t, int64(5), balance.OnHand)
	})

	t.Run("negative adjustment beyond on-hand fails with negative stock", func(t *testing.T) {
		f := newServiceFixture(t)
		f.receive(t, f.locationA, 3, 2.00)

		_, err := f.service.AdjustStock(ctx, f.companyID, AdjustStockRequest{
			PartID:       f.partID,
			LocationID:   f.locationA,
			MovementType: "adjustment",
			Quantity:     -4,
		})

		assert.ErrorIs(t, err, shared.ErrNegativeStock)
	})

	t.Run("zero adjustment delta is rejected", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.AdjustStock(ctx, f.companyID, AdjustStockRequest{
			PartID:       f.partID,
			LocationID:   f.locationA,
			MovementType: "adjustment",
			Quantity:     0,
		})

		require.Error(t, err)
	})

	t.Run("unknown part fails with invalid reference", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.AdjustStock(ctx, f.companyID, AdjustStockRequest{
			PartID:       uuid.New(),
			LocationID:   f.locationA,
			MovementType: "receipt",
			Quantity:     1,
		})

		assert.ErrorIs(t, err, shared.ErrInvalidReference)
	})

	t.Run("unknown location fails with invalid reference", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.AdjustStock(ctx, f.companyID, AdjustStockRequest{
			PartID:       f.partID,
			LocationID:   uuid.New(),
			MovementType: "receipt",
			Quantity:     1,
		})

		assert.ErrorIs(t, err, shared.ErrInvalidReference)
	})

	t.Run("unknown movement type is rejected", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.AdjustStock(ctx, f.companyID, AdjustStockRequest{
			PartID:       f.partID,
			LocationID:   f.locationA,
			MovementType: "teleport",
			Quantity:     1,
		})

		assert.ErrorIs(t, err, shared.ErrInvalidMovementType)
	})

	t.Run("transfer legs cannot be applied directly", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.AdjustStock(ctx, f.companyID, AdjustStockRequest{
			PartID:       f.partID,
			LocationID:   f.locationA,
			MovementType: "transfer_out",
			Quantity:     1,
		})

		assert.ErrorIs(t, err, shared.ErrInvalidMovementType)
	})

	t.Run("storage failure is wrapped as storage error", func(t *testing.T) {
		f := newServiceFixture(t)
		f.receive(t, f.locationA, 5, 1.00)
		f.balanceRepo.saveErr = errors.New("connection refused")

		_, err := f.service.AdjustStock(ctx, f.companyID, AdjustStockRequest{
			PartID:       f.partID,
			LocationID:   f.locationA,
			MovementType: "issue",
			Quantity:     1,
		})

		var storageErr *shared.StorageError
		require.ErrorAs(t, err, &storageErr)
	})
}

func TestStockLedgerService_Transfer(t *testing.T) {
	ctx := context.Background()

	t.Run("moves stock and preserves cost continuity", func(t *testing.T) {
		f := newServiceFixture(t)
		f.receive(t, f.locationA, 10, 5.00)

		resp, err := f.service.Transfer(ctx, f.companyID, TransferStockRequest{
			PartID:         f.partID,
			FromLocationID: f.locationA,
			ToLocationID:   f.locationB,
			Quantity:       4,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(6), resp.FromBalance.OnHand)
		assert.Equal(t, int64(4), resp.ToBalance.OnHand)
		assert.Equal(t, "5", resp.ToBalance.AverageCost.String())

		// Value is conserved across the move
		total := resp.FromBalance.TotalValue.Add(resp.ToBalance.TotalValue)
		assert.Equal(t, "50", total.String())
	})

	t.Run("writes two linked entries sharing a reference", func(t *testing.T) {
		f := newServiceFixture(t)
		f.receive(t, f.locationA, 10, 5.00)

		resp, err := f.service.Transfer(ctx, f.companyID, TransferStockRequest{
			PartID:         f.partID,
			FromLocationID: f.locationA,
			ToLocationID:   f.locationB,
			Quantity:       4,
			Reference:      "TRF-042",
		})

		require.NoError(t, err)
		assert.Equal(t, "transfer_out", resp.OutEntry.MovementType)
		assert.Equal(t, "transfer_in", resp.InEntry.MovementType)
		assert.Equal(t, "TRF-042", resp.OutEntry.Reference)
		assert.Equal(t, "TRF-042", resp.InEntry.Reference)
		assert.Equal(t, "transfer", resp.OutEntry.ReferenceType)
		require.NotNil(t, resp.OutEntry.RelatedID)
		assert.Equal(t, resp.InEntry.ID, *resp.OutEntry.RelatedID)
		require.NotNil(t, resp.InEntry.RelatedID)
		assert.Equal(t, resp.OutEntry.ID, *resp.InEntry.RelatedID)
		require.NotNil(t, resp.OutEntry.FromLocationID)
		assert.Equal(t, f.locationA, *resp.OutEntry.FromLocationID)
		require.NotNil(t, resp.InEntry.ToLocationID)
		assert.Equal(t, f.locationB, *resp.InEntry.ToLocationID)

		entries, err := f.service.GetEntriesByReference(ctx, f.companyID, "TRF-042")
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("generates a reference when none is supplied", func(t *testing.T) {
		f := newServiceFixture(t)
		f.receive(t, f.locationA, 10, 5.00)

		resp, err := f.service.Transfer(ctx, f.companyID, TransferStockRequest{
			PartID:         f.partID,
			FromLocationID: f.locationA,
			ToLocationID:   f.locationB,
			Quantity:       1,
		})

		require.NoError(t, err)
		assert.NotEmpty(t, resp.OutEntry.Reference)
		assert.Equal(t, resp.OutEntry.Reference, resp.InEntry.Reference)
	})

	t.Run("explicit cost override reprices the inbound leg", func(t *testing.T) {
		f := newServiceFixture(t)
		f.receive(t, f.locationA, 10, 5.00)

		resp, err := f.service.Transfer(ctx, f.companyID, TransferStockRequest{
			PartID:         f.partID,
			FromLocationID: f.locationA,
			ToLocationID:   f.locationB,
			Quantity:       4,
			UnitCost:       costOf(9.00),
		})

		require.NoError(t, err)
		assert.Equal(t, "9", resp.ToBalance.AverageCost.String())
	})

	t.Run("insufficient stock at source fails whole transfer", func(t *testing.T) {
		f := newServiceFixture(t)
		f.receive(t, f.locationA, 3, 5.00)
		entriesBefore := f.entryRepo.count()

		_, err := f.service.Transfer(ctx, f.companyID, TransferStockRequest{
			PartID:         f.partID,
			FromLocationID: f.locationA,
			ToLocationID:   f.locationB,
			Quantity:       4,
		})

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, entriesBefore, f.entryRepo.count())
		balance, err := f.balanceRepo.FindByTriple(ctx, f.companyID, f.partID, f.locationA)
		require.NoError(t, err)
		assert.Equal(t, int64(3), balance.OnHand)
	})

	t.Run("failure on the inbound leg rolls back the outbound leg", func(t *testing.T) {
		f := newServiceFixture(t)
		f.receive(t, f.locationA, 10, 5.00)
		entriesBefore := f.entryRepo.count()

		f.entryRepo.createErr = func(e *ledger.LedgerEntry) error {
			if e.MovementType == ledger.MovementTransferIn {
				return errors.New("disk full")
			}
			return nil
		}

		_, err := f.service.Transfer(ctx, f.companyID, TransferStockRequest{
			PartID:         f.partID,
			FromLocationID: f.locationA,
			ToLocationID:   f.locationB,
			Quantity:       4,
		})

		require.Error(t, err)
		assert.Equal(t, entriesBefore, f.entryRepo.count())
		source, err := f.balanceRepo.FindByTriple(ctx, f.companyID, f.partID, f.locationA)
		require.NoError(t, err)
		assert.Equal(t, int64(10), source.OnHand)
	})

	t.Run("same source and destination is rejected", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.Transfer(ctx, f.companyID, TransferStockRequest{
			PartID:         f.partID,
			FromLocationID: f.locationA,
			ToLocationID:   f.locationA,
			Quantity:       1,
		})

		require.Error(t, err)
	})
}

func TestStockLedgerService_ReserveAndRelease(t *testing.T) {
	ctx := context.Background()

	t.Run("reserve and release round trip restores balance", func(t *testing.T) {
		f := newServiceFixture(t)
		f.receive(t, f.locationA, 10, 5.00)
		entriesBefore := f.entryRepo.count()

		reserved, err := f.service.ReserveStock(ctx, f.companyID, ReserveStockRequest{
			PartID:     f.partID,
			LocationID: f.locationA,
			Quantity:   6,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(10), reserved.OnHand)
		assert.Equal(t, int64(6), reserved.Reserved)
		assert.Equal(t, int64(4), reserved.Available)

		released, err := f.service.ReleaseReservedStock(ctx, f.companyID, ReleaseStockRequest{
			PartID:     f.partID,
			LocationID: f.locationA,
			Quantity:   6,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(10), released.OnHand)
		assert.Zero(t, released.Reserved)
		assert.Equal(t, int64(10), released.Available)

		// Reservations are not physical movements
		assert.Equal(t, entriesBefore, f.entryRepo.count())
	})

	t.Run("reserve beyond available fails", func(t *testing.T) {
		f := newServiceFixture(t)
		f.receive(t, f.locationA, 5, 5.00)

		_, err := f.service.ReserveStock(ctx, f.companyID, ReserveStockRequest{
			PartID:     f.partID,
			LocationID: f.locationA,
			Quantity:   6,
		})

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})

	t.Run("release beyond reserved fails", func(t *testing.T) {
		f := newServiceFixture(t)
		f.receive(t, f.locationA, 10, 5.00)

		_, err := f.service.ReleaseReservedStock(ctx, f.companyID, ReleaseStockRequest{
			PartID:     f.partID,
			LocationID: f.locationA,
			Quantity:   1,
		})

		assert.ErrorIs(t, err, shared.ErrInsufficientReservation)
	})

	t.Run("reserved stock cannot be issued", func(t *testing.T) {
		f := newServiceFixture(t)
		f.receive(t, f.locationA, 10, 5.00)
		_, err := f.service.ReserveStock(ctx, f.companyID, ReserveStockRequest{
			PartID:     f.partID,
			LocationID: f.locationA,
			Quantity:   7,
		})
		require.NoError(t, err)

		_, err = f.service.AdjustStock(ctx, f.companyID, AdjustStockRequest{
			PartID:       f.partID,
			LocationID:   f.locationA,
			MovementType: "issue",
			Quantity:     4,
		})

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})
}

func TestStockLedgerService_PerformStockCount(t *testing.T) {
	ctx := context.Background()

	t.Run("zero delta writes no entry but refreshes audit fields", func(t *testing.T) {
		f := newServiceFixture(t)
		f.receive(t, f.locationA, 10, 5.00)
		entriesBefore := f.entryRepo.count()
		countedBy := uuid.New()

		resp, err := f.service.PerformStockCount(ctx, f.companyID, StockCountRequest{
			PartID:     f.partID,
			LocationID: f.locationA,
			CountedQty: 10,
			UserID:     &countedBy,
		})

		require.NoError(t, err)
		assert.Zero(t, resp.Delta)
		assert.Nil(t, resp.Entry)
		assert.Equal(t, entriesBefore, f.entryRepo.count())
		require.NotNil(t, resp.Balance.LastCountedAt)
		require.NotNil(t, resp.Balance.LastCountedBy)
		assert.Equal(t, countedBy, *resp.Balance.LastCountedBy)
	})

	t.Run("shortfall writes a physical count adjustment", func(t *testing.T) {
		f := newServiceFixture(t)
		f.receive(t, f.locationA, 10, 5.00)

		resp, err := f.service.PerformStockCount(ctx, f.companyID, StockCountRequest{
			PartID:     f.partID,
			LocationID: f.locationA,
			CountedQty: 7,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(-3), resp.Delta)
		require.NotNil(t, resp.Entry)
		assert.Equal(t, "adjustment", resp.Entry.MovementType)
		assert.Equal(t, int64(-3), resp.Entry.Quantity)
		assert.Equal(t, "Physical Count", resp.Entry.Reason)
		assert.Equal(t, int64(7), resp.Balance.OnHand)
		// Shrinkage does not reprice remaining stock
		assert.Equal(t, "5", resp.Balance.AverageCost.String())
	})

	t.Run("surplus re-averages with the catalog cost", func(t *testing.T) {
		f := newServiceFixture(t)
		f.receive(t, f.locationA, 10, 5.00)

		resp, err := f.service.PerformStockCount(ctx, f.companyID, StockCountRequest{
			PartID:     f.partID,
			LocationID: f.locationA,
			CountedQty: 12,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(2), resp.Delta)
		require.NotNil(t, resp.Entry)
		// (10*5 + 2*4.5) / 12 = 4.9167
		assert.Equal(t, "4.9167", resp.Balance.AverageCost.String())
	})

	t.Run("negative counted quantity is rejected", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.PerformStockCount(ctx, f.companyID, StockCountRequest{
			PartID:     f.partID,
			LocationID: f.locationA,
			CountedQty: -1,
		})

		require.Error(t, err)
	})
}

func TestStockLedgerService_Reads(t *testing.T) {
	ctx := context.Background()

	t.Run("get balance returns not found for untouched triple", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.GetBalance(ctx, f.companyID, f.partID, f.locationA)

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("location value sums on-hand at average cost", func(t *testing.T) {
		f := newServiceFixture(t)
		f.receive(t, f.locationA, 10, 5.00)

		resp, err := f.service.GetLocationValue(ctx, f.companyID, f.locationA)

		require.NoError(t, err)
		assert.Equal(t, "50", resp.TotalValue.String())
	})

	t.Run("list entries filters by movement type", func(t *testing.T) {
		f := newServiceFixture(t)
		f.receive(t, f.locationA, 10, 5.00)
		_, err := f.service.AdjustStock(ctx, f.companyID, AdjustStockRequest{
			PartID:       f.partID,
			LocationID:   f.locationA,
			MovementType: "issue",
			Quantity:     2,
		})
		require.NoError(t, err)

		page, err := f.service.ListEntries(ctx, f.companyID, EntryListFilter{MovementType: "issue"})

		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("events are published after committed mutations", func(t *testing.T) {
		f := newServiceFixture(t)
		publisher := NewMockEventPublisher()
		f.service.SetEventPublisher(publisher)

		f.receive(t, f.locationA, 10, 5.00)

		increased := publisher.GetEventsByType(ledger.EventTypeStockIncreased)
		require.Len(t, increased, 1)
	})
}

// MockEventPublisher collects published events for assertions
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{events: make([]shared.DomainEvent, 0)}
}

func (m *MockEventPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

func costOf(f float64) *decimal.Decimal {
	c := decimal.NewFromFloat(f)
	return &c
}
