package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/partsledger/backend/internal/domain/ledger"
	"github.com/partsledger/backend/internal/domain/shared"
)

// StockLedgerService is the sole writer of stock balances and ledger
// entries. Each operation validates its part and location references,
// then runs the read-modify-write cycle for the affected triples inside
// one transaction scope.
type StockLedgerService struct {
	txScope        TransactionScope
	balanceRepo    ledger.StockBalanceRepository
	entryRepo      ledger.LedgerEntryRepository
	catalog        ledger.ReferenceCatalog
	eventPublisher shared.EventPublisher
}

// NewStockLedgerService creates a new StockLedgerService
func NewStockLedgerService(
	txScope TransactionScope,
	balanceRepo ledger.StockBalanceRepository,
	entryRepo ledger.LedgerEntryRepository,
	catalog ledger.ReferenceCatalog,
) *StockLedgerService {
	return &StockLedgerService{
		txScope:     txScope,
		balanceRepo: balanceRepo,
		entryRepo:   entryRepo,
		catalog:     catalog,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *StockLedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// AdjustStock applies one movement to a (part, location) triple. Receipt,
// issue and return take a positive quantity; adjustment takes a signed
// delta. Transfer legs are not accepted here: they only exist as the two
// halves of Transfer.
func (s *StockLedgerService) AdjustStock(ctx context.Context, companyID uuid.UUID, req AdjustStockRequest) (*AdjustStockResponse, error) {
	movementType, err := ledger.ParseMovementType(req.MovementType)
	if err != nil {
		return nil, err
	}

	details := ledger.Details{
		Reason:    req.Reason,
		Notes:     req.Notes,
		Reference: req.Reference,
		RelatedID: req.RelatedID,
	}

	var movement ledger.Movement
	switch movementType {
	case ledger.MovementReceipt:
		movement = ledger.Receipt{Details: details, Quantity: req.Quantity, UnitCost: req.UnitCost}
	case ledger.MovementIssue:
		movement = ledger.Issue{Details: details, Quantity: req.Quantity}
	case ledger.MovementReturn:
		movement = ledger.Return{Details: details, Quantity: req.Quantity, UnitCost: req.UnitCost}
	case ledger.MovementAdjustment:
		movement = ledger.Adjustment{Details: details, Delta: req.Quantity, UnitCost: req.UnitCost}
	default:
		return nil, shared.ErrInvalidMovementType
	}
	if err := movement.Validate(); err != nil {
		return nil, err
	}

	part, err := s.resolveReferences(ctx, companyID, req.PartID, req.LocationID)
	if err != nil {
		return nil, err
	}

	var (
		balance *ledger.StockBalance
		entry   *ledger.LedgerEntry
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		balance, err = repos.BalanceRepo().GetOrCreate(ctx, companyID, req.PartID, req.LocationID)
		if err != nil {
			return err
		}

		entry, err = s.applyMovement(balance, movement, part)
		if err != nil {
			return err
		}
		if req.UserID != nil {
			entry.WithUser(*req.UserID)
		}

		if err := balance.CheckInvariants(); err != nil {
			return err
		}
		if err := repos.BalanceRepo().SaveWithLock(ctx, balance); err != nil {
			return err
		}
		return repos.EntryRepo().Create(ctx, entry)
	})
	if err != nil {
		return nil, wrapStorage(err)
	}

	s.publishDomainEvents(ctx, balance)

	return &AdjustStockResponse{
		Entry:   toEntryResponse(entry),
		Balance: toBalanceResponse(balance),
	}, nil
}

// Transfer moves quantity from one location to another as a single unit of
// work: a transfer_out leg and a transfer_in leg that commit together or
// not at all. Without an explicit cost override the destination inherits
// the source location's average cost at the time of the call.
func (s *StockLedgerService) Transfer(ctx context.Context, companyID uuid.UUID, req TransferStockRequest) (*TransferStockResponse, error) {
	if req.FromLocationID == req.ToLocationID {
		return nil, shared.NewDomainError("INVALID_INPUT", "Transfer source and destination must differ")
	}

	if _, err := s.resolveReferences(ctx, companyID, req.PartID, req.FromLocationID); err != nil {
		return nil, err
	}
	if err := s.requireLocation(ctx, companyID, req.ToLocationID); err != nil {
		return nil, err
	}

	reference := req.Reference
	if reference == "" {
		reference = "TRF-" + strings.ToUpper(uuid.NewString()[:8])
	}
	details := ledger.Details{
		Reason:        req.Reason,
		Notes:         req.Notes,
		Reference:     reference,
		ReferenceType: ledger.ReferenceTypeTransfer,
	}

	outbound := ledger.TransferOut{Details: details, Quantity: req.Quantity, ToLocationID: req.ToLocationID}
	if err := outbound.Validate(); err != nil {
		return nil, err
	}

	var (
		fromBalance *ledger.StockBalance
		toBalance   *ledger.StockBalance
		outEntry    *ledger.LedgerEntry
		inEntry     *ledger.LedgerEntry
		unitCost    *decimal.Decimal
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		fromBalance, err = repos.BalanceRepo().GetOrCreate(ctx, companyID, req.PartID, req.FromLocationID)
		if err != nil {
			return err
		}
		toBalance, err = repos.BalanceRepo().GetOrCreate(ctx, companyID, req.PartID, req.ToLocationID)
		if err != nil {
			return err
		}

		// Cost continuity: capture the source average before the outbound
		// leg mutates anything
		sourceAverage := fromBalance.AverageCost
		unitCost = ledger.ResolveUnitCost(req.UnitCost, &sourceAverage)

		inbound := ledger.TransferIn{
			Details:        details,
			Quantity:       req.Quantity,
			UnitCost:       unitCost,
			FromLocationID: req.FromLocationID,
		}
		if err := inbound.Validate(); err != nil {
			return err
		}

		outBefore := fromBalance.OnHand
		if err := fromBalance.ApplyOutbound(ledger.MovementTransferOut, req.Quantity); err != nil {
			return err
		}
		outEntry, err = ledger.NewLedgerEntry(
			companyID, req.PartID, req.FromLocationID,
			ledger.MovementTransferOut, req.Quantity, unitCost,
			outBefore, fromBalance.OnHand,
		)
		if err != nil {
			return err
		}

		inBefore := toBalance.OnHand
		if err := toBalance.ApplyInbound(ledger.MovementTransferIn, req.Quantity, unitCost); err != nil {
			return err
		}
		inEntry, err = ledger.NewLedgerEntry(
			companyID, req.PartID, req.ToLocationID,
			ledger.MovementTransferIn, req.Quantity, unitCost,
			inBefore, toBalance.OnHand,
		)
		if err != nil {
			return err
		}

		outEntry.WithDetails(details).WithTransferRoute(req.FromLocationID, req.ToLocationID)
		inEntry.WithDetails(details).WithTransferRoute(req.FromLocationID, req.ToLocationID)
		outEntry.RelatedID = &inEntry.ID
		inEntry.RelatedID = &outEntry.ID
		if req.UserID != nil {
			outEntry.WithUser(*req.UserID)
			inEntry.WithUser(*req.UserID)
		}

		if err := fromBalance.CheckInvariants(); err != nil {
			return err
		}
		if err := toBalance.CheckInvariants(); err != nil {
			return err
		}
		if err := repos.BalanceRepo().SaveWithLock(ctx, fromBalance); err != nil {
			return err
		}
		if err := repos.BalanceRepo().SaveWithLock(ctx, toBalance); err != nil {
			return err
		}
		if err := repos.EntryRepo().Create(ctx, outEntry); err != nil {
			return err
		}
		return repos.EntryRepo().Create(ctx, inEntry)
	})
	if err != nil {
		return nil, wrapStorage(err)
	}

	s.publishDomainEvents(ctx, fromBalance)
	s.publishDomainEvents(ctx, toBalance)
	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, ledger.NewStockTransferredEvent(fromBalance, req.ToLocationID, req.Quantity, unitCost, reference))
	}

	return &TransferStockResponse{
		OutEntry:    toEntryResponse(outEntry),
		InEntry:     toEntryResponse(inEntry),
		FromBalance: toBalanceResponse(fromBalance),
		ToBalance:   toBalanceResponse(toBalance),
	}, nil
}

// ReserveStock earmarks available quantity on a triple. Reservation is not
// a physical movement, so only the balance changes and no ledger entry is
// written.
func (s *StockLedgerService) ReserveStock(ctx context.Context, companyID uuid.UUID, req ReserveStockRequest) (*StockBalanceResponse, error) {
	if _, err := s.resolveReferences(ctx, companyID, req.PartID, req.LocationID); err != nil {
		return nil, err
	}

	var balance *ledger.StockBalance
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		balance, err = repos.BalanceRepo().GetOrCreate(ctx, companyID, req.PartID, req.LocationID)
		if err != nil {
			return err
		}
		if err := balance.Reserve(req.Quantity); err != nil {
			return err
		}
		if err := balance.CheckInvariants(); err != nil {
			return err
		}
		return repos.BalanceRepo().SaveWithLock(ctx, balance)
	})
	if err != nil {
		return nil, wrapStorage(err)
	}

	s.publishDomainEvents(ctx, balance)
	return toBalanceResponse(balance), nil
}

// ReleaseReservedStock returns previously reserved quantity to available.
func (s *StockLedgerService) ReleaseReservedStock(ctx context.Context, companyID uuid.UUID, req ReleaseStockRequest) (*StockBalanceResponse, error) {
	if _, err := s.resolveReferences(ctx, companyID, req.PartID, req.LocationID); err != nil {
		return nil, err
	}

	var balance *ledger.StockBalance
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		balance, err = repos.BalanceRepo().GetOrCreate(ctx, companyID, req.PartID, req.LocationID)
		if err != nil {
			return err
		}
		if err := balance.Release(req.Quantity); err != nil {
			return err
		}
		if err := balance.CheckInvariants(); err != nil {
			return err
		}
		return repos.BalanceRepo().SaveWithLock(ctx, balance)
	})
	if err != nil {
		return nil, wrapStorage(err)
	}

	s.publishDomainEvents(ctx, balance)
	return toBalanceResponse(balance), nil
}

// PerformStockCount reconciles the book quantity against a physical count.
// A zero delta refreshes the audit fields without writing an entry; any
// other delta becomes an adjustment with reason "Physical Count".
func (s *StockLedgerService) PerformStockCount(ctx context.Context, companyID uuid.UUID, req StockCountRequest) (*StockCountResponse, error) {
	if req.CountedQty < 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Counted quantity cannot be negative")
	}

	part, err := s.resolveReferences(ctx, companyID, req.PartID, req.LocationID)
	if err != nil {
		return nil, err
	}

	var (
		balance *ledger.StockBalance
		entry   *ledger.LedgerEntry
		delta   int64
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		balance, err = repos.BalanceRepo().GetOrCreate(ctx, companyID, req.PartID, req.LocationID)
		if err != nil {
			return err
		}

		delta = req.CountedQty - balance.OnHand
		now := time.Now()

		if delta != 0 {
			var unitCost *decimal.Decimal
			if delta > 0 {
				unitCost = ledger.ResolveUnitCost(nil, part.UnitCost)
			}
			before := balance.OnHand
			if err := balance.ApplyAdjustment(delta, unitCost); err != nil {
				return err
			}
			entry, err = ledger.NewLedgerEntry(
				companyID, req.PartID, req.LocationID,
				ledger.MovementAdjustment, delta, unitCost,
				before, balance.OnHand,
			)
			if err != nil {
				return err
			}
			entry.WithDetails(ledger.Details{Reason: ledger.PhysicalCountReason, Notes: req.Notes})
			if req.UserID != nil {
				entry.WithUser(*req.UserID)
			}
		}

		balance.MarkCounted(now, req.UserID)
		balance.AddDomainEvent(ledger.NewStockCountedEvent(balance, req.CountedQty, delta, derefOrNil(req.UserID)))

		if err := balance.CheckInvariants(); err != nil {
			return err
		}
		if err := repos.BalanceRepo().SaveWithLock(ctx, balance); err != nil {
			return err
		}
		if entry != nil {
			return repos.EntryRepo().Create(ctx, entry)
		}
		return nil
	})
	if err != nil {
		return nil, wrapStorage(err)
	}

	s.publishDomainEvents(ctx, balance)

	resp := &StockCountResponse{
		Delta:   delta,
		Balance: toBalanceResponse(balance),
	}
	if entry != nil {
		resp.Entry = toEntryResponse(entry)
	}
	return resp, nil
}

// GetBalanceByID returns one balance row by ID
func (s *StockLedgerService) GetBalanceByID(ctx context.Context, companyID, balanceID uuid.UUID) (*StockBalanceResponse, error) {
	balance, err := s.balanceRepo.FindByIDForCompany(ctx, companyID, balanceID)
	if err != nil {
		return nil, wrapStorage(err)
	}
	return toBalanceResponse(balance), nil
}

// GetBalance returns the balance for one triple
func (s *StockLedgerService) GetBalance(ctx context.Context, companyID, partID, locationID uuid.UUID) (*StockBalanceResponse, error) {
	balance, err := s.balanceRepo.FindByTriple(ctx, companyID, partID, locationID)
	if err != nil {
		return nil, wrapStorage(err)
	}
	return toBalanceResponse(balance), nil
}

// ListBalances returns balances for a company with pagination
func (s *StockLedgerService) ListBalances(ctx context.Context, companyID uuid.UUID, filter BalanceListFilter) (*shared.Paginated[*StockBalanceResponse], error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	if filter.PartID != nil {
		f.Filters["part_id"] = *filter.PartID
	}
	if filter.LocationID != nil {
		f.Filters["location_id"] = *filter.LocationID
	}

	balances, err := s.balanceRepo.FindAllForCompany(ctx, companyID, f)
	if err != nil {
		return nil, wrapStorage(err)
	}
	total, err := s.balanceRepo.CountForCompany(ctx, companyID, f)
	if err != nil {
		return nil, wrapStorage(err)
	}

	page := shared.NewPaginated(toBalanceResponses(balances), total, f.Page, f.PageSize)
	return &page, nil
}

// ListEntries returns ledger history for a company, newest first
func (s *StockLedgerService) ListEntries(ctx context.Context, companyID uuid.UUID, filter EntryListFilter) (*shared.Paginated[*LedgerEntryResponse], error) {
	query := ledger.EntryQuery{
		PartID:     filter.PartID,
		LocationID: filter.LocationID,
		From:       filter.From,
		To:         filter.To,
	}
	if filter.MovementType != "" {
		movementType, err := ledger.ParseMovementType(filter.MovementType)
		if err != nil {
			return nil, err
		}
		query.MovementType = &movementType
	}

	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	f.OrderBy = "occurred_at"

	entries, err := s.entryRepo.FindForCompany(ctx, companyID, query, f)
	if err != nil {
		return nil, wrapStorage(err)
	}
	total, err := s.entryRepo.CountForCompany(ctx, companyID, query)
	if err != nil {
		return nil, wrapStorage(err)
	}

	page := shared.NewPaginated(toEntryResponses(entries), total, f.Page, f.PageSize)
	return &page, nil
}

// GetEntry returns one ledger entry by ID
func (s *StockLedgerService) GetEntry(ctx context.Context, companyID, entryID uuid.UUID) (*LedgerEntryResponse, error) {
	entry, err := s.entryRepo.FindByIDForCompany(ctx, companyID, entryID)
	if err != nil {
		return nil, wrapStorage(err)
	}
	return toEntryResponse(entry), nil
}

// GetEntriesByReference returns the entries sharing one reference, such as
// the two legs of a transfer
func (s *StockLedgerService) GetEntriesByReference(ctx context.Context, companyID uuid.UUID, reference string) ([]*LedgerEntryResponse, error) {
	if reference == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Reference cannot be empty")
	}
	entries, err := s.entryRepo.FindByReference(ctx, companyID, reference)
	if err != nil {
		return nil, wrapStorage(err)
	}
	return toEntryResponses(entries), nil
}

// GetLocationValue returns the total on-hand value at a location
func (s *StockLedgerService) GetLocationValue(ctx context.Context, companyID, locationID uuid.UUID) (*LocationValueResponse, error) {
	if err := s.requireLocation(ctx, companyID, locationID); err != nil {
		return nil, err
	}
	total, err := s.balanceRepo.SumValueByLocation(ctx, companyID, locationID)
	if err != nil {
		return nil, wrapStorage(err)
	}
	return &LocationValueResponse{LocationID: locationID, TotalValue: total}, nil
}

// applyMovement mutates the balance for one movement and builds the entry
// describing it. The entry's unit cost is the resolved inbound cost for
// arrivals and the current average for issues, so consumption is valued at
// the book rate.
func (s *StockLedgerService) applyMovement(balance *ledger.StockBalance, movement ledger.Movement, part *ledger.PartRef) (*ledger.LedgerEntry, error) {
	before := balance.OnHand

	var (
		quantity int64
		unitCost *decimal.Decimal
		details  ledger.Details
	)
	switch m := movement.(type) {
	case ledger.Receipt:
		quantity = m.Quantity
		details = m.Details
		unitCost = ledger.ResolveUnitCost(m.UnitCost, part.UnitCost)
		if err := balance.ApplyInbound(ledger.MovementReceipt, m.Quantity, unitCost); err != nil {
			return nil, err
		}
	case ledger.Return:
		quantity = m.Quantity
		details = m.Details
		unitCost = ledger.ResolveUnitCost(m.UnitCost, part.UnitCost)
		if err := balance.ApplyInbound(ledger.MovementReturn, m.Quantity, unitCost); err != nil {
			return nil, err
		}
	case ledger.Issue:
		quantity = m.Quantity
		details = m.Details
		average := balance.AverageCost
		unitCost = &average
		if err := balance.ApplyOutbound(ledger.MovementIssue, m.Quantity); err != nil {
			return nil, err
		}
	case ledger.Adjustment:
		quantity = m.Delta
		details = m.Details
		if m.Delta > 0 {
			unitCost = ledger.ResolveUnitCost(m.UnitCost, part.UnitCost)
		}
		if err := balance.ApplyAdjustment(m.Delta, unitCost); err != nil {
			return nil, err
		}
	default:
		return nil, shared.ErrInvalidMovementType
	}

	entry, err := ledger.NewLedgerEntry(
		balance.CompanyID, balance.PartID, balance.LocationID,
		movement.Type(), quantity, unitCost,
		before, balance.OnHand,
	)
	if err != nil {
		return nil, err
	}
	return entry.WithDetails(details), nil
}

// resolveReferences checks the part and location exist for the company and
// returns the part ref carrying the catalog fallback cost
func (s *StockLedgerService) resolveReferences(ctx context.Context, companyID, partID, locationID uuid.UUID) (*ledger.PartRef, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	part, err := s.catalog.FindPart(ctx, companyID, partID)
	if err != nil {
		return nil, wrapStorage(err)
	}
	if err := s.requireLocation(ctx, companyID, locationID); err != nil {
		return nil, err
	}
	return part, nil
}

func (s *StockLedgerService) requireLocation(ctx context.Context, companyID, locationID uuid.UUID) error {
	exists, err := s.catalog.LocationExists(ctx, companyID, locationID)
	if err != nil {
		return wrapStorage(err)
	}
	if !exists {
		return shared.ErrInvalidReference
	}
	return nil
}

// publishDomainEvents publishes all domain events from the balance
func (s *StockLedgerService) publishDomainEvents(ctx context.Context, balance *ledger.StockBalance) {
	if s.eventPublisher == nil || balance == nil {
		return
	}
	events := balance.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	// Publish errors are logged by the event bus, not propagated
	_ = s.eventPublisher.Publish(ctx, events...)
	balance.ClearDomainEvents()
}

// wrapStorage keeps domain errors intact and tags anything else as a
// transient storage failure so transport can answer 503 instead of 500
func wrapStorage(err error) error {
	if err == nil {
		return nil
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	var storageErr *shared.StorageError
	if errors.As(err, &storageErr) {
		return err
	}
	return shared.NewStorageError(err)
}

func derefOrNil(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}
