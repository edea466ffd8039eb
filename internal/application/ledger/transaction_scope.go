package ledger

import (
	"context"

	"github.com/partsledger/backend/internal/domain/ledger"
)

// TransactionScope provides transactional access to the ledger repositories.
// Every stock operation runs as one unit of work: the balance write and its
// ledger entries commit together or not at all.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the ledger repositories within
// a transaction. All repositories returned share the same underlying database
// transaction.
//
// Aggregate boundary notes:
//   - BalanceRepo: repository for the StockBalance aggregate root. Every
//     quantity or cost change goes through this repository with a version
//     check, so two writers on the same triple cannot interleave.
//   - EntryRepo: append-only repository for ledger entries. Entries are
//     written in the same transaction as the balance they describe.
type TransactionalRepositories interface {
	// BalanceRepo returns the stock balance repository scoped to the current transaction
	BalanceRepo() ledger.StockBalanceRepository
	// EntryRepo returns the ledger entry repository scoped to the current transaction
	EntryRepo() ledger.LedgerEntryRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is
// not required.
type NoOpTransactionScope struct {
	balanceRepo ledger.StockBalanceRepository
	entryRepo   ledger.LedgerEntryRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	balanceRepo ledger.StockBalanceRepository,
	entryRepo ledger.LedgerEntryRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		balanceRepo: balanceRepo,
		entryRepo:   entryRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// BalanceRepo returns the stock balance repository.
func (s *NoOpTransactionScope) BalanceRepo() ledger.StockBalanceRepository {
	return s.balanceRepo
}

// EntryRepo returns the ledger entry repository.
func (s *NoOpTransactionScope) EntryRepo() ledger.LedgerEntryRepository {
	return s.entryRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
