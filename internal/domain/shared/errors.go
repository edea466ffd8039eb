package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
)

// Ledger domain errors. These are local, recoverable-by-caller conditions:
// the attempted unit of work is discarded in full and the caller decides
// whether to retry or surface the failure.
var (
	ErrInvalidReference        = NewDomainError("INVALID_REFERENCE", "Part or location does not belong to this company")
	ErrInvalidMovementType     = NewDomainError("INVALID_MOVEMENT_TYPE", "Unknown stock movement type")
	ErrInsufficientStock       = NewDomainError("INSUFFICIENT_STOCK", "Insufficient available stock")
	ErrInsufficientReservation = NewDomainError("INSUFFICIENT_RESERVATION", "Insufficient reserved stock")
	ErrNegativeStock           = NewDomainError("NEGATIVE_STOCK", "Movement would drive stock negative")
)

// ErrStorageUnavailable signals a transient storage failure during commit.
// It is distinct from the domain invariant violations above and is expected
// to be retried by the caller if appropriate.
var ErrStorageUnavailable = NewDomainError("STORAGE_UNAVAILABLE", "Storage is temporarily unavailable")

// StorageError wraps an underlying storage failure so callers can
// distinguish it from domain invariant violations while retaining the cause.
type StorageError struct {
	Cause error
}

// Error implements the error interface
func (e *StorageError) Error() string {
	return "storage unavailable: " + e.Cause.Error()
}

// Unwrap returns the underlying storage error
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError wraps err as a storage-unavailable condition
func NewStorageError(err error) *StorageError {
	return &StorageError{Cause: err}
}
