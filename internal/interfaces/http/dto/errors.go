package dto

import (
	"net/http"
	"strings"
)

// Domain error codes surfaced by the ledger. The codes match the
// shared.DomainError codes one to one so the API contract and the domain
// speak the same vocabulary.
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	// ErrCodeInvalidReference is used when a part or location does not
	// belong to the calling company
	ErrCodeInvalidReference = "INVALID_REFERENCE"
	// ErrCodeInvalidMovementType is used for unknown movement types
	ErrCodeInvalidMovementType = "INVALID_MOVEMENT_TYPE"
	// ErrCodeInsufficientStock is used when available stock cannot cover an issue
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	// ErrCodeInsufficientReservation is used when a release exceeds what is reserved
	ErrCodeInsufficientReservation = "INSUFFICIENT_RESERVATION"
	// ErrCodeNegativeStock is used when a movement would drive stock negative
	ErrCodeNegativeStock = "NEGATIVE_STOCK"
	// ErrCodeStorageUnavailable is used for transient storage failures
	ErrCodeStorageUnavailable = "STORAGE_UNAVAILABLE"
)

// Transport-level error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "INVALID_INPUT"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule violations -> 422 Unprocessable Entity
	ErrCodeInvalidReference:        http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:       http.StatusUnprocessableEntity,
	ErrCodeInsufficientReservation: http.StatusUnprocessableEntity,
	ErrCodeNegativeStock:           http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeInvalidMovementType: http.StatusBadRequest,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeInvalidInput:        http.StatusBadRequest,

	// Infrastructure
	ErrCodeStorageUnavailable: http.StatusServiceUnavailable,
	ErrCodeInternal:           http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unmapped INVALID_* codes come from aggregate constructors rejecting
// malformed input and map to 400; anything else falls back to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
