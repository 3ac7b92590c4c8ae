package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPassInProgress indicates another reconciliation pass holds the ledger.
	ErrPassInProgress = errors.New("reconciliation pass in progress")

	// Ledger Errors.

	// ErrStoreUnavailable indicates the ledger is missing, corrupt or cannot be written.
	// It is the only error that aborts a reconciliation pass.
	ErrStoreUnavailable = errors.New("ledger store unavailable")

	// ErrDuplicateProduct indicates two products normalise to the same key.
	ErrDuplicateProduct = errors.New("duplicate product")

	// ErrHistoryOrder indicates a history write older than the newest entry.
	ErrHistoryOrder = errors.New("history entry out of order")

	// Listing Source Errors.

	// ErrFetch indicates a network, timeout or non-2xx failure for one item.
	ErrFetch = errors.New("fetch failed")

	// ErrParse indicates a fetched item was structurally unusable.
	ErrParse = errors.New("parse failed")

	// Notification Errors.

	// ErrDispatch indicates a notification could not be delivered.
	// Always recovered by the dispatcher.
	ErrDispatch = errors.New("dispatch failed")
)

// ItemError ties a per-item failure to the URL it happened on.
type ItemError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *ItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.URL, e.Err)
}

// Unwrap allows errors.Is to see the underlying sentinel.
func (e *ItemError) Unwrap() error {
	return e.Err
}

// NewItemError wraps err with the URL of the failing item.
func NewItemError(url string, err error) error {
	return &ItemError{URL: url, Err: err}
}
