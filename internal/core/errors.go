package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by stores when the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSuggestionNotPending is returned when an approve/reject lost the race
	// against another transition of the same queue entry.
	ErrSuggestionNotPending = errors.New("suggestion is no longer pending")

	// ErrInvoiceSettled is returned when an auto-match targets an invoice another
	// payment settled first.
	ErrInvoiceSettled = errors.New("invoice already settled")

	// ErrAllocationConflict is returned when a concurrent writer claimed the tax ID first.
	ErrAllocationConflict = errors.New("dedicated account allocation conflict")

	// ErrAccountRangeExhausted is returned when the dedicated account range has no numbers left.
	ErrAccountRangeExhausted = errors.New("dedicated account range exhausted")

	// ErrNoFallbackAccount is returned when neither the payment method nor the
	// configured fallback resolves to a collective account.
	ErrNoFallbackAccount = errors.New("no fallback collective account configured")

	// ErrAmbiguousMatch routes a scored candidate to the review queue. It never
	// leaves the decision engine.
	ErrAmbiguousMatch = errors.New("ambiguous match")
)

// ValidationError describes a malformed payment or invoice record.
type ValidationError struct {
	Kind    string
	ID      string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("invalid %s %s: %s %s", e.Kind, e.ID, e.Field, e.Message)
	}
	return fmt.Sprintf("invalid %s: %s %s", e.Kind, e.Field, e.Message)
}

// AllocationConflict wraps ErrAllocationConflict with the contested tax ID.
type AllocationConflict struct {
	TaxID string
}

func (e *AllocationConflict) Error() string {
	return fmt.Sprintf("allocation for tax id %s: %v", e.TaxID, ErrAllocationConflict)
}

func (e *AllocationConflict) Unwrap() error { return ErrAllocationConflict }

// ConfigurationError is raised when the collective account table cannot resolve an invoice.
type ConfigurationError struct {
	Label string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("payment method %q: %v", e.Label, ErrNoFallbackAccount)
}

func (e *ConfigurationError) Unwrap() error { return ErrNoFallbackAccount }

// RegistryMissError means no creditor scored above the threshold. It is a queue state, not a failure.
type RegistryMissError struct {
	InvoiceID string
	BestScore float64
}

func (e *RegistryMissError) Error() string {
	return fmt.Sprintf("no creditor above threshold for invoice %s (best %.2f)", e.InvoiceID, e.BestScore)
}

// ItemError is one entry of a batch summary's error list.
type ItemError struct {
	ID  string `json:"id"`
	Err string `json:"error"`
}

func newItemError(id string, err error) ItemError {
	return ItemError{ID: id, Err: err.Error()}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
