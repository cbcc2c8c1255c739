package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both a record that does not exist and a record owned
	// by a different principal. The two cases are deliberately
	// indistinguishable so ownership never leaks through error signals.
	ErrNotFound = errors.New("invoice not found")

	// ErrUnauthorized signals a missing, invalid or expired credential. The
	// client stack reacts with a forced sign-out and mirror clear.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable signals a transient backend failure. Retries are a
	// caller concern.
	ErrUnavailable = errors.New("backend unavailable")
)

// FieldError describes one violated constraint.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationErrors aggregates every violation found in a record, rather than
// failing on the first.
type ValidationErrors struct {
	Errors []FieldError `json:"errors"`
}

func (v *ValidationErrors) Error() string {
	return "validation error"
}

func (v *ValidationErrors) add(field, code, message string) {
	v.Errors = append(v.Errors, FieldError{Field: field, Code: code, Message: message})
}

// DuplicateInvoiceID reports a caller-supplied public identifier that is
// already in use. Public identifiers are unique across all owners, not just
// within one owner's records.
func DuplicateInvoiceID(invoiceID string) *ValidationErrors {
	return &ValidationErrors{Errors: []FieldError{{
		Field:   "invoiceId",
		Code:    "exists",
		Message: fmt.Sprintf("invoiceId %q is already in use", invoiceID),
	}}}
}

// AsValidationErrors unwraps err into a ValidationErrors, if it is one.
func AsValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}
