package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// ListFilter narrows ListByOwner results. A nil Status returns every record.
type ListFilter struct {
	Status *Status
}

// Patch carries a partial update. Nil fields are left unchanged. The owner
// and public invoice identifier are not representable here: a caller cannot
// reassign them through an update, no matter what it sends.
type Patch struct {
	BillerStreetAddress *string
	BillerCity          *string
	BillerZipCode       *string
	BillerState         *string
	BillerCountry       *string

	ClientName          *string
	ClientEmail         *string
	ClientStreetAddress *string
	ClientCity          *string
	ClientZipCode       *string
	ClientState         *string
	ClientCountry       *string

	InvoiceDateUnix    *int64
	InvoiceDate        *string
	PaymentTerms       *string
	PaymentDueDateUnix *int64
	PaymentDueDate     *string

	ProductDescription *string

	// Items replaces the whole line item list when non-nil and forces a total
	// recomputation. Line totals in the payload are ignored.
	Items []InvoiceItem

	Status *Status
}

// Store is the uniform persistence contract for invoices. The embedded local
// variant and the remote document-service variant implement it with
// identical externally observable behavior; callers never know which one is
// active.
//
// Every operation is scoped to ownerID. A record owned by someone else
// behaves exactly like a missing record: ErrNotFound.
type Store interface {
	// ListByOwner returns the owner's invoices in insertion order. An owner
	// with no records gets an empty slice, not an error.
	ListByOwner(ctx context.Context, ownerID snowflake.ID, filter ListFilter) ([]Invoice, error)

	// GetOne looks an invoice up by its public invoice identifier.
	GetOne(ctx context.Context, ownerID snowflake.ID, invoiceID string) (*Invoice, error)

	// Create assigns identifiers and timestamps, computes totals, persists,
	// and returns the stored shape including every generated field.
	Create(ctx context.Context, ownerID snowflake.ID, draft Invoice) (*Invoice, error)

	// Update merges the patch onto the existing record and recomputes totals
	// when items changed. The stored owner and invoice identifier survive
	// any payload.
	Update(ctx context.Context, ownerID snowflake.ID, ref Ref, patch Patch) (*Invoice, error)

	// Delete removes the record. Deleting an already-deleted record yields
	// ErrNotFound, not a crash.
	Delete(ctx context.Context, ownerID snowflake.ID, ref Ref) error

	// SetStatus moves the invoice into the target status atomically.
	SetStatus(ctx context.Context, ownerID snowflake.ID, ref Ref, status Status) (*Invoice, error)

	// Close releases any resources held by the store.
	Close() error
}
