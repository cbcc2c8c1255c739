// Package sync mediates between the reactive client state and the active
// persistence backend. It injects the principal into every call and keeps an
// in-memory mirror consistent with the backend after each mutation.
package sync

import (
	"context"
	stdsync "sync"

	"github.com/bwmarrin/snowflake"
	"github.com/neeraj3071/InvoicePro/internal/identity"
	"github.com/neeraj3071/InvoicePro/internal/invoice/domain"
	"go.uber.org/zap"
)

// Repository orchestrates backend calls on behalf of the current principal.
//
// Mutations mutate the mirror only after the backend confirms the write, so
// a failed call never leaves the mirror out of step. A generation counter
// guards against completions landing after sign-out: a result computed for a
// previous session is discarded, never folded into a cleared mirror.
type Repository struct {
	store domain.Store
	ids   identity.Provider
	log   *zap.Logger

	mu     stdsync.Mutex
	mirror []domain.Invoice
	loaded bool
	gen    uint64
}

// New returns a Repository over the given store and identity provider.
func New(store domain.Store, ids identity.Provider, log *zap.Logger) *Repository {
	return &Repository{
		store: store,
		ids:   ids,
		log:   log.Named("invoice.sync"),
	}
}

// Mirror returns a copy of the in-memory mirror.
func (r *Repository) Mirror() []domain.Invoice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Invoice, len(r.mirror))
	copy(out, r.mirror)
	return out
}

// Loaded reports whether LoadAll has completed for the current session.
func (r *Repository) Loaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded
}

// LoadAll clears the mirror, fetches the principal's invoices and
// repopulates the mirror in the order received.
func (r *Repository) LoadAll(ctx context.Context) ([]domain.Invoice, error) {
	owner, err := r.owner()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.mirror = nil
	r.loaded = false
	r.mu.Unlock()

	invoices, err := r.store.ListByOwner(ctx, owner, domain.ListFilter{})
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen != gen {
		// Session was torn down or superseded while the call was in flight.
		return nil, domain.ErrUnauthorized
	}
	r.mirror = append([]domain.Invoice(nil), invoices...)
	r.loaded = true
	r.log.Debug("mirror loaded", zap.Int("count", len(invoices)))
	out := make([]domain.Invoice, len(r.mirror))
	copy(out, r.mirror)
	return out, nil
}

// CreateInvoice persists a new invoice and appends the stored shape to the
// mirror.
func (r *Repository) CreateInvoice(ctx context.Context, draft domain.Invoice) (*domain.Invoice, error) {
	owner, err := r.owner()
	if err != nil {
		return nil, err
	}
	gen := r.generation()

	created, err := r.store.Create(ctx, owner, draft)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen == gen {
		r.mirror = append(r.mirror, *created)
	}
	return created, nil
}

// UpdateInvoice merges the patch on the backend and replaces the
// corresponding mirror entry.
func (r *Repository) UpdateInvoice(ctx context.Context, ref domain.Ref, patch domain.Patch) (*domain.Invoice, error) {
	owner, err := r.owner()
	if err != nil {
		return nil, err
	}
	gen := r.generation()

	updated, err := r.store.Update(ctx, owner, ref, patch)
	if err != nil {
		return nil, err
	}

	r.replaceEntry(gen, updated)
	return updated, nil
}

// SaveAndReselect updates the invoice, reloads the whole mirror and returns
// the freshly loaded record selected by its public identifier. Call sites
// that reopen the editor on the saved record use this instead of the single
// merge performed by UpdateInvoice.
func (r *Repository) SaveAndReselect(ctx context.Context, ref domain.Ref, patch domain.Patch) (*domain.Invoice, error) {
	updated, err := r.UpdateInvoice(ctx, ref, patch)
	if err != nil {
		return nil, err
	}
	invoices, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		if invoices[i].InvoiceID == updated.InvoiceID {
			return &invoices[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// DeleteInvoice removes the record from the backend, then drops the mirror
// entry matching on the storage record key.
func (r *Repository) DeleteInvoice(ctx context.Context, ref domain.Ref) error {
	owner, err := r.owner()
	if err != nil {
		return err
	}
	gen := r.generation()

	if err := r.store.Delete(ctx, owner, ref); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen != gen {
		return nil
	}
	kept := r.mirror[:0]
	for _, inv := range r.mirror {
		if inv.ID == ref.Key || (ref.InvoiceID != "" && inv.InvoiceID == ref.InvoiceID) {
			continue
		}
		kept = append(kept, inv)
	}
	r.mirror = kept
	return nil
}

// MarkPaid moves the invoice to paid.
func (r *Repository) MarkPaid(ctx context.Context, ref domain.Ref) (*domain.Invoice, error) {
	return r.setStatus(ctx, ref, domain.StatusPaid)
}

// MarkPending moves the invoice to pending.
func (r *Repository) MarkPending(ctx context.Context, ref domain.Ref) (*domain.Invoice, error) {
	return r.setStatus(ctx, ref, domain.StatusPending)
}

// GetOne fetches a single invoice by its public identifier, bypassing the
// mirror.
func (r *Repository) GetOne(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	owner, err := r.owner()
	if err != nil {
		return nil, err
	}
	return r.store.GetOne(ctx, owner, invoiceID)
}

// SignOut clears the mirror and invalidates any in-flight completions. No
// residual data from the previous principal stays visible.
func (r *Repository) SignOut() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.mirror = nil
	r.loaded = false
}

func (r *Repository) setStatus(ctx context.Context, ref domain.Ref, status domain.Status) (*domain.Invoice, error) {
	owner, err := r.owner()
	if err != nil {
		return nil, err
	}
	gen := r.generation()

	updated, err := r.store.SetStatus(ctx, owner, ref, status)
	if err != nil {
		return nil, err
	}

	r.replaceEntry(gen, updated)
	return updated, nil
}

func (r *Repository) replaceEntry(gen uint64, updated *domain.Invoice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen != gen {
		return
	}
	for i := range r.mirror {
		if r.mirror[i].ID == updated.ID {
			r.mirror[i] = *updated
			return
		}
	}
}

func (r *Repository) owner() (snowflake.ID, error) {
	principal, ok := r.ids.Current()
	if !ok {
		return 0, domain.ErrUnauthorized
	}
	return principal.OwnerID, nil
}

func (r *Repository) generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}
