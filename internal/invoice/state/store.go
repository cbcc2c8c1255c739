// Package state holds the reactive client state rendered by the UI layer.
// Actions dispatch sync-layer calls and fold results into an immutable
// snapshot observed through subscriptions.
package state

import (
	"context"
	"errors"
	stdsync "sync"

	"github.com/neeraj3071/InvoicePro/internal/identity"
	"github.com/neeraj3071/InvoicePro/internal/invoice/domain"
	invoicesync "github.com/neeraj3071/InvoicePro/internal/invoice/sync"
	"go.uber.org/zap"
)

const subscriberBuffer = 16

// Snapshot is one immutable view of the client state.
type Snapshot struct {
	Invoices []domain.Invoice
	Loaded   bool
	Loading  bool

	// SelectedID filters the mirror by public invoice identifier.
	SelectedID string

	ModalOpen bool
	Editing   bool

	// Failure carries the last transient error message. Unrelated failures
	// never clear already-loaded data.
	Failure string
}

// Selected returns the invoice matching SelectedID, if any.
func (s Snapshot) Selected() *domain.Invoice {
	for i := range s.Invoices {
		if s.Invoices[i].InvoiceID == s.SelectedID {
			return &s.Invoices[i]
		}
	}
	return nil
}

// Store drives the sync repository and publishes snapshots to subscribers.
type Store struct {
	repo    *invoicesync.Repository
	session *identity.Session
	log     *zap.Logger

	mu      stdsync.Mutex
	current Snapshot
	subs    map[uint64]chan Snapshot
	nextID  uint64
}

// Subscription receives snapshots until cancelled.
type Subscription struct {
	store *Store
	id    uint64
	ch    chan Snapshot
	once  stdsync.Once
}

// C returns the snapshot channel.
func (s *Subscription) C() <-chan Snapshot { return s.ch }

// Cancel stops delivery and releases the subscription.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.store.mu.Lock()
		delete(s.store.subs, s.id)
		s.store.mu.Unlock()
		close(s.ch)
	})
}

// New returns a Store over the given repository and session.
func New(repo *invoicesync.Repository, session *identity.Session, log *zap.Logger) *Store {
	return &Store{
		repo:    repo,
		session: session,
		log:     log.Named("invoice.state"),
		subs:    make(map[uint64]chan Snapshot),
	}
}

// Subscribe registers an observer. The current snapshot is delivered
// immediately.
func (s *Store) Subscribe() *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	sub := &Subscription{store: s, id: s.nextID, ch: make(chan Snapshot, subscriberBuffer)}
	s.subs[sub.id] = sub.ch
	sub.ch <- s.current
	return sub
}

// Current returns the latest snapshot.
func (s *Store) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// LoadInvoices refreshes the mirror from the backend.
func (s *Store) LoadInvoices(ctx context.Context) error {
	s.mutate(func(snap *Snapshot) { snap.Loading = true })

	invoices, err := s.repo.LoadAll(ctx)
	if err != nil {
		s.fail(err)
		return err
	}

	s.mutate(func(snap *Snapshot) {
		snap.Invoices = invoices
		snap.Loaded = true
		snap.Loading = false
		snap.Failure = ""
	})
	return nil
}

// CreateInvoice persists a draft and closes the modal on success.
func (s *Store) CreateInvoice(ctx context.Context, draft domain.Invoice) (*domain.Invoice, error) {
	created, err := s.repo.CreateInvoice(ctx, draft)
	if err != nil {
		s.fail(err)
		return nil, err
	}

	s.mutate(func(snap *Snapshot) {
		snap.Invoices = s.repo.Mirror()
		snap.ModalOpen = false
		snap.Failure = ""
	})
	return created, nil
}

// SaveInvoice updates the selected invoice, reloads the mirror and reopens
// the detail view on the fresh record.
func (s *Store) SaveInvoice(ctx context.Context, ref domain.Ref, patch domain.Patch) error {
	saved, err := s.repo.SaveAndReselect(ctx, ref, patch)
	if err != nil {
		s.fail(err)
		return err
	}

	s.mutate(func(snap *Snapshot) {
		snap.Invoices = s.repo.Mirror()
		snap.Loaded = true
		snap.Loading = false
		snap.SelectedID = saved.InvoiceID
		snap.ModalOpen = false
		snap.Editing = false
		snap.Failure = ""
	})
	return nil
}

// DeleteInvoice removes an invoice and clears the selection if it pointed at
// the removed record.
func (s *Store) DeleteInvoice(ctx context.Context, ref domain.Ref) error {
	if err := s.repo.DeleteInvoice(ctx, ref); err != nil {
		s.fail(err)
		return err
	}

	s.mutate(func(snap *Snapshot) {
		snap.Invoices = s.repo.Mirror()
		if snap.SelectedID == ref.InvoiceID {
			snap.SelectedID = ""
		}
		snap.Failure = ""
	})
	return nil
}

// MarkPaid transitions the invoice to paid.
func (s *Store) MarkPaid(ctx context.Context, ref domain.Ref) error {
	return s.transition(ctx, ref, s.repo.MarkPaid)
}

// MarkPending transitions the invoice to pending.
func (s *Store) MarkPending(ctx context.Context, ref domain.Ref) error {
	return s.transition(ctx, ref, s.repo.MarkPending)
}

// SelectInvoice sets the selection by public invoice identifier.
func (s *Store) SelectInvoice(invoiceID string) {
	s.mutate(func(snap *Snapshot) { snap.SelectedID = invoiceID })
}

// ToggleModal flips the invoice editor modal.
func (s *Store) ToggleModal() {
	s.mutate(func(snap *Snapshot) { snap.ModalOpen = !snap.ModalOpen })
}

// ToggleEdit flips edit mode.
func (s *Store) ToggleEdit() {
	s.mutate(func(snap *Snapshot) { snap.Editing = !snap.Editing })
}

// SignOut unconditionally clears the session, mirror and every UI flag. A
// subsequently authenticated principal on the same device starts from an
// empty snapshot.
func (s *Store) SignOut() {
	s.session.SignOut()
	s.repo.SignOut()
	s.mutate(func(snap *Snapshot) {
		*snap = Snapshot{}
	})
}

func (s *Store) transition(ctx context.Context, ref domain.Ref, fn func(context.Context, domain.Ref) (*domain.Invoice, error)) error {
	if _, err := fn(ctx, ref); err != nil {
		s.fail(err)
		return err
	}
	s.mutate(func(snap *Snapshot) {
		snap.Invoices = s.repo.Mirror()
		snap.Failure = ""
	})
	return nil
}

// fail records a transient failure. Authentication failures force a full
// sign-out; anything else leaves loaded data in place.
func (s *Store) fail(err error) {
	if errors.Is(err, domain.ErrUnauthorized) {
		s.log.Warn("session expired, signing out")
		s.SignOut()
		return
	}
	s.log.Warn("action failed", zap.Error(err))
	s.mutate(func(snap *Snapshot) {
		snap.Loading = false
		snap.Failure = err.Error()
	})
}

// mutate applies fn to a copy of the current snapshot and publishes it.
func (s *Store) mutate(fn func(*Snapshot)) {
	s.mu.Lock()
	snap := s.current
	snap.Invoices = append([]domain.Invoice(nil), snap.Invoices...)
	fn(&snap)
	s.current = snap
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// Slow subscribers drop intermediate snapshots rather than block
			// the action that produced them.
		}
	}
	s.mu.Unlock()
}
