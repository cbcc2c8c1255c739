package boltstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/neeraj3071/InvoicePro/internal/invoice/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	store, err := Open(filepath.Join(t.TempDir(), "invoices.db"), zap.NewNop(), node)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func draftInvoice() domain.Invoice {
	return domain.Invoice{
		BillerStreetAddress: "19 Union Terrace",
		BillerCity:          "London",
		BillerZipCode:       "E1 3EZ",
		BillerState:         "Greater London",
		BillerCountry:       "United Kingdom",
		ClientName:          "Alex Grim",
		ClientEmail:         "alexgrim@mail.com",
		ClientStreetAddress: "84 Church Way",
		ClientCity:          "Bradford",
		ClientZipCode:       "BD1 9PB",
		ClientState:         "West Yorkshire",
		ClientCountry:       "United Kingdom",
		InvoiceDateUnix:     1629936000,
		InvoiceDate:         "Aug 26, 2021",
		PaymentTerms:        "30 Days",
		PaymentDueDateUnix:  1632528000,
		PaymentDueDate:      "Sep 25, 2021",
		ProductDescription:  "Graphic design work",
		Items: []domain.InvoiceItem{
			{Name: "Banner Design", Quantity: 20, UnitPrice: 75},
			{Name: "Email Design", Quantity: 30, UnitPrice: 85},
		},
	}
}

func TestCreateAssignsGeneratedFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := snowflake.ID(100)

	created, err := store.Create(ctx, owner, draftInvoice())
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.NotEmpty(t, created.InvoiceID)
	assert.Equal(t, owner, created.OwnerID)
	assert.Equal(t, domain.StatusPending, created.Status)
	assert.Equal(t, int64(4050), created.Total)
}

func TestCreateRejectsInvalidDraft(t *testing.T) {
	store := newTestStore(t)

	draft := draftInvoice()
	draft.ClientEmail = "nope"
	draft.Items = nil

	_, err := store.Create(context.Background(), snowflake.ID(100), draft)
	require.Error(t, err)
	assert.NotNil(t, domain.AsValidationErrors(err))
}

func TestListByOwnerInsertionOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := snowflake.ID(100)

	first, err := store.Create(ctx, owner, draftInvoice())
	require.NoError(t, err)
	second, err := store.Create(ctx, owner, draftInvoice())
	require.NoError(t, err)

	got, err := store.ListByOwner(ctx, owner, domain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.InvoiceID, got[0].InvoiceID)
	assert.Equal(t, second.InvoiceID, got[1].InvoiceID)
}

func TestListByOwnerScoping(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, snowflake.ID(100), draftInvoice())
	require.NoError(t, err)

	got, err := store.ListByOwner(ctx, snowflake.ID(200), domain.ListFilter{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListByOwnerStatusFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := snowflake.ID(100)

	inv, err := store.Create(ctx, owner, draftInvoice())
	require.NoError(t, err)
	_, err = store.Create(ctx, owner, draftInvoice())
	require.NoError(t, err)

	_, err = store.SetStatus(ctx, owner, inv.Ref(), domain.StatusPaid)
	require.NoError(t, err)

	paid := domain.StatusPaid
	got, err := store.ListByOwner(ctx, owner, domain.ListFilter{Status: &paid})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, inv.InvoiceID, got[0].InvoiceID)
}

func TestGetOneOwnerScoping(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	inv, err := store.Create(ctx, snowflake.ID(100), draftInvoice())
	require.NoError(t, err)

	got, err := store.GetOne(ctx, snowflake.ID(100), inv.InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, inv.InvoiceID, got.InvoiceID)

	_, err = store.GetOne(ctx, snowflake.ID(200), inv.InvoiceID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.GetOne(ctx, snowflake.ID(100), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateMergesAndKeepsIdentity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := snowflake.ID(100)

	inv, err := store.Create(ctx, owner, draftInvoice())
	require.NoError(t, err)

	name := "Mellisa Clarke"
	updated, err := store.Update(ctx, owner, inv.Ref(), domain.Patch{
		ClientName: &name,
		Items: []domain.InvoiceItem{
			{Name: "Logo Sketches", Quantity: 1, UnitPrice: 10200},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Mellisa Clarke", updated.ClientName)
	assert.Equal(t, inv.ClientEmail, updated.ClientEmail)
	assert.Equal(t, int64(10200), updated.Total)
	assert.Equal(t, inv.ID, updated.ID)
	assert.Equal(t, inv.InvoiceID, updated.InvoiceID)
	assert.Equal(t, owner, updated.OwnerID)

	// The merge is persisted, not just returned.
	got, err := store.GetOne(ctx, owner, inv.InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, int64(10200), got.Total)
}

func TestUpdateForeignOwner(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	inv, err := store.Create(ctx, snowflake.ID(100), draftInvoice())
	require.NoError(t, err)

	name := "Hijacked"
	_, err = store.Update(ctx, snowflake.ID(200), inv.Ref(), domain.Patch{ClientName: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateByInvoiceIDOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := snowflake.ID(100)

	inv, err := store.Create(ctx, owner, draftInvoice())
	require.NoError(t, err)

	name := "By Public ID"
	updated, err := store.Update(ctx, owner, domain.Ref{InvoiceID: inv.InvoiceID}, domain.Patch{ClientName: &name})
	require.NoError(t, err)
	assert.Equal(t, "By Public ID", updated.ClientName)
}

func TestDeleteTwice(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := snowflake.ID(100)

	inv, err := store.Create(ctx, owner, draftInvoice())
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, owner, inv.Ref()))
	assert.ErrorIs(t, store.Delete(ctx, owner, inv.Ref()), domain.ErrNotFound)

	_, err = store.GetOne(ctx, owner, inv.InvoiceID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetStatusRejectsUnknown(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := snowflake.ID(100)

	inv, err := store.Create(ctx, owner, draftInvoice())
	require.NoError(t, err)

	_, err = store.SetStatus(ctx, owner, inv.Ref(), domain.Status("archived"))
	require.Error(t, err)
	require.NotNil(t, domain.AsValidationErrors(err))

	got, err := store.GetOne(ctx, owner, inv.InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
}

func TestRecordsSurviveReopen(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "invoices.db")
	ctx := context.Background()
	owner := snowflake.ID(100)

	store, err := Open(path, zap.NewNop(), node)
	require.NoError(t, err)
	inv, err := store.Create(ctx, owner, draftInvoice())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(path, zap.NewNop(), node)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetOne(ctx, owner, inv.InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, inv.Total, got.Total)
}

func TestCreateRejectsDuplicateInvoiceID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := snowflake.ID(100)

	first := draftInvoice()
	first.InvoiceID = "RT3080"
	_, err := store.Create(ctx, owner, first)
	require.NoError(t, err)

	second := draftInvoice()
	second.InvoiceID = "RT3080"
	_, err = store.Create(ctx, owner, second)
	require.Error(t, err)
	vErr := domain.AsValidationErrors(err)
	require.NotNil(t, vErr)
	assert.Equal(t, "invoiceId", vErr.Errors[0].Field)
	assert.False(t, errors.Is(err, domain.ErrUnavailable))

	// Uniqueness holds across owners, not just within one.
	third := draftInvoice()
	third.InvoiceID = "RT3080"
	_, err = store.Create(ctx, snowflake.ID(200), third)
	require.Error(t, err)
	assert.NotNil(t, domain.AsValidationErrors(err))

	list, err := store.ListByOwner(ctx, owner, domain.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestValidationErrorsPassThroughUnwrapped(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := snowflake.ID(100)

	inv, err := store.Create(ctx, owner, draftInvoice())
	require.NoError(t, err)

	_, err = store.Update(ctx, owner, inv.Ref(), domain.Patch{
		Items: []domain.InvoiceItem{{Name: "Bad", Quantity: 0, UnitPrice: 10}},
	})
	require.Error(t, err)
	assert.NotNil(t, domain.AsValidationErrors(err))
	assert.False(t, errors.Is(err, domain.ErrUnavailable))
}
