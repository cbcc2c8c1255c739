package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	invoicedomain "github.com/neeraj3071/InvoicePro/internal/invoice/domain"
)

func TestInvoiceRoutesRequireAuth(t *testing.T) {
	s := newTestServer(t)

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/invoices"},
		{http.MethodPost, "/invoices"},
		{http.MethodGet, "/invoices/abc"},
		{http.MethodPut, "/invoices/abc"},
		{http.MethodDelete, "/invoices/abc"},
		{http.MethodPatch, "/invoices/abc/status"},
	} {
		w := doJSON(t, s, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.method+" "+route.path)
	}
}

func TestCreateInvoiceComputesDerivedFields(t *testing.T) {
	s := newTestServer(t)
	bearer := registerUser(t, s, "jane@example.com")

	inv := createInvoice(t, s, bearer)

	assert.NotZero(t, inv.ID)
	assert.NotEmpty(t, inv.InvoiceID)
	assert.Equal(t, invoicedomain.StatusPending, inv.Status)
	assert.Equal(t, int64(4050), inv.Total)
	require.Len(t, inv.Items, 2)
	assert.Equal(t, int64(1500), inv.Items[0].LineTotal)
	assert.Equal(t, int64(2550), inv.Items[1].LineTotal)
}

func TestCreateInvoiceRejectsInvalidPayload(t *testing.T) {
	s := newTestServer(t)
	bearer := registerUser(t, s, "jane@example.com")

	payload := sampleInvoicePayload()
	payload["clientName"] = ""
	payload["clientEmail"] = "not-an-email"
	payload["invoiceItemList"] = []map[string]any{}

	w := doJSON(t, s, http.MethodPost, "/invoices", bearer, payload)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	var resp struct {
		Error struct {
			Type   string                     `json:"type"`
			Errors []invoicedomain.FieldError `json:"errors"`
		} `json:"error"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, "validation_error", resp.Error.Type)
	assert.GreaterOrEqual(t, len(resp.Error.Errors), 3)
}

func TestListInvoices(t *testing.T) {
	s := newTestServer(t)
	bearer := registerUser(t, s, "jane@example.com")

	first := createInvoice(t, s, bearer)
	second := createInvoice(t, s, bearer)

	w := doJSON(t, s, http.MethodGet, "/invoices", bearer, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count    int                     `json:"count"`
		Invoices []invoicedomain.Invoice `json:"invoices"`
	}
	decodeBody(t, w, &resp)
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, first.InvoiceID, resp.Invoices[0].InvoiceID)
	assert.Equal(t, second.InvoiceID, resp.Invoices[1].InvoiceID)
}

func TestListInvoicesStatusFilter(t *testing.T) {
	s := newTestServer(t)
	bearer := registerUser(t, s, "jane@example.com")

	inv := createInvoice(t, s, bearer)
	createInvoice(t, s, bearer)

	w := doJSON(t, s, http.MethodPatch, "/invoices/"+inv.InvoiceID+"/status", bearer, map[string]string{"status": "paid"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, s, http.MethodGet, "/invoices?status=paid", bearer, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count    int                     `json:"count"`
		Invoices []invoicedomain.Invoice `json:"invoices"`
	}
	decodeBody(t, w, &resp)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, inv.InvoiceID, resp.Invoices[0].InvoiceID)

	w = doJSON(t, s, http.MethodGet, "/invoices?status=archived", bearer, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListInvoicesEmptyOwner(t *testing.T) {
	s := newTestServer(t)
	bearer := registerUser(t, s, "jane@example.com")

	w := doJSON(t, s, http.MethodGet, "/invoices", bearer, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count    int                     `json:"count"`
		Invoices []invoicedomain.Invoice `json:"invoices"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, 0, resp.Count)
	assert.NotNil(t, resp.Invoices)
}

func TestGetInvoiceOwnerScoping(t *testing.T) {
	s := newTestServer(t)
	owner := registerUser(t, s, "owner@example.com")
	other := registerUser(t, s, "other@example.com")

	inv := createInvoice(t, s, owner)

	w := doJSON(t, s, http.MethodGet, "/invoices/"+inv.InvoiceID, owner, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Someone else's record is indistinguishable from a missing one.
	w = doJSON(t, s, http.MethodGet, "/invoices/"+inv.InvoiceID, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, s, http.MethodGet, "/invoices/does-not-exist", owner, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateInvoiceMergesAndRecomputes(t *testing.T) {
	s := newTestServer(t)
	bearer := registerUser(t, s, "jane@example.com")

	inv := createInvoice(t, s, bearer)

	w := doJSON(t, s, http.MethodPut, "/invoices/"+inv.InvoiceID, bearer, map[string]any{
		"clientName": "Mellisa Clarke",
		"ownerId":    "12345",
		"invoiceItemList": []map[string]any{
			{"itemName": "Logo Sketches", "qty": 1, "price": 10200},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Invoice invoicedomain.Invoice `json:"invoice"`
	}
	decodeBody(t, w, &resp)

	assert.Equal(t, "Mellisa Clarke", resp.Invoice.ClientName)
	assert.Equal(t, inv.ClientEmail, resp.Invoice.ClientEmail)
	assert.Equal(t, int64(10200), resp.Invoice.Total)
	require.Len(t, resp.Invoice.Items, 1)

	// Identity survives every payload.
	assert.Equal(t, inv.ID, resp.Invoice.ID)
	assert.Equal(t, inv.InvoiceID, resp.Invoice.InvoiceID)
	assert.Equal(t, inv.OwnerID, resp.Invoice.OwnerID)
}

func TestUpdateInvoiceForeignOwner(t *testing.T) {
	s := newTestServer(t)
	owner := registerUser(t, s, "owner@example.com")
	other := registerUser(t, s, "other@example.com")

	inv := createInvoice(t, s, owner)

	w := doJSON(t, s, http.MethodPut, "/invoices/"+inv.InvoiceID, other, map[string]any{
		"clientName": "Hijacked",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteInvoice(t *testing.T) {
	s := newTestServer(t)
	bearer := registerUser(t, s, "jane@example.com")

	inv := createInvoice(t, s, bearer)

	w := doJSON(t, s, http.MethodDelete, "/invoices/"+inv.InvoiceID, bearer, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		InvoiceID string `json:"invoiceId"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, inv.InvoiceID, resp.InvoiceID)

	// Deleting again reports not found.
	w = doJSON(t, s, http.MethodDelete, "/invoices/"+inv.InvoiceID, bearer, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetInvoiceStatus(t *testing.T) {
	s := newTestServer(t)
	bearer := registerUser(t, s, "jane@example.com")

	inv := createInvoice(t, s, bearer)

	w := doJSON(t, s, http.MethodPatch, "/invoices/"+inv.InvoiceID+"/status", bearer, map[string]string{"status": "paid"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Invoice invoicedomain.Invoice `json:"invoice"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, invoicedomain.StatusPaid, resp.Invoice.Status)

	// Any transition between known states is allowed, including back to draft.
	w = doJSON(t, s, http.MethodPatch, "/invoices/"+inv.InvoiceID+"/status", bearer, map[string]string{"status": "draft"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetInvoiceStatusRejectsUnknownValue(t *testing.T) {
	s := newTestServer(t)
	bearer := registerUser(t, s, "jane@example.com")

	inv := createInvoice(t, s, bearer)

	w := doJSON(t, s, http.MethodPatch, "/invoices/"+inv.InvoiceID+"/status", bearer, map[string]string{"status": "archived"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error struct {
			Errors []invoicedomain.FieldError `json:"errors"`
		} `json:"error"`
	}
	decodeBody(t, w, &resp)
	require.NotEmpty(t, resp.Error.Errors)
	msg := resp.Error.Errors[0].Message
	assert.Contains(t, msg, "draft")
	assert.Contains(t, msg, "pending")
	assert.Contains(t, msg, "paid")

	// The stored record is untouched.
	w = doJSON(t, s, http.MethodGet, "/invoices/"+inv.InvoiceID, bearer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Invoice invoicedomain.Invoice `json:"invoice"`
	}
	decodeBody(t, w, &got)
	assert.Equal(t, invoicedomain.StatusPending, got.Invoice.Status)
}

func TestRenderInvoicePDF(t *testing.T) {
	s := newTestServer(t)
	bearer := registerUser(t, s, "jane@example.com")

	inv := createInvoice(t, s, bearer)

	w := doJSON(t, s, http.MethodGet, "/invoices/"+inv.InvoiceID+"/pdf", bearer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.NotZero(t, w.Body.Len())
}
