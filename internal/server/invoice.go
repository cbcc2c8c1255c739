package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	invoicedomain "github.com/neeraj3071/InvoicePro/internal/invoice/domain"
)

// invoicePatchRequest mirrors the update payload. Absent fields stay nil and
// leave the stored value untouched. The owner and public invoice identifier
// have no field here, so they survive any payload.
type invoicePatchRequest struct {
	BillerStreetAddress *string `json:"billerStreetAddress"`
	BillerCity          *string `json:"billerCity"`
	BillerZipCode       *string `json:"billerZipCode"`
	BillerState         *string `json:"billerState"`
	BillerCountry       *string `json:"billerCountry"`

	ClientName          *string `json:"clientName"`
	ClientEmail         *string `json:"clientEmail"`
	ClientStreetAddress *string `json:"clientStreetAddress"`
	ClientCity          *string `json:"clientCity"`
	ClientZipCode       *string `json:"clientZipCode"`
	ClientState         *string `json:"clientState"`
	ClientCountry       *string `json:"clientCountry"`

	InvoiceDateUnix    *int64  `json:"invoiceDateUnix"`
	InvoiceDate        *string `json:"invoiceDate"`
	PaymentTerms       *string `json:"paymentTerms"`
	PaymentDueDateUnix *int64  `json:"paymentDueDateUnix"`
	PaymentDueDate     *string `json:"paymentDueDate"`

	ProductDescription *string `json:"productDescription"`

	Items []invoicedomain.InvoiceItem `json:"invoiceItemList"`

	Status *string `json:"status"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) ListInvoices(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var filter invoicedomain.ListFilter
	if raw, present := c.GetQuery("status"); present {
		status, err := invoicedomain.ParseStatus(raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		filter.Status = &status
	}

	invoices, err := s.invoices.ListByOwner(c.Request.Context(), principal.OwnerID, filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(invoices),
		"invoices": invoices,
	})
}

func (s *Server) GetInvoice(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	inv, err := s.invoices.GetOne(c.Request.Context(), principal.OwnerID, c.Param("invoiceId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

func (s *Server) CreateInvoice(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var draft invoicedomain.Invoice
	if err := c.ShouldBindJSON(&draft); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	created, err := s.invoices.Create(c.Request.Context(), principal.OwnerID, draft)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"invoice": created})
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req invoicePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ref := invoicedomain.Ref{InvoiceID: c.Param("invoiceId")}
	updated, err := s.invoices.Update(c.Request.Context(), principal.OwnerID, ref, patch)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoice": updated})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	invoiceID := c.Param("invoiceId")
	ref := invoicedomain.Ref{InvoiceID: invoiceID}
	if err := s.invoices.Delete(c.Request.Context(), principal.OwnerID, ref); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoiceId": invoiceID})
}

func (s *Server) SetInvoiceStatus(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	status, err := invoicedomain.ParseStatus(req.Status)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ref := invoicedomain.Ref{InvoiceID: c.Param("invoiceId")}
	updated, err := s.invoices.SetStatus(c.Request.Context(), principal.OwnerID, ref, status)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoice": updated})
}

func (s *Server) RenderInvoicePDF(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	inv, err := s.invoices.GetOne(c.Request.Context(), principal.OwnerID, c.Param("invoiceId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc, err := s.renderer.RenderInvoice(c.Request.Context(), *inv)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="invoice-`+inv.InvoiceID+`.pdf"`)
	c.DataFromReader(http.StatusOK, -1, "application/pdf", doc, nil)
}

func (r invoicePatchRequest) toPatch() (invoicedomain.Patch, error) {
	patch := invoicedomain.Patch{
		BillerStreetAddress: r.BillerStreetAddress,
		BillerCity:          r.BillerCity,
		BillerZipCode:       r.BillerZipCode,
		BillerState:         r.BillerState,
		BillerCountry:       r.BillerCountry,
		ClientName:          r.ClientName,
		ClientEmail:         r.ClientEmail,
		ClientStreetAddress: r.ClientStreetAddress,
		ClientCity:          r.ClientCity,
		ClientZipCode:       r.ClientZipCode,
		ClientState:         r.ClientState,
		ClientCountry:       r.ClientCountry,
		InvoiceDateUnix:     r.InvoiceDateUnix,
		InvoiceDate:         r.InvoiceDate,
		PaymentTerms:        r.PaymentTerms,
		PaymentDueDateUnix:  r.PaymentDueDateUnix,
		PaymentDueDate:      r.PaymentDueDate,
		ProductDescription:  r.ProductDescription,
		Items:               r.Items,
	}

	if r.Status != nil {
		status, err := invoicedomain.ParseStatus(*r.Status)
		if err != nil {
			return invoicedomain.Patch{}, err
		}
		patch.Status = &status
	}
	return patch, nil
}
