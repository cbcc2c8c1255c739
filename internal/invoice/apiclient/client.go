// Package apiclient implements the invoice store against the remote
// document service. Every operation round-trips; caching, if any, lives in
// the sync layer's mirror, never here.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/neeraj3071/InvoicePro/internal/invoice/domain"
	"go.uber.org/zap"
)

// TokenSource supplies the bearer token for the current session. It is
// consulted per request so a refreshed token takes effect immediately.
type TokenSource func() string

// Client speaks the invoice REST contract. The server derives the owner from
// the bearer token; the ownerID arguments exist to satisfy the uniform store
// contract and are not transmitted.
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSource
	log     *zap.Logger
}

// New returns a Client for the service at baseURL.
func New(baseURL string, token TokenSource, log *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		token:   token,
		log:     log.Named("invoice.apiclient"),
	}
}

type listResponse struct {
	Count    int              `json:"count"`
	Invoices []domain.Invoice `json:"invoices"`
}

type invoiceResponse struct {
	Invoice domain.Invoice `json:"invoice"`
}

type errorResponse struct {
	Error struct {
		Type    string              `json:"type"`
		Message string              `json:"message"`
		Errors  []domain.FieldError `json:"errors"`
	} `json:"error"`
}

// wirePatch mirrors domain.Patch onto the wire. Absent fields stay absent so
// the server merges rather than overwrites.
type wirePatch struct {
	BillerStreetAddress *string `json:"billerStreetAddress,omitempty"`
	BillerCity          *string `json:"billerCity,omitempty"`
	BillerZipCode       *string `json:"billerZipCode,omitempty"`
	BillerState         *string `json:"billerState,omitempty"`
	BillerCountry       *string `json:"billerCountry,omitempty"`

	ClientName          *string `json:"clientName,omitempty"`
	ClientEmail         *string `json:"clientEmail,omitempty"`
	ClientStreetAddress *string `json:"clientStreetAddress,omitempty"`
	ClientCity          *string `json:"clientCity,omitempty"`
	ClientZipCode       *string `json:"clientZipCode,omitempty"`
	ClientState         *string `json:"clientState,omitempty"`
	ClientCountry       *string `json:"clientCountry,omitempty"`

	InvoiceDateUnix    *int64  `json:"invoiceDateUnix,omitempty"`
	InvoiceDate        *string `json:"invoiceDate,omitempty"`
	PaymentTerms       *string `json:"paymentTerms,omitempty"`
	PaymentDueDateUnix *int64  `json:"paymentDueDateUnix,omitempty"`
	PaymentDueDate     *string `json:"paymentDueDate,omitempty"`

	ProductDescription *string `json:"productDescription,omitempty"`

	Items []domain.InvoiceItem `json:"invoiceItemList,omitempty"`

	Status *domain.Status `json:"status,omitempty"`
}

func (c *Client) ListByOwner(ctx context.Context, ownerID snowflake.ID, filter domain.ListFilter) ([]domain.Invoice, error) {
	endpoint := c.baseURL + "/invoices"
	if filter.Status != nil {
		endpoint += "?status=" + url.QueryEscape(string(*filter.Status))
	}

	var resp listResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Invoices == nil {
		resp.Invoices = []domain.Invoice{}
	}
	return resp.Invoices, nil
}

func (c *Client) GetOne(ctx context.Context, ownerID snowflake.ID, invoiceID string) (*domain.Invoice, error) {
	var resp invoiceResponse
	err := c.do(ctx, http.MethodGet, c.invoiceURL(invoiceID), nil, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Invoice, nil
}

func (c *Client) Create(ctx context.Context, ownerID snowflake.ID, draft domain.Invoice) (*domain.Invoice, error) {
	var resp invoiceResponse
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/invoices", draft, &resp); err != nil {
		return nil, err
	}
	return &resp.Invoice, nil
}

func (c *Client) Update(ctx context.Context, ownerID snowflake.ID, ref domain.Ref, patch domain.Patch) (*domain.Invoice, error) {
	var resp invoiceResponse
	err := c.do(ctx, http.MethodPut, c.invoiceURL(ref.InvoiceID), toWirePatch(patch), &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Invoice, nil
}

func (c *Client) Delete(ctx context.Context, ownerID snowflake.ID, ref domain.Ref) error {
	return c.do(ctx, http.MethodDelete, c.invoiceURL(ref.InvoiceID), nil, nil)
}

func (c *Client) SetStatus(ctx context.Context, ownerID snowflake.ID, ref domain.Ref, status domain.Status) (*domain.Invoice, error) {
	body := map[string]string{"status": string(status)}
	var resp invoiceResponse
	err := c.do(ctx, http.MethodPatch, c.invoiceURL(ref.InvoiceID)+"/status", body, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Invoice, nil
}

// Close is a no-op; the underlying transport pools its own connections.
func (c *Client) Close() error { return nil }

func (c *Client) invoiceURL(invoiceID string) string {
	return c.baseURL + "/invoices/" + url.PathEscape(invoiceID)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.mapError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrUnavailable, err)
	}
	return nil
}

func (c *Client) mapError(resp *http.Response) error {
	var payload errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusBadRequest:
		if len(payload.Error.Errors) > 0 {
			return &domain.ValidationErrors{Errors: payload.Error.Errors}
		}
		return &domain.ValidationErrors{Errors: []domain.FieldError{{
			Field:   "request",
			Code:    "invalid_request",
			Message: payload.Error.Message,
		}}}
	default:
		c.log.Warn("backend failure",
			zap.Int("status", resp.StatusCode),
			zap.String("type", payload.Error.Type),
		)
		return fmt.Errorf("%w: status %d", domain.ErrUnavailable, resp.StatusCode)
	}
}

func toWirePatch(p domain.Patch) wirePatch {
	return wirePatch{
		BillerStreetAddress: p.BillerStreetAddress,
		BillerCity:          p.BillerCity,
		BillerZipCode:       p.BillerZipCode,
		BillerState:         p.BillerState,
		BillerCountry:       p.BillerCountry,
		ClientName:          p.ClientName,
		ClientEmail:         p.ClientEmail,
		ClientStreetAddress: p.ClientStreetAddress,
		ClientCity:          p.ClientCity,
		ClientZipCode:       p.ClientZipCode,
		ClientState:         p.ClientState,
		ClientCountry:       p.ClientCountry,
		InvoiceDateUnix:     p.InvoiceDateUnix,
		InvoiceDate:         p.InvoiceDate,
		PaymentTerms:        p.PaymentTerms,
		PaymentDueDateUnix:  p.PaymentDueDateUnix,
		PaymentDueDate:      p.PaymentDueDate,
		ProductDescription:  p.ProductDescription,
		Items:               p.Items,
		Status:              p.Status,
	}
}
