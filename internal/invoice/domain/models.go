// Package domain contains the invoice aggregate and the persistence contract.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Invoice represents a single invoice owned by one principal.
//
// ID is the storage record key, assigned by the backend at creation.
// InvoiceID is the public identifier used for routing and lookup; it is
// generated once and never changes. OwnerID is set from the authenticated
// principal at creation and is never accepted from update payloads.
type Invoice struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"docId"`
	InvoiceID string       `gorm:"type:text;not null;uniqueIndex" json:"invoiceId"`
	OwnerID   snowflake.ID `gorm:"not null;index" json:"ownerId"`

	BillerStreetAddress string `gorm:"type:text;not null" json:"billerStreetAddress"`
	BillerCity          string `gorm:"type:text;not null" json:"billerCity"`
	BillerZipCode       string `gorm:"type:text;not null" json:"billerZipCode"`
	BillerState         string `gorm:"type:text;not null" json:"billerState"`
	BillerCountry       string `gorm:"type:text;not null" json:"billerCountry"`

	ClientName          string `gorm:"type:text;not null" json:"clientName"`
	ClientEmail         string `gorm:"type:text;not null" json:"clientEmail"`
	ClientStreetAddress string `gorm:"type:text;not null" json:"clientStreetAddress"`
	ClientCity          string `gorm:"type:text;not null" json:"clientCity"`
	ClientZipCode       string `gorm:"type:text;not null" json:"clientZipCode"`
	ClientState         string `gorm:"type:text;not null" json:"clientState"`
	ClientCountry       string `gorm:"type:text;not null" json:"clientCountry"`

	// The date pairs carry the same instant twice: once as unix seconds for
	// sorting and arithmetic, once preformatted for display.
	InvoiceDateUnix    int64  `gorm:"not null" json:"invoiceDateUnix"`
	InvoiceDate        string `gorm:"type:text;not null" json:"invoiceDate"`
	PaymentTerms       string `gorm:"type:text;not null" json:"paymentTerms"`
	PaymentDueDateUnix int64  `gorm:"not null" json:"paymentDueDateUnix"`
	PaymentDueDate     string `gorm:"type:text;not null" json:"paymentDueDate"`

	ProductDescription string `gorm:"type:text;not null" json:"productDescription"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceKey;references:ID;constraint:OnDelete:CASCADE" json:"invoiceItemList"`

	// Total is derived from the items and never independently settable.
	// Amounts are integer minor units.
	Total int64 `gorm:"not null;default:0" json:"invoiceTotal"`

	Status Status `gorm:"type:text;not null;default:'pending'" json:"status"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// Ref addresses an invoice for update and delete. Key is authoritative for
// the embedded store; InvoiceID is authoritative on the wire, where the
// record key never appears in a path.
type Ref struct {
	Key       snowflake.ID
	InvoiceID string
}

// Ref returns the reference addressing this invoice.
func (i *Invoice) Ref() Ref {
	return Ref{Key: i.ID, InvoiceID: i.InvoiceID}
}

// InvoiceItem is one line on an invoice. LineTotal is always recomputed from
// quantity and unit price when the invoice is persisted.
type InvoiceItem struct {
	ID         string       `gorm:"primaryKey;type:text" json:"id"`
	InvoiceKey snowflake.ID `gorm:"not null;index" json:"-"`
	Name       string       `gorm:"type:text;not null" json:"itemName"`
	Quantity   int64        `gorm:"not null" json:"qty"`
	UnitPrice  int64        `gorm:"not null" json:"price"`
	LineTotal  int64        `gorm:"not null" json:"total"`
	Position   int          `gorm:"not null;default:0" json:"-"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }
