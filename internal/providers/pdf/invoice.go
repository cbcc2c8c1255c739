// Package pdf renders invoices as PDF documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	marotoconfig "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"

	invoicedomain "github.com/neeraj3071/InvoicePro/internal/invoice/domain"
)

// Renderer produces a printable document for one invoice.
type Renderer interface {
	RenderInvoice(ctx context.Context, inv invoicedomain.Invoice) (io.Reader, error)
}

type marotoRenderer struct{}

// New returns the maroto-backed renderer.
func New() Renderer {
	return &marotoRenderer{}
}

func (r *marotoRenderer) RenderInvoice(ctx context.Context, inv invoicedomain.Invoice) (io.Reader, error) {
	cfg := marotoconfig.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(10,
		text.NewCol(12, "Invoice #"+inv.InvoiceID, props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Date of issue: "+inv.InvoiceDate, props.Text{Top: 0}),
			text.New("Date due: "+inv.PaymentDueDate, props.Text{Top: 4}),
			text.New("Status: "+string(inv.Status), props.Text{Top: 8}),
		),
		col.New(6),
	)

	m.AddRow(40,
		col.New(6).Add(
			text.New("From", props.Text{Style: fontstyle.Bold}),
			text.New(inv.BillerStreetAddress, props.Text{Top: 5}),
			text.New(inv.BillerCity+", "+inv.BillerState+" "+inv.BillerZipCode, props.Text{Top: 9}),
			text.New(inv.BillerCountry, props.Text{Top: 13}),
		),
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New(inv.ClientName, props.Text{Top: 5}),
			text.New(inv.ClientStreetAddress, props.Text{Top: 9}),
			text.New(inv.ClientCity+", "+inv.ClientState+" "+inv.ClientZipCode, props.Text{Top: 13}),
			text.New(inv.ClientCountry, props.Text{Top: 17}),
			text.New(inv.ClientEmail, props.Text{Top: 21}),
		),
	)

	m.AddRow(15,
		text.NewCol(12, inv.ProductDescription, props.Text{Size: 10, Top: 2}),
	)

	m.AddRow(10,
		text.NewCol(6, "Item", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range inv.Items {
		m.AddRow(12,
			text.NewCol(6, item.Name, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", item.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, formatAmount(item.UnitPrice), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, formatAmount(item.LineTotal), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(12,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(2, formatAmount(inv.Total), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}

// formatAmount renders integer minor units as a decimal money string.
func formatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
