package domain

import (
	"fmt"
	"regexp"
)

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// ComputeTotal returns the invoice total for the given items, the sum of
// quantity times unit price per line. Items with quantity below one or a
// negative unit price are rejected with a validation error naming the item.
func ComputeTotal(items []InvoiceItem) (int64, error) {
	vErr := &ValidationErrors{}
	var total int64
	for idx, item := range items {
		if item.Quantity < 1 {
			vErr.add(fmt.Sprintf("invoiceItemList[%d].qty", idx), "min", "quantity must be at least 1")
			continue
		}
		if item.UnitPrice < 0 {
			vErr.add(fmt.Sprintf("invoiceItemList[%d].price", idx), "min", "price cannot be negative")
			continue
		}
		total += item.Quantity * item.UnitPrice
	}
	if len(vErr.Errors) > 0 {
		return 0, vErr
	}
	return total, nil
}

// RecomputeTotals rewrites every line total and the invoice total from the
// current items. Derived amounts are never trusted from callers.
func (i *Invoice) RecomputeTotals() error {
	total, err := ComputeTotal(i.Items)
	if err != nil {
		return err
	}
	for idx := range i.Items {
		i.Items[idx].LineTotal = i.Items[idx].Quantity * i.Items[idx].UnitPrice
		i.Items[idx].Position = idx
	}
	i.Total = total
	return nil
}

// Validate checks required fields, numeric bounds and the client email
// format. Every violation is collected into one error.
func (i *Invoice) Validate() error {
	vErr := &ValidationErrors{}

	required := []struct {
		field string
		value string
	}{
		{"billerStreetAddress", i.BillerStreetAddress},
		{"billerCity", i.BillerCity},
		{"billerZipCode", i.BillerZipCode},
		{"billerState", i.BillerState},
		{"billerCountry", i.BillerCountry},
		{"clientName", i.ClientName},
		{"clientEmail", i.ClientEmail},
		{"clientStreetAddress", i.ClientStreetAddress},
		{"clientCity", i.ClientCity},
		{"clientZipCode", i.ClientZipCode},
		{"clientState", i.ClientState},
		{"clientCountry", i.ClientCountry},
		{"invoiceDate", i.InvoiceDate},
		{"paymentTerms", i.PaymentTerms},
		{"paymentDueDate", i.PaymentDueDate},
		{"productDescription", i.ProductDescription},
	}
	for _, f := range required {
		if f.value == "" {
			vErr.add(f.field, "required", f.field+" is required")
		}
	}

	if i.ClientEmail != "" && !emailPattern.MatchString(i.ClientEmail) {
		vErr.add("clientEmail", "format", "client email must be a valid address")
	}
	if i.InvoiceDateUnix == 0 {
		vErr.add("invoiceDateUnix", "required", "invoice date is required")
	}
	if i.PaymentDueDateUnix == 0 {
		vErr.add("paymentDueDateUnix", "required", "payment due date is required")
	}
	if !i.Status.Valid() {
		vErr.add("status", "invalid_status", "unknown status value")
	}

	for idx, item := range i.Items {
		if item.Name == "" {
			vErr.add(fmt.Sprintf("invoiceItemList[%d].itemName", idx), "required", "item name is required")
		}
		if item.Quantity < 1 {
			vErr.add(fmt.Sprintf("invoiceItemList[%d].qty", idx), "min", "quantity must be at least 1")
		}
		if item.UnitPrice < 0 {
			vErr.add(fmt.Sprintf("invoiceItemList[%d].price", idx), "min", "price cannot be negative")
		}
	}
	if i.Total < 0 {
		vErr.add("invoiceTotal", "min", "invoice total cannot be negative")
	}

	if len(vErr.Errors) > 0 {
		return vErr
	}
	return nil
}
