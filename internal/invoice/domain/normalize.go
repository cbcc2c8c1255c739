package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

// NormalizeNew prepares a caller-supplied draft for first persistence: it
// stamps the record key, public identifier, owner and timestamps, assigns
// item identifiers, recomputes derived totals and validates the result.
// Both store variants run drafts through here so a created record looks the
// same no matter which backend is active.
func NormalizeNew(draft *Invoice, ownerID snowflake.ID, key snowflake.ID, now time.Time) error {
	draft.ID = key
	draft.OwnerID = ownerID
	if draft.InvoiceID == "" {
		draft.InvoiceID = uuid.NewString()
	}
	if draft.Status == "" {
		draft.Status = StatusPending
	}
	for idx := range draft.Items {
		if draft.Items[idx].ID == "" {
			draft.Items[idx].ID = uuid.NewString()
		}
		draft.Items[idx].InvoiceKey = key
	}
	now = now.UTC()
	draft.CreatedAt = now
	draft.UpdatedAt = now

	if err := draft.RecomputeTotals(); err != nil {
		return err
	}
	return draft.Validate()
}

// ApplyPatch merges a partial update onto an existing record, recomputing
// totals when the item list changed. The record key, public identifier,
// owner and creation time are untouchable.
func ApplyPatch(inv *Invoice, patch Patch, now time.Time) error {
	setString(&inv.BillerStreetAddress, patch.BillerStreetAddress)
	setString(&inv.BillerCity, patch.BillerCity)
	setString(&inv.BillerZipCode, patch.BillerZipCode)
	setString(&inv.BillerState, patch.BillerState)
	setString(&inv.BillerCountry, patch.BillerCountry)

	setString(&inv.ClientName, patch.ClientName)
	setString(&inv.ClientEmail, patch.ClientEmail)
	setString(&inv.ClientStreetAddress, patch.ClientStreetAddress)
	setString(&inv.ClientCity, patch.ClientCity)
	setString(&inv.ClientZipCode, patch.ClientZipCode)
	setString(&inv.ClientState, patch.ClientState)
	setString(&inv.ClientCountry, patch.ClientCountry)

	setInt64(&inv.InvoiceDateUnix, patch.InvoiceDateUnix)
	setString(&inv.InvoiceDate, patch.InvoiceDate)
	setString(&inv.PaymentTerms, patch.PaymentTerms)
	setInt64(&inv.PaymentDueDateUnix, patch.PaymentDueDateUnix)
	setString(&inv.PaymentDueDate, patch.PaymentDueDate)

	setString(&inv.ProductDescription, patch.ProductDescription)

	if patch.Items != nil {
		items := make([]InvoiceItem, len(patch.Items))
		copy(items, patch.Items)
		for idx := range items {
			if items[idx].ID == "" {
				items[idx].ID = uuid.NewString()
			}
			items[idx].InvoiceKey = inv.ID
		}
		inv.Items = items
	}

	if patch.Status != nil {
		if err := inv.SetStatus(*patch.Status); err != nil {
			return err
		}
	}

	inv.UpdatedAt = now.UTC()

	if err := inv.RecomputeTotals(); err != nil {
		return err
	}
	return inv.Validate()
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt64(dst *int64, src *int64) {
	if src != nil {
		*dst = *src
	}
}
