package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/neeraj3071/InvoicePro/internal/invoice/domain"
)

func newListCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the session owner's invoices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := newStack()
			if err != nil {
				return err
			}
			defer stack.Close()

			invoices, err := stack.Repo.LoadAll(cmd.Context())
			if err != nil {
				return err
			}
			if status != "" {
				want, err := domain.ParseStatus(status)
				if err != nil {
					return err
				}
				filtered := invoices[:0]
				for _, inv := range invoices {
					if inv.Status == want {
						filtered = append(filtered, inv)
					}
				}
				invoices = filtered
			}
			return printJSON(invoices)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only show invoices with this status")
	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <invoiceId>",
		Short: "Show one invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := newStack()
			if err != nil {
				return err
			}
			defer stack.Close()

			inv, err := stack.Repo.GetOne(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(inv)
		},
	}
}

func newCreateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "create -f draft.json",
		Short: "Create an invoice from a JSON draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var draft domain.Invoice
			if err := readJSONFile(file, &draft); err != nil {
				return err
			}

			stack, err := newStack()
			if err != nil {
				return err
			}
			defer stack.Close()

			created, err := stack.Repo.CreateInvoice(cmd.Context(), draft)
			if err != nil {
				return err
			}
			return printJSON(created)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path of the JSON draft")
	cobra.CheckErr(cmd.MarkFlagRequired("file"))
	return cmd
}

func newUpdateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "update <invoiceId> -f patch.json",
		Short: "Apply a partial update to an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload patchPayload
			if err := readJSONFile(file, &payload); err != nil {
				return err
			}
			patch, err := payload.toPatch()
			if err != nil {
				return err
			}

			stack, err := newStack()
			if err != nil {
				return err
			}
			defer stack.Close()

			updated, err := stack.Repo.UpdateInvoice(cmd.Context(), domain.Ref{InvoiceID: args[0]}, patch)
			if err != nil {
				return err
			}
			return printJSON(updated)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path of the JSON patch")
	cobra.CheckErr(cmd.MarkFlagRequired("file"))
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <invoiceId>",
		Short: "Delete an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := newStack()
			if err != nil {
				return err
			}
			defer stack.Close()

			if err := stack.Repo.DeleteInvoice(cmd.Context(), domain.Ref{InvoiceID: args[0]}); err != nil {
				return err
			}
			fmt.Println("deleted", args[0])
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <invoiceId> <draft|pending|paid>",
		Short: "Move an invoice into a status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := domain.ParseStatus(args[1])
			if err != nil {
				return err
			}

			stack, err := newStack()
			if err != nil {
				return err
			}
			defer stack.Close()

			ref := domain.Ref{InvoiceID: args[0]}
			var updated *domain.Invoice
			switch status {
			case domain.StatusPaid:
				updated, err = stack.Repo.MarkPaid(cmd.Context(), ref)
			case domain.StatusPending:
				updated, err = stack.Repo.MarkPending(cmd.Context(), ref)
			default:
				principal, ok := stack.Session.Current()
				if !ok {
					return domain.ErrUnauthorized
				}
				updated, err = stack.Store.SetStatus(cmd.Context(), principal.OwnerID, ref, status)
			}
			if err != nil {
				return err
			}
			return printJSON(updated)
		},
	}
}

// patchPayload mirrors the wire shape of a partial update. Absent keys leave
// the stored fields untouched.
type patchPayload struct {
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

	Items []domain.InvoiceItem `json:"invoiceItemList"`

	Status *string `json:"status"`
}

func (p patchPayload) toPatch() (domain.Patch, error) {
	patch := domain.Patch{
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
	}
	if p.Status != nil {
		status, err := domain.ParseStatus(*p.Status)
		if err != nil {
			return domain.Patch{}, err
		}
		patch.Status = &status
	}
	return patch, nil
}

func readJSONFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
