// Command invoicepro runs the invoice document service.
package main

import (
	"go.uber.org/fx"

	"github.com/neeraj3071/InvoicePro/internal/server"
	"github.com/neeraj3071/InvoicePro/pkg/db"
	"github.com/neeraj3071/InvoicePro/pkg/log"
)

func main() {
	fx.New(
		log.Module,
		db.Module,
		server.Module,
	).Run()
}
