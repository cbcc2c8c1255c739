// Command invoicepro-cli manages invoices from the terminal. It drives the
// same client stack as the desktop frontend: either the embedded local store
// or the remote document service, selected by configuration.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/neeraj3071/InvoicePro/internal/config"
	"github.com/neeraj3071/InvoicePro/internal/identity"
	"github.com/neeraj3071/InvoicePro/internal/invoice/client"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "invoicepro-cli",
		Short:         "Manage invoices against the local store or the remote service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("backend", "", "storage backend: local or remote")
	flags.String("store", "", "path of the local store file")
	flags.String("base-url", "", "base URL of the remote document service")
	flags.String("owner", "", "owner ID the session acts for")
	flags.String("email", "", "email of the session principal")
	flags.String("token", "", "bearer token for the remote backend")
	flags.Bool("verbose", false, "log stack activity to stderr")

	viper.SetEnvPrefix("INVOICEPRO")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	cobra.CheckErr(viper.BindPFlags(flags))

	root.AddCommand(
		newListCmd(),
		newGetCmd(),
		newCreateCmd(),
		newUpdateCmd(),
		newDeleteCmd(),
		newStatusCmd(),
	)
	return root
}

// newStack assembles the configured client stack and signs the session in
// from the owner, email and token settings.
func newStack() (*client.Stack, error) {
	cfg := config.Load()
	if v := viper.GetString("backend"); v != "" {
		cfg.StorageBackend = v
	}
	if v := viper.GetString("store"); v != "" {
		cfg.LocalStorePath = v
	}
	if v := viper.GetString("base-url"); v != "" {
		cfg.RemoteBaseURL = strings.TrimRight(v, "/")
	}

	log := zap.NewNop()
	if viper.GetBool("verbose") {
		var err error
		if log, err = zap.NewDevelopment(); err != nil {
			return nil, err
		}
	}

	stack, err := client.NewStack(cfg, log)
	if err != nil {
		return nil, err
	}

	rawOwner := viper.GetString("owner")
	if rawOwner == "" {
		stack.Close()
		return nil, fmt.Errorf("an owner ID is required, pass --owner or set INVOICEPRO_OWNER")
	}
	owner, err := snowflake.ParseString(rawOwner)
	if err != nil {
		stack.Close()
		return nil, fmt.Errorf("invalid owner ID %q: %w", rawOwner, err)
	}

	stack.Session.SignIn(identity.Principal{
		OwnerID: owner,
		Email:   viper.GetString("email"),
	}, viper.GetString("token"))

	return stack, nil
}
