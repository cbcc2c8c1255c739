// Package client assembles the invoice persistence stack for a user-facing
// session: the backend variant chosen by configuration, the sync repository
// and the reactive state store.
package client

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/neeraj3071/InvoicePro/internal/config"
	"github.com/neeraj3071/InvoicePro/internal/identity"
	"github.com/neeraj3071/InvoicePro/internal/invoice/apiclient"
	"github.com/neeraj3071/InvoicePro/internal/invoice/boltstore"
	"github.com/neeraj3071/InvoicePro/internal/invoice/domain"
	"github.com/neeraj3071/InvoicePro/internal/invoice/state"
	invoicesync "github.com/neeraj3071/InvoicePro/internal/invoice/sync"
	"go.uber.org/zap"
)

// NewStore returns the persistence variant named by configuration. The
// choice happens exactly once; every later call goes through the uniform
// store contract.
func NewStore(cfg config.Config, session *identity.Session, log *zap.Logger) (domain.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendRemote:
		return apiclient.New(cfg.RemoteBaseURL, session.Token, log), nil
	case config.BackendLocal:
		node, err := snowflake.NewNode(1)
		if err != nil {
			return nil, err
		}
		return boltstore.Open(cfg.LocalStorePath, log, node)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// Stack bundles the client-side components that share one session.
type Stack struct {
	Session *identity.Session
	Store   domain.Store
	Repo    *invoicesync.Repository
	State   *state.Store
}

// NewStack wires a complete client stack for the configured backend.
func NewStack(cfg config.Config, log *zap.Logger) (*Stack, error) {
	session := &identity.Session{}
	store, err := NewStore(cfg, session, log)
	if err != nil {
		return nil, err
	}
	repo := invoicesync.New(store, session, log)
	return &Stack{
		Session: session,
		Store:   store,
		Repo:    repo,
		State:   state.New(repo, session, log),
	}, nil
}

// Close releases the underlying store.
func (s *Stack) Close() error {
	return s.Store.Close()
}
