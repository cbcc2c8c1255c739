package auth

import (
	"go.uber.org/fx"

	"github.com/neeraj3071/InvoicePro/internal/auth/domain"
	"github.com/neeraj3071/InvoicePro/internal/auth/service"
	"github.com/neeraj3071/InvoicePro/internal/auth/token"
	"github.com/neeraj3071/InvoicePro/internal/config"
	"github.com/neeraj3071/InvoicePro/pkg/repository"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.ProvideStore[domain.User]),
	fx.Provide(provideTokenManager),
	fx.Provide(service.New),
)

func provideTokenManager(cfg config.Config) *token.Manager {
	return token.NewManager(cfg.AuthJWTSecret, cfg.AuthJWTIssuer, cfg.AuthTokenTTL)
}
