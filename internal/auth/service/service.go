// Package service implements account registration and session management.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/neeraj3071/InvoicePro/internal/auth/domain"
	"github.com/neeraj3071/InvoicePro/internal/auth/password"
	"github.com/neeraj3071/InvoicePro/internal/auth/token"
	"github.com/neeraj3071/InvoicePro/pkg/repository"
)

type service struct {
	users  repository.Repository[domain.User]
	tokens *token.Manager
	genID  *snowflake.Node
	log    *zap.Logger
	now    func() time.Time
}

// New builds the auth service backed by the users table.
func New(users repository.Repository[domain.User], tokens *token.Manager, genID *snowflake.Node, log *zap.Logger) domain.Service {
	return &service{
		users:  users,
		tokens: tokens,
		genID:  genID,
		log:    log.Named("auth"),
		now:    time.Now,
	}
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, string, error) {
	email := normalizeEmail(req.Email)

	existing, err := s.users.FindOne(ctx, &domain.User{Email: email})
	if err != nil {
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, "", domain.ErrUserExists
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:           s.genID.Generate(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Company:      strings.TrimSpace(req.Company),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	signed, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()))
	return user, signed, nil
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*domain.User, string, error) {
	email := normalizeEmail(req.Email)

	user, err := s.users.FindOne(ctx, &domain.User{Email: email})
	if err != nil {
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}
	if user == nil || !password.Verify(req.Password, user.PasswordHash) {
		return nil, "", domain.ErrInvalidCredentials
	}

	signed, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}

	s.log.Info("user logged in", zap.String("user_id", user.ID.String()))
	return user, signed, nil
}

func (s *service) VerifyToken(ctx context.Context, raw string) (*domain.User, error) {
	userID, _, err := s.tokens.Verify(raw)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.users.FindOne(ctx, &domain.User{ID: userID})
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrInvalidToken
	}
	return user, nil
}

func (s *service) CurrentUser(ctx context.Context, id snowflake.ID) (*domain.User, error) {
	user, err := s.users.FindOne(ctx, &domain.User{ID: id})
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *service) UpdateProfile(ctx context.Context, id snowflake.ID, update domain.ProfileUpdate) (*domain.User, error) {
	user, err := s.CurrentUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.FirstName != nil {
		user.FirstName = strings.TrimSpace(*update.FirstName)
	}
	if update.LastName != nil {
		user.LastName = strings.TrimSpace(*update.LastName)
	}
	if update.Company != nil {
		user.Company = strings.TrimSpace(*update.Company)
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
