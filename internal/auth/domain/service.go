package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// RegisterRequest carries the fields required to create an account. Field
// presence is validated at the HTTP boundary so every violation can be
// reported at once.
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Company   string `json:"company"`
}

// LoginRequest carries credentials for authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate carries the mutable profile fields. Nil pointers leave the
// current value unchanged.
type ProfileUpdate struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Company   *string `json:"company"`
}

// Service issues and verifies sessions and manages user accounts.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, string, error)
	Login(ctx context.Context, req LoginRequest) (*User, string, error)
	VerifyToken(ctx context.Context, token string) (*User, error)
	CurrentUser(ctx context.Context, id snowflake.ID) (*User, error)
	UpdateProfile(ctx context.Context, id snowflake.ID, update ProfileUpdate) (*User, error)
}
