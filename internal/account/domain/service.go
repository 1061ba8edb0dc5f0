package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type RegisterRequest struct {
	Email    string         `json:"email"`
	Login    string         `json:"login"`
	Password string         `json:"password"`
	Meta     map[string]any `json:"meta"`
}

type UpdateProfileRequest struct {
	Email       string         `json:"email"`
	NewPassword string         `json:"new_password"`
	Meta        map[string]any `json:"meta"`
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (User, error)

	// Authenticate verifies credentials for a login name or email address.
	// Both outcomes publish their lifecycle event.
	Authenticate(ctx context.Context, login, password string) (User, error)

	UpdateProfile(ctx context.Context, id snowflake.ID, req UpdateProfileRequest) (User, error)

	GetByID(ctx context.Context, id snowflake.ID) (User, error)
}
