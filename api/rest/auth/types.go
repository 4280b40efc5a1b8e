package auth

import (
	"context"
	"net/http"

	"codeberg.org/promptfotos/server/internal/locale"
	"codeberg.org/promptfotos/server/promptfotos/users"
)

type UserStore interface {
	UpsertFromProvider(ctx context.Context, profile users.ProviderProfile) (*users.User, error)
	FindByID(ctx context.Context, userID string) (*users.User, error)
}

// picks the landing locale after sign-in
type LocalePicker interface {
	Preferred(req *http.Request) locale.Tag
}

// UserResponse wraps user data
type UserResponse struct {
	User *users.User `json:"user"`
}

// MessageResponse for simple success messages
type MessageResponse struct {
	Message string `json:"message"`
}
