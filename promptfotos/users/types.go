package users

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// the part of a pgx pool (or transaction) the repository uses
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// handles user database operations
type Repository struct {
	db DBTX
}

// represents an account created through OAuth sign-in
type User struct {
	ID                   string    `json:"id"`
	Email                string    `json:"email"`
	Name                 string    `json:"name"`
	AvatarURL            string    `json:"avatarUrl"`
	Provider             string    `json:"provider"`
	ProviderID           string    `json:"-"`
	SubscriptionStatus   string    `json:"subscriptionStatus"`
	FreeGenerationsUsed  int       `json:"freeGenerationsUsed"`
	FreeGenerationsLimit int       `json:"freeGenerationsLimit"`
	IsAdmin              bool      `json:"isAdmin"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// identity returned by the OAuth provider
type ProviderProfile struct {
	Provider   string
	ProviderID string
	Email      string
	Name       string
	AvatarURL  string
}
