package subscriptions

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

// billing state mirrored from the payment provider
type Subscription struct {
	ID                  string     `json:"id"`
	UserID              string     `json:"userId"`
	CreemSubscriptionID string     `json:"creemSubscriptionId"`
	Status              string     `json:"status"`
	CurrentPeriodStart  *time.Time `json:"currentPeriodStart"`
	CurrentPeriodEnd    *time.Time `json:"currentPeriodEnd"`
	CreatedAt           time.Time  `json:"createdAt"`
}

// data needed to mark a user pro
type Activation struct {
	UserID              string
	CreemSubscriptionID string
	Status              string
	CurrentPeriodStart  *time.Time
	CurrentPeriodEnd    *time.Time
}

const StatusCanceled = "canceled"
