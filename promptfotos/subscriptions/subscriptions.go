package subscriptions

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrUserNotFound         = errors.New("user not found")
)

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Activate marks the user pro and records the subscription in one transaction.
// Redelivered events update the existing row.
func (r *Repository) Activate(ctx context.Context, a Activation) (*Subscription, error) {
	var sub *Subscription

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, querySetUserStatus, "pro", a.UserID)
		if err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}

		if tag.RowsAffected() == 0 {
			return ErrUserNotFound
		}

		sub, err = scanSubscription(tx.QueryRow(
			ctx,
			queryUpsert,
			a.UserID,
			a.CreemSubscriptionID,
			a.Status,
			a.CurrentPeriodStart,
			a.CurrentPeriodEnd,
		))
		if err != nil {
			return fmt.Errorf("failed to upsert subscription: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return sub, nil
}

// Cancel marks the subscription canceled and drops its user back to free, unless
// another live subscription still covers them. Returns the affected user id.
func (r *Repository) Cancel(ctx context.Context, creemSubscriptionID string) (string, error) {
	var userID string

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, queryMarkCanceled, StatusCanceled, creemSubscriptionID).Scan(&userID)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSubscriptionNotFound
		}

		if err != nil {
			return fmt.Errorf("failed to cancel subscription: %w", err)
		}

		var stillActive bool
		if err := tx.QueryRow(ctx, queryHasOtherActive, userID, creemSubscriptionID).Scan(&stillActive); err != nil {
			return fmt.Errorf("failed to check remaining subscriptions: %w", err)
		}

		if stillActive {
			return nil
		}

		if _, err := tx.Exec(ctx, querySetUserStatus, "free", userID); err != nil {
			return fmt.Errorf("failed to downgrade user: %w", err)
		}

		return nil
	})

	if err != nil {
		return "", err
	}

	return userID, nil
}

// most recent subscription of a user, nil when they never subscribed
func (r *Repository) LatestByUser(ctx context.Context, userID string) (*Subscription, error) {
	sub, err := scanSubscription(r.db.QueryRow(ctx, queryLatestByUser, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	return sub, err
}

func scanSubscription(row pgx.Row) (*Subscription, error) {
	var s Subscription

	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.CreemSubscriptionID,
		&s.Status,
		&s.CurrentPeriodStart,
		&s.CurrentPeriodEnd,
		&s.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return &s, nil
}
