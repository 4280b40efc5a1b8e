package users

import (
	"context"
	"errors"
	"fmt"

	"codeberg.org/promptfotos/server/internal/quota"
	"github.com/jackc/pgx/v5"
)

var ErrUserNotFound = quota.ErrUserNotFound

// creates a new user repository
func NewRepository(db DBTX) *Repository {
	return &Repository{db: db}
}

func scanUser(row pgx.Row) (*User, error) {
	var user User

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.AvatarURL,
		&user.Provider,
		&user.ProviderID,
		&user.SubscriptionStatus,
		&user.FreeGenerationsUsed,
		&user.FreeGenerationsLimit,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, err
	}

	return &user, nil
}

// creates the account on first sign-in, refreshes profile fields afterwards
func (r *Repository) UpsertFromProvider(ctx context.Context, profile ProviderProfile) (*User, error) {
	return scanUser(r.db.QueryRow(
		ctx,
		queryUpsertByProvider,
		profile.Email,
		profile.Name,
		profile.AvatarURL,
		profile.Provider,
		profile.ProviderID,
		quota.FreeGenerationsLimit,
	))
}

// finds a user by their ID
func (r *Repository) FindByID(ctx context.Context, userID string) (*User, error) {
	return scanUser(r.db.QueryRow(ctx, queryFindByID, userID))
}

// GetQuota loads the quota projection used by the generation gate.
func (r *Repository) GetQuota(ctx context.Context, userID string) (*quota.Subscription, error) {
	var (
		sub    quota.Subscription
		status string
	)

	err := r.db.QueryRow(ctx, queryGetQuota, userID).Scan(
		&sub.UserID,
		&status,
		&sub.GenerationsUsed,
		&sub.GenerationsLimit,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, err
	}

	sub.Tier = quota.ParseTier(status)

	return &sub, nil
}

// ReserveFreeGeneration takes one slot of the free allowance in a single conditional
// UPDATE. ok is false when the user is already at the limit.
func (r *Repository) ReserveFreeGeneration(ctx context.Context, userID string) (int, bool, error) {
	var used int

	err := r.db.QueryRow(ctx, queryReserveFreeGeneration, userID).Scan(&used)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}

	if err != nil {
		return 0, false, err
	}

	return used, true, nil
}

func (r *Repository) ReleaseFreeGeneration(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, queryReleaseFreeGeneration, userID)
	return err
}

func (r *Repository) IncrementGenerations(ctx context.Context, userID string) (int, error) {
	var used int

	err := r.db.QueryRow(ctx, queryIncrementGenerations, userID).Scan(&used)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrUserNotFound
	}

	if err != nil {
		return 0, err
	}

	return used, nil
}

func (r *Repository) ResetGenerations(ctx context.Context, userID string) error {
	tag, err := r.db.Exec(ctx, queryResetGenerations, userID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *Repository) SetSubscriptionStatus(ctx context.Context, userID string, tier quota.Tier) error {
	tag, err := r.db.Exec(ctx, queryUpdateSubscriptionStatus, string(tier), userID)
	if err != nil {
		return fmt.Errorf("failed to update subscription status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

var _ quota.Store = (*Repository)(nil)
