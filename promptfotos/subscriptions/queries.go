package subscriptions

const (
	queryUpsert = `
		INSERT INTO subscriptions (user_id, creem_subscription_id, status, current_period_start, current_period_end)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (creem_subscription_id)
		DO UPDATE SET
			status = EXCLUDED.status,
			current_period_start = COALESCE(EXCLUDED.current_period_start, subscriptions.current_period_start),
			current_period_end = COALESCE(EXCLUDED.current_period_end, subscriptions.current_period_end)
		RETURNING id, user_id, creem_subscription_id, status, current_period_start, current_period_end, created_at
	`

	querySetUserStatus = `
		UPDATE users
		SET subscription_status = $1, updated_at = NOW()
		WHERE id = $2
	`

	queryMarkCanceled = `
		UPDATE subscriptions
		SET status = $1
		WHERE creem_subscription_id = $2
		RETURNING user_id
	`

	// a user stays pro while any other subscription is still live
	queryHasOtherActive = `
		SELECT EXISTS(
			SELECT 1 FROM subscriptions
			WHERE user_id = $1 AND creem_subscription_id <> $2 AND status IN ('active', 'trialing', 'paid')
		)
	`

	queryLatestByUser = `
		SELECT id, user_id, creem_subscription_id, status, current_period_start, current_period_end, created_at
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
)
