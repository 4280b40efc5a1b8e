package users

const userColumns = `id, email, COALESCE(name, ''), COALESCE(avatar_url, ''), provider, provider_id,
		subscription_status, free_generations_used, free_generations_limit, is_admin, created_at, updated_at`

const (
	// accounts are unique per email; signing in again with another provider relinks it
	queryUpsertByProvider = `
		INSERT INTO users (email, name, avatar_url, provider, provider_id, free_generations_limit)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email)
		DO UPDATE SET
			name = EXCLUDED.name,
			avatar_url = EXCLUDED.avatar_url,
			provider = EXCLUDED.provider,
			provider_id = EXCLUDED.provider_id,
			updated_at = NOW()
		RETURNING ` + userColumns

	queryFindByID = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`

	queryGetQuota = `
		SELECT id, subscription_status, free_generations_used, free_generations_limit
		FROM users
		WHERE id = $1
	`

	// conditional increment: no row comes back once the allowance is spent
	queryReserveFreeGeneration = `
		UPDATE users
		SET free_generations_used = free_generations_used + 1, updated_at = NOW()
		WHERE id = $1 AND free_generations_used < free_generations_limit
		RETURNING free_generations_used
	`

	queryReleaseFreeGeneration = `
		UPDATE users
		SET free_generations_used = free_generations_used - 1, updated_at = NOW()
		WHERE id = $1 AND free_generations_used > 0
	`

	queryIncrementGenerations = `
		UPDATE users
		SET free_generations_used = free_generations_used + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING free_generations_used
	`

	queryResetGenerations = `
		UPDATE users
		SET free_generations_used = 0, updated_at = NOW()
		WHERE id = $1
	`

	queryUpdateSubscriptionStatus = `
		UPDATE users
		SET subscription_status = $1, updated_at = NOW()
		WHERE id = $2
	`
)
