package generations

const (
	queryCreate = `
		INSERT INTO generations (user_id, original_image_url, generated_image_url, prompt_text, category, style, resolution, is_public)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	queryCountByUser = `
		SELECT COUNT(*) FROM generations WHERE user_id = $1
	`

	queryListByUser = `
		SELECT id, user_id, original_image_url, generated_image_url, prompt_text,
			COALESCE(category, ''), COALESCE(style, ''), COALESCE(resolution, ''), is_public, created_at
		FROM generations
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	queryFindOwned = `
		SELECT id, user_id, original_image_url, generated_image_url, prompt_text,
			COALESCE(category, ''), COALESCE(style, ''), COALESCE(resolution, ''), is_public, created_at
		FROM generations
		WHERE id = $1 AND user_id = $2
	`

	queryDeleteOwned = `
		DELETE FROM generations
		WHERE id = $1 AND user_id = $2
	`

	queryOwnsImage = `
		SELECT EXISTS(
			SELECT 1 FROM generations
			WHERE user_id = $1
				AND (right(generated_image_url, char_length($2)) = $2
					OR right(COALESCE(original_image_url, ''), char_length($2)) = $2)
		)
	`
)
