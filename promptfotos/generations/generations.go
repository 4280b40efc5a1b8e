package generations

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrGenerationNotFound = errors.New("generation not found")
)

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create stores a generation record and returns its id.
func (r *Repository) Create(ctx context.Context, params CreateParams) (string, error) {
	var id string

	err := r.db.QueryRow(
		ctx,
		queryCreate,
		params.UserID,
		params.OriginalImageURL,
		params.GeneratedImageURL,
		params.PromptText,
		params.Category,
		params.Style,
		params.Resolution,
		params.IsPublic,
	).Scan(&id)

	if err != nil {
		return "", err
	}

	return id, nil
}

// lists a user's generations, newest first
func (r *Repository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Generation, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, queryCountByUser, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, queryListByUser, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()
	generations := []Generation{}

	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, 0, err
		}

		generations = append(generations, *g)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return generations, total, nil
}

// finds a generation only if it belongs to userID
func (r *Repository) FindOwned(ctx context.Context, generationID, userID string) (*Generation, error) {
	g, err := scanGeneration(r.db.QueryRow(ctx, queryFindOwned, generationID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrGenerationNotFound
	}

	return g, err
}

func (r *Repository) DeleteOwned(ctx context.Context, generationID, userID string) error {
	tag, err := r.db.Exec(ctx, queryDeleteOwned, generationID, userID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrGenerationNotFound
	}

	return nil
}

// reports whether one of the user's generations references the storage key
func (r *Repository) OwnsImage(ctx context.Context, userID, key string) (bool, error) {
	var owns bool
	if err := r.db.QueryRow(ctx, queryOwnsImage, userID, key).Scan(&owns); err != nil {
		return false, err
	}

	return owns, nil
}

func scanGeneration(row pgx.Row) (*Generation, error) {
	var g Generation

	err := row.Scan(
		&g.ID,
		&g.UserID,
		&g.OriginalImageURL,
		&g.GeneratedImageURL,
		&g.PromptText,
		&g.Category,
		&g.Style,
		&g.Resolution,
		&g.IsPublic,
		&g.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return &g, nil
}
