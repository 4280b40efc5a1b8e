package generations

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

// an audit record of one completed image generation
type Generation struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	OriginalImageURL  *string   `json:"originalImageUrl"`
	GeneratedImageURL string    `json:"generatedImageUrl"`
	PromptText        string    `json:"promptText"`
	Category          string    `json:"category"`
	Style             string    `json:"style"`
	Resolution        string    `json:"resolution"`
	IsPublic          bool      `json:"isPublic"`
	CreatedAt         time.Time `json:"createdAt"`
}

type CreateParams struct {
	UserID            string
	OriginalImageURL  string
	GeneratedImageURL string
	PromptText        string
	Category          string
	Style             string
	Resolution        string
	IsPublic          bool
}
