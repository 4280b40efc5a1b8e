// package imagegen talks to the image generation gateway (OpenRouter chat completions
// with an image-capable model).
package imagegen

import (
	"context"
	"errors"
)

type Category string

const (
	CategoryPortrait     Category = "portrait"
	CategoryCouple       Category = "couple"
	CategoryProfessional Category = "professional"
)

type Style string

const (
	StyleDramatic  Style = "dramatic"
	StyleNatural   Style = "natural"
	StyleCinematic Style = "cinematic"
	StyleLinkedIn  Style = "linkedin"
	StyleExecutive Style = "executive"
)

const (
	DefaultCategory = CategoryPortrait
	DefaultStyle    = StyleNatural
)

// USD billed per generation
const (
	CostStandard = 0.02
	CostHighRes  = 0.05
)

var (
	ErrNoImage        = errors.New("gateway returned no image")
	ErrNotConfigured  = errors.New("image gateway api key not configured")
	ErrGatewayBusy    = errors.New("image gateway temporarily unavailable")
	ErrEmptyPrompt    = errors.New("prompt is required")
	ErrInvalidRequest = errors.New("invalid generation request")
)

type Request struct {
	Prompt     string
	ImageURL   string
	Category   Category
	Style      Style
	Resolution string
}

type Usage struct {
	Tokens int     `json:"tokens"`
	Cost   float64 `json:"cost"`
}

type Result struct {
	// an https URL or a data: URL with the encoded image
	ImageURL string

	// the prompt actually sent, after template expansion
	Prompt string

	Usage Usage
}

// Generator is what the generate endpoint depends on.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}

type Config struct {
	APIKey  string
	BaseURL string
	Model   string

	// sent as HTTP-Referer / X-Title for OpenRouter attribution
	AppURL  string
	AppName string

	// outbound pacing across all users
	RequestsPerSecond float64
	Burst             int
}
