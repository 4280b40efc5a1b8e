package generate

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"codeberg.org/promptfotos/server/internal/auth"
	"codeberg.org/promptfotos/server/internal/errors"
	"codeberg.org/promptfotos/server/internal/imagegen"
	"codeberg.org/promptfotos/server/internal/logger"
	"codeberg.org/promptfotos/server/internal/quota"
	"codeberg.org/promptfotos/server/internal/storage"
	"codeberg.org/promptfotos/server/promptfotos/generations"
)

// creates a handler for image generation
// @Summary Generate an image from a prompt
// @Description Anonymous and free users get 512x512 images; pro users may ask for 1024x1024
// @Tags generate
// @Accept json
// @Produce json
// @Param request body Request true "Generation request"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/generate [post]
func Handler(deps Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Request

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, "prompt is required", err)
			return
		}

		if strings.TrimSpace(req.Prompt) == "" {
			errors.ValidationError(c, "prompt is required", nil)
			return
		}

		ctx := c.Request.Context()
		log := logger.FromContext(ctx)

		// the signed-in identity is authoritative; a body userId must match it
		userID, authenticated := auth.GetUserID(c)
		if req.UserID != "" && req.UserID != userID {
			errors.Unauthorized(c, "userId does not match the signed-in user")
			return
		}

		decision := quota.Decision{Tier: quota.TierFree}

		if authenticated {
			var err error

			decision, err = deps.Gate.Consume(ctx, userID)
			if err != nil {
				switch {
				case stderrors.Is(err, quota.ErrQuotaExceeded):
					errors.QuotaExceeded(c, 0)
				case stderrors.Is(err, quota.ErrUserNotFound):
					errors.Unauthorized(c, "account not found")
				default:
					errors.InternalError(c, "failed to check generation quota", err)
				}

				return
			}
		}

		resolution := quota.ResolveResolution(authenticated, req.Resolution, decision.Tier)

		category := imagegen.Category(req.Category)
		if category == "" {
			category = imagegen.DefaultCategory
		}

		style := imagegen.Style(req.Style)
		if style == "" {
			style = imagegen.DefaultStyle
		}

		result, err := deps.Generator.Generate(ctx, imagegen.Request{
			Prompt:     req.Prompt,
			ImageURL:   req.ImageURL,
			Category:   category,
			Style:      style,
			Resolution: resolution.String(),
		})

		if err != nil {
			if authenticated {
				if refundErr := deps.Gate.Refund(ctx, userID, decision); refundErr != nil {
					log.Error("failed to refund generation", "error", refundErr, "user_id", userID)
				}
			}

			if stderrors.Is(err, imagegen.ErrGatewayBusy) {
				errors.UpstreamFailure(c, "image generation is busy, please try again shortly", err)
				return
			}

			errors.UpstreamFailure(c, "failed to generate image", err)
			return
		}

		response := Response{
			Success:    true,
			ImageURL:   result.ImageURL,
			Prompt:     result.Prompt,
			Usage:      result.Usage,
			Resolution: resolution.String(),
		}

		remaining := 0

		if authenticated {
			response.ImageURL, response.GenerationID = persist(c, deps, userID, req, result, category, style, resolution)

			// free generations were counted when reserved
			if !decision.Reserved {
				deps.Gate.IncrementUsage(ctx, userID)
			}

			remaining = decision.Remaining
		}

		if remaining == quota.Unlimited {
			response.Remaining = "unlimited"
		} else {
			response.Remaining = remaining
		}

		response.Watermark = resolution == quota.Resolution512 && remaining != quota.Unlimited

		c.JSON(http.StatusOK, response)
	}
}

// copies images into object storage and writes the audit record. failures here are
// logged and never fail the request: the user already has their image
func persist(
	c *gin.Context,
	deps Dependencies,
	userID string,
	req Request,
	result *imagegen.Result,
	category imagegen.Category,
	style imagegen.Style,
	resolution quota.Resolution,
) (string, *string) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	imageURL := result.ImageURL
	originalURL := req.ImageURL

	if deps.Storage != nil {
		uploaded, err := deps.Storage.UploadFromURL(ctx, result.ImageURL, userID, storage.ImageGenerated)
		if err != nil {
			log.Warn("failed to store generated image, keeping gateway url", "error", err, "user_id", userID)
		} else {
			imageURL = uploaded.URL
		}

		if req.ImageURL != "" {
			original, err := deps.Storage.UploadFromURL(ctx, req.ImageURL, userID, storage.ImageOriginal)
			if err != nil {
				log.Warn("failed to store original image", "error", err, "user_id", userID)
			} else {
				originalURL = original.URL
			}
		}
	}

	promptText := result.Prompt
	if promptText == "" {
		promptText = req.Prompt
	}

	id, err := deps.Generations.Create(ctx, generations.CreateParams{
		UserID:            userID,
		OriginalImageURL:  originalURL,
		GeneratedImageURL: imageURL,
		PromptText:        promptText,
		Category:          string(category),
		Style:             string(style),
		Resolution:        resolution.String(),
	})
	if err != nil {
		log.Error("failed to save generation record", "error", err, "user_id", userID)
		return imageURL, nil
	}

	return imageURL, &id
}
