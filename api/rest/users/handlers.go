package users

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"codeberg.org/promptfotos/server/internal/auth"
	"codeberg.org/promptfotos/server/internal/errors"
	"codeberg.org/promptfotos/server/internal/logger"
	"codeberg.org/promptfotos/server/internal/metrics"
	"codeberg.org/promptfotos/server/internal/quota"
	"codeberg.org/promptfotos/server/internal/storage"
	"codeberg.org/promptfotos/server/promptfotos/generations"
)

const cleanupTimeout = 30 * time.Second

// returns the signed-in user's plan and remaining free generations
// @Summary Get the current user's subscription
// @Tags users
// @Produce json
// @Success 200 {object} SubscriptionResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/user/subscription [get]
// @Security BearerAuth
func GetSubscription(deps Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		ctx := c.Request.Context()

		sub, decision, err := deps.Quota.Check(ctx, userID)
		if stderrors.Is(err, quota.ErrUserNotFound) {
			errors.NotFound(c, "user")
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to fetch subscription data", err)
			return
		}

		data := SubscriptionData{
			Subscription: *sub,
			CanGenerate:  decision.Allowed,
			Remaining:    decision.Remaining,
		}

		if decision.IsUnlimited() {
			data.Remaining = "unlimited"
		}

		if deps.Subscriptions != nil {
			billing, err := deps.Subscriptions.LatestByUser(ctx, userID)
			if err != nil {
				logger.FromContext(ctx).Warn("failed to load billing record", "error", err, "user_id", userID)
			} else {
				data.Billing = billing
			}
		}

		c.JSON(http.StatusOK, SubscriptionResponse{Success: true, Data: data})
	}
}

// lists the signed-in user's generations, newest first
func ListGenerations(deps Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		params := generationPages.FromQuery(c)

		items, total, err := deps.Generations.ListByUser(c.Request.Context(), userID, params.Limit, params.Offset)
		if err != nil {
			errors.InternalError(c, "failed to fetch generations", err)
			return
		}

		c.JSON(http.StatusOK, GenerationsResponse{
			Success:     true,
			Generations: items,
			Pagination:  params.Meta(total),
		})
	}
}

// deletes one of the signed-in user's generations. stored images are removed in the
// background; a failed cleanup never fails the request
func DeleteGeneration(deps Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		generationID, ok := errors.ValidatePathUUID(c, "generationId")
		if !ok {
			return
		}

		ctx := c.Request.Context()

		generation, err := deps.Generations.FindOwned(ctx, generationID, userID)
		if stderrors.Is(err, generations.ErrGenerationNotFound) {
			errors.NotFound(c, "generation")
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to fetch generation", err)
			return
		}

		if err := deps.Generations.DeleteOwned(ctx, generationID, userID); err != nil {
			if stderrors.Is(err, generations.ErrGenerationNotFound) {
				errors.NotFound(c, "generation")
				return
			}

			errors.InternalError(c, "failed to delete generation", err)
			return
		}

		if deps.Storage != nil {
			urls := []string{generation.GeneratedImageURL}
			if generation.OriginalImageURL != nil {
				urls = append(urls, *generation.OriginalImageURL)
			}

			go removeImages(context.WithoutCancel(ctx), deps.Storage, urls)
		}

		c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "generation deleted successfully"})
	}
}

func removeImages(ctx context.Context, store storage.ObjectStore, urls []string) {
	ctx, cancel := context.WithTimeout(ctx, cleanupTimeout)
	defer cancel()

	log := logger.FromContext(ctx)

	for _, url := range urls {
		key, ok := store.KeyFromURL(url)
		if !ok {
			continue
		}

		err := store.Delete(ctx, key)
		metrics.RecordStorage("delete", err)

		if err != nil {
			log.Warn("failed to clean up image", "error", err, "key", key)
		}
	}
}
