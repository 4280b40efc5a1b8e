package admin

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/promptfotos/server/internal/errors"
	"codeberg.org/promptfotos/server/internal/logger"
	"codeberg.org/promptfotos/server/internal/quota"
)

// zeroes a user's free generation counter
func ResetGenerations(gate QuotaResetter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := errors.ValidatePathUUID(c, "userId")
		if !ok {
			return
		}

		err := gate.Reset(c.Request.Context(), userID)
		if stderrors.Is(err, quota.ErrUserNotFound) {
			errors.NotFound(c, "user")
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to reset generations", err)
			return
		}

		logger.FromContext(c.Request.Context()).Info("generation counter reset",
			"user_id", userID,
			"admin_id", c.GetString("user_id"),
		)

		c.JSON(http.StatusOK, ResetResponse{Success: true, UserID: userID})
	}
}
