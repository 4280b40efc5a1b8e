package auth

import (
	stderrors "errors"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"

	"codeberg.org/promptfotos/server/internal/auth"
	"codeberg.org/promptfotos/server/internal/errors"
	"codeberg.org/promptfotos/server/internal/logger"
	"codeberg.org/promptfotos/server/promptfotos/users"
)

var validProviders = []string{"google"}

// starts the OAuth flow with the provider named in the path
func BeginAuthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")

		if !slices.Contains(validProviders, provider) {
			errors.BadRequest(c, "invalid provider", nil)
			return
		}

		// set provider in query for gothic
		q := c.Request.URL.Query()
		q.Set("provider", provider)
		c.Request.URL.RawQuery = q.Encode()

		gothic.BeginAuthHandler(c.Writer, c.Request)
	}
}

// completes the OAuth flow, upserts the account, sets the session cookie and lands the
// user on the home page of their preferred locale
func CallbackHandler(userRepo UserStore, locales LocalePicker, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")

		if !slices.Contains(validProviders, provider) {
			errors.BadRequest(c, "invalid provider", nil)
			return
		}

		q := c.Request.URL.Query()
		q.Set("provider", provider)
		c.Request.URL.RawQuery = q.Encode()

		gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
		if err != nil {
			errors.Unauthorized(c, "authentication failed")
			logger.FromContext(c.Request.Context()).Warn("oauth callback failed", "error", err, "provider", provider)
			return
		}

		if gothUser.Email == "" {
			errors.BadRequest(c, "provider did not return an email address", nil)
			return
		}

		user, err := userRepo.UpsertFromProvider(c.Request.Context(), users.ProviderProfile{
			Provider:   gothUser.Provider,
			ProviderID: gothUser.UserID,
			Email:      gothUser.Email,
			Name:       gothUser.Name,
			AvatarURL:  gothUser.AvatarURL,
		})
		if err != nil {
			errors.InternalError(c, "failed to create user", err)
			return
		}

		token, err := auth.GenerateJWT(user.ID, user.Email, user.IsAdmin)
		if err != nil {
			errors.InternalError(c, "failed to generate token", err)
			return
		}

		auth.SetSessionCookie(c.Writer, token, secureCookie)

		c.Redirect(http.StatusFound, "/"+locales.Preferred(c.Request).String())
	}
}

// returns the signed-in user's profile
func GetCurrentUserHandler(userRepo UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		user, err := userRepo.FindByID(c.Request.Context(), userID)
		if stderrors.Is(err, users.ErrUserNotFound) {
			errors.NotFound(c, "user")
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to load user", err)
			return
		}

		c.JSON(http.StatusOK, UserResponse{User: user})
	}
}

// clears the session cookie and the gothic session
func LogoutHandler(secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := gothic.Logout(c.Writer, c.Request); err != nil {
			logger.FromContext(c.Request.Context()).Debug("no gothic session to clear", "error", err)
		}

		auth.ClearSessionCookie(c.Writer, secureCookie)
		c.JSON(http.StatusOK, MessageResponse{Message: "logged out successfully"})
	}
}
