package auth

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/promptfotos/server/internal/auth"
)

// registers all authentication routes
func RegisterRoutes(router *gin.RouterGroup, userRepo UserStore, locales LocalePicker, secureCookie bool) {
	authGroup := router.Group("/auth")
	{
		authGroup.GET("/me", auth.AuthMiddleware(), GetCurrentUserHandler(userRepo))
		authGroup.POST("/logout", LogoutHandler(secureCookie))
		authGroup.GET("/:provider", BeginAuthHandler())
		authGroup.GET("/:provider/callback", CallbackHandler(userRepo, locales, secureCookie))
	}
}
