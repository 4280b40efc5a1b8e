package users

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/promptfotos/server/internal/auth"
)

// registers routes for the signed-in user's account
func RegisterRoutes(router *gin.RouterGroup, deps Dependencies) {
	user := router.Group("/user")
	user.Use(auth.AuthMiddleware())

	user.GET("/subscription", GetSubscription(deps))
	user.GET("/generations", ListGenerations(deps))
	user.DELETE("/generations/:generationId", DeleteGeneration(deps))
}
