package admin

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/promptfotos/server/internal/auth"
)

func RegisterRoutes(router *gin.RouterGroup, gate QuotaResetter) {
	admin := router.Group("/admin")
	admin.Use(auth.AuthMiddleware(), auth.RequireAdmin())

	admin.POST("/users/:userId/reset-generations", ResetGenerations(gate))
}
