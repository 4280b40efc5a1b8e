package images

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/promptfotos/server/internal/auth"
)

func RegisterRoutes(router *gin.RouterGroup, store Presigner, owners OwnershipChecker) {
	images := router.Group("/images")

	images.POST("/upload-url", auth.AuthMiddleware(), GetUploadURL(store))
	images.GET("/*key", GetDownloadURL(store))
	images.DELETE("/*key", auth.AuthMiddleware(), DeleteImage(store, owners))
}
