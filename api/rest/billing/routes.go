package billing

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/promptfotos/server/internal/auth"
)

func RegisterRoutes(router *gin.RouterGroup, checkout CheckoutCreator, canceler SubscriptionCanceler, processor WebhookProcessor) {
	router.POST("/subscribe", auth.AuthMiddleware(), Subscribe(checkout))
	router.POST("/subscription/cancel", auth.AuthMiddleware(), Cancel(canceler))
	router.POST("/webhooks/creem", Webhook(processor))
}
