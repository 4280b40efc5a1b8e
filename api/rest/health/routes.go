package health

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.Engine, version string, checks ...Check) {
	router.GET("/health", Handler(version))
	router.GET("/api/health", ReadinessHandler(version, checks...))
}
