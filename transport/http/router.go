package http

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/signet-labs/signet/service"
)

// SetupRouter sets up the Gin router.
func SetupRouter(authService *service.AuthService, log logrus.FieldLogger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	handlers := NewAuthHandlers(authService, log)

	auth := router.Group("/auth")
	{
		auth.POST("/login-message", handlers.LoginMessage)
		auth.POST("/login", handlers.Login)
		auth.POST("/refresh", handlers.Refresh)
		auth.POST("/logout", handlers.Logout)
	}

	api := router.Group("/api")
	api.Use(AuthMiddleware(authService))
	{
		api.GET("/me", handlers.Me)
	}

	return router
}
