package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/itskundan-01/Finance-News-API/internal/server/handlers"
	"github.com/itskundan-01/Finance-News-API/internal/server/middleware"
)

// New wires handlers and middleware into an HTTP router.
func New(handler *handlers.Handler, mw *middleware.Manager, adminUser, adminPassword string) http.Handler {
	router := gin.Default()
	router.Use(mw.RequestID())

	router.GET("/health", handler.Health)

	v1 := router.Group("/api/v1")

	news := v1.Group("/news")
	news.Use(mw.Admission())
	{
		news.GET("", handler.GetNews)
		news.GET("/latest", handler.GetLatestNews)
		news.GET("/category/:category", handler.GetNewsByCategory)
		news.GET("/source/:source", handler.GetNewsBySource)
		news.GET("/search", handler.SearchNews)
	}

	auth := v1.Group("/auth")
	{
		auth.POST("/register", handler.RegisterKey)
		auth.POST("/user/register", handler.RegisterUser)
		auth.POST("/user/login", handler.LoginUser)

		user := auth.Group("/user")
		user.Use(mw.UserAuth())
		{
			user.GET("/me", handler.GetMe)
			user.GET("/api-keys", handler.GetMyKeys)
			user.POST("/api-keys/regenerate", handler.RegenerateMyKey)
			user.POST("/api-keys/revoke", handler.RevokeMyKey)
		}
	}

	admin := router.Group("/admin")
	admin.Use(gin.BasicAuth(gin.Accounts{adminUser: adminPassword}))
	{
		admin.POST("/keys", handler.CreateKey)
		admin.GET("/keys/:email", handler.GetKeysByEmail)
		admin.DELETE("/keys/:key", handler.RevokeKey)
	}

	return router
}
