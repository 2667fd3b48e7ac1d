package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/repofolio/repofolio/internal/auth"
)

// @title Repofolio API
// @version 1.0
// @description Discovers the GitHub repositories a user owns or contributed to and prepares them for a portfolio. Every data route is served under the /api/v1 prefix, for example GET /api/v1/repos/all. OAuth (/auth), /health and /swagger are not prefixed.
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a GitHub access token. Browsers send the access_token cookie instead.

// SetupRouter configures the API routes
func SetupRouter(h *Handler, authHandler *auth.Handler, allowedOrigins []string, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", RequestIDHeader},
		ExposeHeaders:    []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// API documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/health", h.Health)

	// OAuth web flow
	oauth := r.Group("/auth")
	{
		oauth.GET("/github", authHandler.Login)
		oauth.GET("/github/callback", authHandler.Callback)
		oauth.GET("/logout", authHandler.Logout)
	}

	// API v1 group, every route acts with the caller's GitHub token
	v1 := r.Group("/api/v1", auth.RequireToken())
	{
		repos := v1.Group("/repos")
		{
			repos.GET("/affiliated", h.GetAffiliatedRepositories)
			repos.GET("/contributed", h.GetContributedRepositories)
			repos.GET("/all", h.GetAllRepositories)
		}

		user := v1.Group("/user")
		{
			user.GET("", h.GetViewer)
			user.GET("/profile", h.GetProfile)
			user.POST("/profile", h.SaveProfile)
			user.DELETE("/profile", h.DeleteProfile)
		}

		v1.POST("/ai/summarize", h.Summarize)
	}

	return r
}
