package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/divhit/cobs-bread-research/internal/api/v1/research"
	"github.com/divhit/cobs-bread-research/internal/middleware"
	"github.com/divhit/cobs-bread-research/internal/services"
	"github.com/divhit/cobs-bread-research/internal/store"
)

// NewRouter builds the gin engine with all routes registered.
func NewRouter(s store.Store, o *services.Orchestrator, apiKeySet bool) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	v1 := router.Group("/api/v1")
	{
		research.RegisterRoutes(v1, research.NewHandler(s, o, apiKeySet))
	}

	return router
}
