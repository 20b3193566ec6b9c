package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/n3t-leo/miamicondos/config"
)

// NewRouter builds the gin engine with middleware and every route registered
func NewRouter(handler *Handler, cfg config.ServerConfig, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(logger))
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	SetupRoutes(router, handler, cfg.AdminToken)
	return router
}

// SetupRoutes registers the listing endpoints on router
func SetupRoutes(router *gin.Engine, handler *Handler, adminToken string) {
	router.GET("/health", handler.Health)
	router.GET("/search", handler.Search)
	router.GET("/condos/miami", handler.MiamiCondos)

	markets := router.Group("/markets")
	{
		markets.GET("", handler.ListMarkets)
		markets.GET("/:name", handler.SearchMarket)
	}

	admin := router.Group("/admin")
	admin.Use(AdminAuth(adminToken))
	{
		admin.POST("/refresh", handler.AdminRefresh)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
