package rest

import (
	"net/http"

	"github.com/dfryer1193/alttext/internal/middleware"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with logging and panic recovery and the alt text routes.
func NewRouter(h *AltTextHandler) *gin.Engine {
	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	router.Use(gin.CustomRecovery(middleware.HandlePanics()))
	NewApi(router, h)
	return router
}

// NewApi registers the alt text routes on router.
func NewApi(router *gin.Engine, h *AltTextHandler) {
	router.GET("/healthz", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	altTextV1 := router.Group("media/v1/alt-text")
	{
		altTextV1.POST("/update", h.RunUpdate)
		altTextV1.GET("/preview", h.PreviewTitle)
	}
}
