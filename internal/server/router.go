package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the API routes. The caller owns the http.Server lifecycle.
func NewRouter(h *ContractHandler, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), RequestLogger(log), Recovery(log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/contracts")
	{
		api.POST("", h.Upload)
		api.GET("", h.List)
		api.GET("/:id", h.Get)
		api.GET("/:id/clauses", h.Clauses)
		api.POST("/:id/search", h.Search)
		api.DELETE("/:id", h.Delete)
	}

	return r
}
