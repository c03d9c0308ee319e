// Package handlers maps the REST surface onto the record stores.
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"todo-api/store"
)

// Config wires a router to its collaborators.
type Config struct {
	Store          store.Store
	Logger         *slog.Logger
	RequestTimeout time.Duration

	// Registry receives the HTTP metrics. A fresh registry is used when nil.
	Registry *prometheus.Registry
}

// Handler serves task and signature requests.
type Handler struct {
	store  store.Store
	logger *slog.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	h := &Handler{store: cfg.Store, logger: cfg.Logger}
	m := newMetrics(cfg.Registry)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())
	r.Use(requestID())
	r.Use(requestLogger(cfg.Logger))
	r.Use(m.middleware())
	if cfg.RequestTimeout > 0 {
		r.Use(timeout(cfg.RequestTimeout))
	}

	r.GET("/", apiInfo)
	r.GET("/healthz", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})))

	r.GET("/items", h.listItems)
	r.GET("/items/:id", h.getItem)
	r.POST("/items", h.createItem)
	r.PATCH("/items/:id", h.updateItem)
	r.DELETE("/items/:id", h.deleteItem)
	r.DELETE("/completed-items", h.deleteCompletedItems)

	r.GET("/signatures", h.listSignatures)
	r.GET("/signatures/:id", h.getSignature)
	r.POST("/signatures", h.createSignature)
	r.PUT("/signatures/:id", h.replaceSignature)
	r.PATCH("/signatures/:id", h.updateSignature)
	r.DELETE("/signatures/:id", h.deleteSignature)

	return r
}

func (h *Handler) health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		loggerFrom(c, h.logger).Error("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
