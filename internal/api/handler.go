package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spacefarm/agrorisk/internal/monitor"
	"github.com/spacefarm/agrorisk/internal/repository"
)

type Handler struct {
	store        monitor.Store
	orchestrator *monitor.Orchestrator
}

func NewHandler(store monitor.Store, orchestrator *monitor.Orchestrator) *Handler {
	return &Handler{
		store:        store,
		orchestrator: orchestrator,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/api/fields", h.listFields)
	r.POST("/api/fields", h.createField)
	r.DELETE("/api/fields/:id", h.deleteField)
	r.GET("/api/alerts", h.listAlerts)
	r.POST("/api/recompute", h.recompute)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) listFields(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.ListFields())
}

type createFieldRequest struct {
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (h *Handler) createField(c *gin.Context) {
	var req createFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude/longitude must be numbers"})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing field: name"})
		return
	}
	if req.Latitude == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing field: latitude"})
		return
	}
	if req.Longitude == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing field: longitude"})
		return
	}

	field, err := h.store.CreateField(req.Name, *req.Latitude, *req.Longitude)
	if err != nil {
		var verr *repository.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Reason})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create field"})
		return
	}

	// Give the new field a snapshot right away instead of waiting out the
	// scheduler interval.
	h.orchestrator.RunCycle(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{"id": field.ID})
}

func (h *Handler) deleteField(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid field id"})
		return
	}

	if err := h.store.DeleteField(id); err != nil {
		if errors.Is(err, repository.ErrFieldNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "field not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete field"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) listAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.ListAlerts())
}

func (h *Handler) recompute(c *gin.Context) {
	h.orchestrator.RunCycle(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "recomputed"})
}
