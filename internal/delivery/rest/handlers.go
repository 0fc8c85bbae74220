// Path: internal/delivery/rest/handlers.go
package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"pokedex/internal/domain"
	"pokedex/internal/search"
	"pokedex/internal/service"
)

// dataService defines the interface required by the handlers from the core service.
// This keeps the delivery layer decoupled from the full service implementation.
type dataService interface {
	Catalog() []domain.CatalogEntity
	Loaded() bool
	Detail(ctx context.Context, id int) (domain.Detail, error)
	Lookup(ctx context.Context, query string) (domain.CatalogEntity, error)
	ToggleFavorite(ctx context.Context, id int) (bool, error)
	Favorites() []domain.CatalogEntity
	NewDetailSession() *service.DetailSession
}

// themeStore is the display preference the handlers read and write.
type themeStore interface {
	DarkMode() bool
	SetDarkMode(ctx context.Context, dark bool) error
}

// Handlers holds dependencies for the JSON API.
type Handlers struct {
	service  dataService
	theme    themeStore
	pageSize int
}

// NewHandlers creates a new handler struct.
func NewHandlers(s dataService, theme themeStore, pageSize int) *Handlers {
	if pageSize <= 0 {
		pageSize = 12
	}
	return &Handlers{service: s, theme: theme, pageSize: pageSize}
}

// RegisterRoutes mounts the API under rg.
func (h *Handlers) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/pokemon", h.List)
	rg.GET("/pokemon/:id", h.Detail)
	rg.GET("/search/:query", h.Search)
	rg.GET("/favorites", h.Favorites)
	rg.POST("/favorites/:id", h.ToggleFavorite)
	rg.GET("/preferences/theme", h.Theme)
	rg.PUT("/preferences/theme", h.SetTheme)
}

// Health reports liveness and whether a catalog listing is loaded.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "catalogLoaded": h.service.Loaded()})
}

// List filters and paginates the cached catalog.
func (h *Handlers) List(c *gin.Context) {
	page := parseInt(c.Query("page"), 1)
	c.JSON(http.StatusOK, search.BuildPage(h.service.Catalog(), search.Normalize(c.Query("q")), page, h.pageSize))
}

// Detail returns one entity with its prev/next navigation.
func (h *Handlers) Detail(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	detail, err := h.service.Detail(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Search resolves a single entity by name or id, ignoring case and accents.
func (h *Handlers) Search(c *gin.Context) {
	entity, err := h.service.Lookup(c.Request.Context(), search.Normalize(c.Param("query")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity)
}

// Favorites lists favorites in insertion order.
func (h *Handlers) Favorites(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Favorites())
}

// ToggleFavorite flips the favorite state of an id.
func (h *Handlers) ToggleFavorite(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	added, err := h.service.ToggleFavorite(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "favorite": added})
}

// Theme returns the display preference.
func (h *Handlers) Theme(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"darkMode": h.theme.DarkMode()})
}

type themeRequest struct {
	DarkMode *bool `json:"darkMode" binding:"required"`
}

// SetTheme stores the display preference.
func (h *Handlers) SetTheme(c *gin.Context) {
	var req themeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "darkMode (bool) is required"})
		return
	}
	if err := h.theme.SetDarkMode(c.Request.Context(), *req.DarkMode); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save preference"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"darkMode": *req.DarkMode})
}

// statusFor maps service errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsTransport(err):
		return http.StatusBadGateway
	case service.IsCancelled(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := "internal error"
	switch status {
	case http.StatusNotFound:
		msg = "not found"
	case http.StatusBadGateway:
		msg = "upstream catalog unavailable"
	case http.StatusServiceUnavailable:
		msg = "request cancelled"
	}
	c.JSON(status, gin.H{"error": msg})
}

func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return 0, false
	}
	return id, true
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
