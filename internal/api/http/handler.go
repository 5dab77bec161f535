package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ikudjoi/fluentmigrator/internal/api/http/dto"
	"github.com/ikudjoi/fluentmigrator/internal/auth"
	"github.com/ikudjoi/fluentmigrator/internal/registry"
)

// RegistryLoader provides the migration registry
type RegistryLoader interface {
	LoadMigrations() (*registry.Registry, error)
}

// Handler handles HTTP API requests
type Handler struct {
	loader   RegistryLoader
	apiToken string
}

// NewHandler creates a new HTTP handler
func NewHandler(loader RegistryLoader, apiToken string) *Handler {
	return &Handler{
		loader:   loader,
		apiToken: apiToken,
	}
}

// RegisterRoutes registers HTTP routes
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.GET("/health", h.Health)
		api.GET("/migrations", h.authenticate, h.listMigrations)
		api.GET("/migrations/:version", h.authenticate, h.getMigration)
	}
}

// authenticate middleware validates API token
func (h *Handler) authenticate(c *gin.Context) {
	token, err := auth.ExtractToken(c.GetHeader("Authorization"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: err.Error()})
		return
	}

	if err := auth.ValidateToken(h.apiToken, token); err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: err.Error()})
		return
	}

	c.Next()
}

// load returns the registry, writing an error response when it cannot be loaded
func (h *Handler) load(c *gin.Context) (*registry.Registry, bool) {
	reg, err := h.loader.LoadMigrations()
	if err != nil {
		c.JSON(loadErrorStatus(err), dto.ErrorResponse{Error: err.Error()})
		return nil, false
	}
	return reg, true
}

func loadErrorStatus(err error) int {
	switch {
	case errors.Is(err, registry.ErrMissingMigrations):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrDuplicateVersion):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// listMigrations lists migrations in the order they would be applied
func (h *Handler) listMigrations(c *gin.Context) {
	var filters dto.MigrationListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	var since int64
	if filters.Since != "" {
		v, err := strconv.ParseInt(filters.Since, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid since version: " + filters.Since})
			return
		}
		since = v
	}

	reg, ok := h.load(c)
	if !ok {
		return
	}

	descs := reg.Descriptors()
	if filters.Since != "" {
		descs = reg.Since(since)
	}

	items := make([]dto.MigrationListItem, 0, len(descs))
	for _, d := range descs {
		items = append(items, dto.NewMigrationListItem(d))
	}

	c.JSON(http.StatusOK, dto.MigrationListResponse{
		Items: items,
		Total: len(items),
	})
}

// getMigration gets a specific migration by version
func (h *Handler) getMigration(c *gin.Context) {
	version, err := strconv.ParseInt(c.Param("version"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid version: " + c.Param("version")})
		return
	}

	reg, ok := h.load(c)
	if !ok {
		return
	}

	d, found := reg.Get(version)
	if !found {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "migration not found"})
		return
	}

	c.JSON(http.StatusOK, dto.NewMigrationDetailResponse(d))
}

// Health reports whether the registry loads
func (h *Handler) Health(c *gin.Context) {
	healthStatus := gin.H{
		"status": "healthy",
		"checks": gin.H{},
	}

	if reg, err := h.loader.LoadMigrations(); err != nil {
		healthStatus["status"] = "unhealthy"
		healthStatus["checks"].(gin.H)["registry"] = err.Error()
	} else {
		healthStatus["checks"].(gin.H)["registry"] = "ok"
		healthStatus["migrations"] = reg.Len()
	}

	statusCode := http.StatusOK
	if healthStatus["status"] == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, healthStatus)
}
