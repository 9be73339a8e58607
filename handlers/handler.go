package handlers

import (
	"strconv"

	"claims_crm_go/config"
	"claims_crm_go/middleware"
	"claims_crm_go/models"
	"claims_crm_go/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// DefaultListLimit is the page size used when a list request has no limit
const DefaultListLimit = 50

// Handler carries the dependencies shared by every endpoint
type Handler struct {
	DB      *gorm.DB
	Storage services.StorageProvider
	Config  *config.Config
}

// New creates a Handler
func New(db *gorm.DB, store services.StorageProvider, cfg *config.Config) *Handler {
	return &Handler{DB: db, Storage: store, Config: cfg}
}

// logActivity records an action of the current principal
func (h *Handler) logActivity(c echo.Context, action models.ActivityAction, details string) {
	services.LogActivity(h.DB, middleware.GetActivityContext(c), action, details)
}

// pagination reads page and limit query parameters
func pagination(c echo.Context) services.Pagination {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = DefaultListLimit
	}
	return services.NewPagination(page, limit)
}

// requireID returns the id query parameter or a validation error
func requireID(c echo.Context, what string) (string, error) {
	id := c.QueryParam("id")
	if id == "" {
		return "", services.ValidationError("%s ID is required", what)
	}
	return id, nil
}
