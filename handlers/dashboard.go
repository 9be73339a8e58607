package handlers

import (
	"time"

	"claims_crm_go/middleware"
	"claims_crm_go/services"

	"github.com/labstack/echo/v4"
)

// AdminDashboard handles GET /admin/dashboard
func (h *Handler) AdminDashboard(c echo.Context) error {
	stats, err := services.GetDashboardStats(h.DB, time.Now())
	if err != nil {
		return err
	}
	return success(c, stats, "")
}

// ClientDashboard handles GET /client/dashboard
func (h *Handler) ClientDashboard(c echo.Context) error {
	client := middleware.CurrentClient(c)
	if client == nil {
		return services.ErrNotAuthenticated
	}

	dash, err := services.GetClientDashboard(h.DB, client.ID)
	if err != nil {
		return err
	}
	return success(c, dash, "")
}
