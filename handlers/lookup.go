package handlers

import (
	"strconv"

	"claims_crm_go/models"
	"claims_crm_go/services"

	"github.com/labstack/echo/v4"
)

// ListBanks handles GET /shared/banks[?search=&limit=]. limit defaults to
// 100; 0 returns every bank.
func (h *Handler) ListBanks(c echo.Context) error {
	limit := services.DefaultBankLimit
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return services.ValidationError("Invalid limit %q", v)
		}
		limit = n
	}

	banks, err := services.ListBanks(h.DB, c.QueryParam("search"), limit)
	if err != nil {
		return err
	}
	if banks == nil {
		banks = []models.Bank{}
	}
	return success(c, banks, "")
}

// ListStatuses handles GET /shared/states
func (h *Handler) ListStatuses(c echo.Context) error {
	statuses, err := services.ListStatuses(h.DB)
	if err != nil {
		return err
	}
	if statuses == nil {
		statuses = []models.Status{}
	}
	return success(c, statuses, "")
}
