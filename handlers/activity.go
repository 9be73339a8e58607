package handlers

import (
	"time"

	"claims_crm_go/models"
	"claims_crm_go/services"

	"github.com/labstack/echo/v4"
)

type activityListData struct {
	Entries    []models.ActivityLog `json:"entries"`
	Pagination services.PageInfo    `json:"pagination"`
}

// ListActivity handles GET /admin/activity. Filters: actor_id, actor_type,
// action, search, date_from and date_to (YYYY-MM-DD, inclusive).
func (h *Handler) ListActivity(c echo.Context) error {
	filters := services.ActivityFilters{
		ActorID:   c.QueryParam("actor_id"),
		ActorType: c.QueryParam("actor_type"),
		Action:    c.QueryParam("action"),
		Search:    c.QueryParam("search"),
	}
	if v := c.QueryParam("date_from"); v != "" {
		from, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return services.ValidationError("Invalid date_from %q", v)
		}
		filters.DateFrom = from
	}
	if v := c.QueryParam("date_to"); v != "" {
		to, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return services.ValidationError("Invalid date_to %q", v)
		}
		filters.DateTo = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	page := pagination(c)
	entries, total, err := services.ListActivity(h.DB, filters, page)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []models.ActivityLog{}
	}
	return success(c, activityListData{Entries: entries, Pagination: page.Info(total)}, "")
}
