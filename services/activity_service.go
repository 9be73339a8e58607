package services

import (
	"log"
	"time"

	"claims_crm_go/models"

	"gorm.io/gorm"
)

// ActivityContext identifies who performed an operation and from where
type ActivityContext struct {
	ActorID   string
	ActorType models.PrincipalKind
	IPAddress string
	UserAgent string
}

// ActivityContextFor builds the context for a principal
func ActivityContextFor(p models.Principal, ip, userAgent string) ActivityContext {
	ctx := ActivityContext{IPAddress: ip, UserAgent: userAgent}
	if p != nil {
		ctx.ActorID = p.PrincipalID()
		ctx.ActorType = p.Kind()
	}
	return ctx
}

// LogActivity appends an entry to the activity log. It must be given the
// root handle, not a transaction, and it never fails the caller: write
// errors are logged and dropped.
func LogActivity(db *gorm.DB, ctx ActivityContext, action models.ActivityAction, details string) {
	entry := models.ActivityLog{
		ActorID:   ptrIfNotEmpty(ctx.ActorID),
		ActorType: ctx.ActorType,
		Action:    action,
		Details:   details,
		IPAddress: ctx.IPAddress,
		UserAgent: ctx.UserAgent,
	}

	if err := db.Create(&entry).Error; err != nil {
		log.Printf("[AUDIT] Failed to write activity log (%s by %s %s): %v", action, ctx.ActorType, ctx.ActorID, err)
	}
}

// ActivityFilters contains filter options for activity log queries
type ActivityFilters struct {
	ActorID   string
	ActorType string
	Action    string
	DateFrom  time.Time
	DateTo    time.Time
	Search    string
}

// ListActivity returns a page of the activity log, newest first
func ListActivity(db *gorm.DB, filters ActivityFilters, page Pagination) ([]models.ActivityLog, int64, error) {
	query := db.Model(&models.ActivityLog{})

	if filters.ActorID != "" {
		query = query.Where("actor_id = ?", filters.ActorID)
	}
	if filters.ActorType != "" {
		query = query.Where("actor_type = ?", filters.ActorType)
	}
	if filters.Action != "" {
		query = query.Where("action = ?", filters.Action)
	}
	if !filters.DateFrom.IsZero() {
		query = query.Where("created_at >= ?", filters.DateFrom)
	}
	if !filters.DateTo.IsZero() {
		query = query.Where("created_at <= ?", filters.DateTo)
	}
	if filters.Search != "" {
		query = query.Where("details LIKE ?", likePattern(filters.Search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, PersistenceError("count activity", err)
	}

	var entries []models.ActivityLog
	err := query.Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&entries).Error
	if err != nil {
		return nil, 0, PersistenceError("list activity", err)
	}

	return entries, total, nil
}

// ptrIfNotEmpty returns a pointer to the string if not empty, nil otherwise
func ptrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
