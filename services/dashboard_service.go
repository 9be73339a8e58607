package services

import (
	"time"

	"claims_crm_go/models"

	"gorm.io/gorm"
)

const (
	// RecentPracticesLimit is the number of practices on the admin dashboard
	RecentPracticesLimit = 10
	// MonthlyStatsMonths is the length of the trailing monthly series
	MonthlyStatsMonths = 12
)

// StatusCount is the number of practices in one status
type StatusCount struct {
	ID    string `json:"id"`
	Name  string `json:"nome"`
	Color string `json:"colore"`
	Count int64  `json:"count"`
}

// MonthCount is the number of practices opened in one month (YYYY-MM)
type MonthCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

// DashboardStats is the admin overview
type DashboardStats struct {
	TotalPractices  int64             `json:"total_practices"`
	TotalClients    int64             `json:"total_clients"`
	ByStatus        []StatusCount     `json:"by_status"`
	RecentPractices []models.Practice `json:"recent_practices"`
	MonthlyStats    []MonthCount      `json:"monthly_stats"`
}

// GetDashboardStats aggregates the admin dashboard. Every status is listed,
// including empty ones, so the by-status counts add up to TotalPractices.
func GetDashboardStats(db *gorm.DB, now time.Time) (*DashboardStats, error) {
	stats := &DashboardStats{}

	if err := db.Model(&models.Practice{}).Count(&stats.TotalPractices).Error; err != nil {
		return nil, PersistenceError("count practices", err)
	}
	if err := db.Model(&models.Client{}).Count(&stats.TotalClients).Error; err != nil {
		return nil, PersistenceError("count clients", err)
	}

	err := db.Model(&models.Status{}).
		Select("statuses.id, statuses.name, statuses.color, COUNT(practices.id) AS count").
		Joins("LEFT JOIN practices ON practices.status_id = statuses.id").
		Group("statuses.id, statuses.name, statuses.color, statuses.position").
		Order("count DESC, statuses.position ASC").
		Scan(&stats.ByStatus).Error
	if err != nil {
		return nil, PersistenceError("count practices by status", err)
	}
	if stats.ByStatus == nil {
		stats.ByStatus = []StatusCount{}
	}

	err = db.Preload("Client").Preload("Status").Preload("Bank").
		Order("updated_at DESC").
		Limit(RecentPracticesLimit).
		Find(&stats.RecentPractices).Error
	if err != nil {
		return nil, PersistenceError("recent practices", err)
	}
	for i := range stats.RecentPractices {
		stats.RecentPractices[i].Flatten()
	}

	monthly, err := monthlyPracticeCounts(db, now)
	if err != nil {
		return nil, err
	}
	stats.MonthlyStats = monthly

	return stats, nil
}

// monthlyPracticeCounts counts practices created in each of the trailing
// months ending with the month of now. Months without practices are zero.
// Bucketing happens in Go since SQLite stores timestamps as text.
func monthlyPracticeCounts(db *gorm.DB, now time.Time) ([]MonthCount, error) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	start := first.AddDate(0, -(MonthlyStatsMonths - 1), 0)

	var created []time.Time
	err := db.Model(&models.Practice{}).
		Where("created_at >= ?", start).
		Pluck("created_at", &created).Error
	if err != nil {
		return nil, PersistenceError("monthly practice counts", err)
	}

	series := make([]MonthCount, MonthlyStatsMonths)
	index := make(map[string]int, MonthlyStatsMonths)
	for i := range series {
		key := start.AddDate(0, i, 0).Format("2006-01")
		series[i].Month = key
		index[key] = i
	}
	for _, t := range created {
		if i, ok := index[t.In(now.Location()).Format("2006-01")]; ok {
			series[i].Count++
		}
	}
	return series, nil
}
