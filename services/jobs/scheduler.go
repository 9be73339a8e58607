package jobs

import (
	"log"
	"time"

	"claims_crm_go/services"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// SessionCleanupSpec runs the expired-session sweep at the top of every hour
const SessionCleanupSpec = "0 * * * *"

// NewScheduler registers the background jobs without starting them. Jobs
// run in Europe/Rome time; the server's zone is used when that zone is
// unavailable.
func NewScheduler(database *gorm.DB) (*cron.Cron, error) {
	loc, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		loc = time.Local
	}
	c := cron.New(cron.WithLocation(loc))

	if _, err := c.AddFunc(SessionCleanupSpec, func() { CleanupSessions(database) }); err != nil {
		return nil, err
	}
	return c, nil
}

// StartScheduler starts the background jobs. Stop the returned scheduler on
// shutdown.
func StartScheduler(database *gorm.DB) (*cron.Cron, error) {
	c, err := NewScheduler(database)
	if err != nil {
		return nil, err
	}
	c.Start()
	log.Println("[CRON] Scheduler started")
	return c, nil
}

// CleanupSessions deletes expired sessions, logging failures
func CleanupSessions(database *gorm.DB) {
	if err := services.CleanupExpiredSessions(database); err != nil {
		log.Printf("[CRON] Error cleaning up expired sessions: %v", err)
	}
}
