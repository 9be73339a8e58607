package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityAction names the operation recorded in the activity log
type ActivityAction string

const (
	ActionLogin           ActivityAction = "login"
	ActionLogout          ActivityAction = "logout"
	ActionCreateClient    ActivityAction = "create_client"
	ActionUpdateClient    ActivityAction = "update_client"
	ActionDeleteClient    ActivityAction = "delete_client"
	ActionProvisionAccess ActivityAction = "provision_access"
	ActionCreatePractice  ActivityAction = "create_practice"
	ActionUpdatePractice  ActivityAction = "update_practice"
	ActionDeletePractice  ActivityAction = "delete_practice"
	ActionUploadDocument  ActivityAction = "upload_document"
	ActionUpdateDocument  ActivityAction = "update_document"
	ActionDeleteDocument  ActivityAction = "delete_document"
	ActionDownload        ActivityAction = "download_document"
	ActionImportClients   ActivityAction = "import_clients"
	ActionImportPractices ActivityAction = "import_practices"
)

// ErrActivityLogImmutable is returned by the hooks that keep the log append-only
var ErrActivityLogImmutable = errors.New("activity log entries are immutable")

// ActivityLog is an append-only record of who did what
type ActivityLog struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	ActorID   *string        `gorm:"type:uuid;index" json:"utente_id"`
	ActorType PrincipalKind  `gorm:"type:varchar(16);index" json:"utente_tipo"`
	Action    ActivityAction `gorm:"not null;index" json:"azione"`
	Details   string         `gorm:"type:text" json:"dettagli"`
	IPAddress string         `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent string         `gorm:"type:text" json:"user_agent"`
}

// BeforeCreate hook to generate UUID
func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// BeforeUpdate prevents modification of log entries
func (a *ActivityLog) BeforeUpdate(tx *gorm.DB) error {
	return ErrActivityLogImmutable
}

// BeforeDelete prevents deletion of log entries
func (a *ActivityLog) BeforeDelete(tx *gorm.DB) error {
	return ErrActivityLogImmutable
}

// TableName specifies the table name
func (ActivityLog) TableName() string {
	return "activity_logs"
}
