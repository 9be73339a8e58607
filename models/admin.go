package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AdminRoleAdmin      = "admin"
	AdminRoleSuperAdmin = "super_admin"
)

// Admin is a back-office operator of the admin portal
type Admin struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Username     string     `gorm:"uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	FirstName    string     `json:"nome"`
	LastName     string     `json:"cognome"`
	Role         string     `gorm:"not null;default:admin" json:"ruolo"`
	IsActive     bool       `gorm:"not null;default:true" json:"attivo"`
	LastAccessAt *time.Time `json:"ultimo_accesso"`
}

// BeforeCreate hook to generate UUID
func (a *Admin) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// DisplayName joins first and last name, falling back to the username
func (a *Admin) DisplayName() string {
	name := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if name == "" {
		return a.Username
	}
	return name
}

// TableName specifies the table name for Admin model
func (Admin) TableName() string {
	return "admins"
}
