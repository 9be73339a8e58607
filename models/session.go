package models

import (
	"time"
)

// Session binds a cookie token to exactly one principal
type Session struct {
	ID        string    `gorm:"primarykey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Token         string        `gorm:"uniqueIndex;not null;type:varchar(128)" json:"-"`
	PrincipalType PrincipalKind `gorm:"type:varchar(16);not null" json:"principal_type"`
	AdminID       *string       `gorm:"type:uuid;index" json:"admin_id,omitempty"`
	ClientID      *string       `gorm:"type:uuid;index" json:"client_id,omitempty"`
	ExpiresAt     time.Time     `gorm:"not null;index" json:"expires_at"`
	IPAddress     string        `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent     string        `gorm:"type:text" json:"user_agent"`

	// Relationships
	Admin  *Admin  `gorm:"foreignKey:AdminID;constraint:OnDelete:CASCADE" json:"-"`
	Client *Client `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Session model
func (Session) TableName() string {
	return "sessions"
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
