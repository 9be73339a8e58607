package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client is an end customer of the business. Portal access is opt-in:
// PasswordHash stays nil until an admin provisions credentials.
type Client struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ClientNumber int     `gorm:"uniqueIndex;not null" json:"progressivo_cliente"`
	FullName     string  `gorm:"not null;index" json:"nome_completo"`
	TaxCode      *string `gorm:"uniqueIndex;type:varchar(32)" json:"codice_fiscale"`
	Email        *string `json:"email"`
	Phone        *string `json:"telefono"`
	Address      *string `gorm:"type:text" json:"indirizzo"`
	PasswordHash *string `json:"-"`

	Practices []Practice `gorm:"foreignKey:ClientID" json:"pratiche,omitempty"`
}

// BeforeCreate hook to generate UUID
func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// HasPortalAccess reports whether credentials have been provisioned
func (c *Client) HasPortalAccess() bool {
	return c.PasswordHash != nil && *c.PasswordHash != ""
}

// TableName specifies the table name for Client model
func (Client) TableName() string {
	return "clients"
}
