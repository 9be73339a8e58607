package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document is the metadata of a file attached to a practice. The bytes live
// in the configured storage provider under StorageKey.
type Document struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PracticeID string    `gorm:"type:uuid;not null;index" json:"pratica_id"`
	Practice   *Practice `gorm:"foreignKey:PracticeID" json:"-"`

	FileName      string  `gorm:"not null" json:"nome_file"`
	OriginalName  string  `gorm:"not null" json:"nome_originale"`
	MimeType      string  `json:"tipo_file"`
	Size          int64   `gorm:"not null" json:"dimensione"`
	StorageKey    string  `gorm:"not null" json:"-"` // Not exposed in JSON
	ClientVisible string  `gorm:"not null;default:Yes;index" json:"visibile_cliente"`
	Description   *string `gorm:"type:text" json:"descrizione"`

	// Joined from the owning practice
	ClientID       string `gorm:"-" json:"cliente_id,omitempty"`
	ClientName     string `gorm:"-" json:"cliente_nome,omitempty"`
	ContractNumber string `gorm:"-" json:"numero_contratto,omitempty"`
}

// BeforeCreate hook to generate UUID
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

// IsClientVisible reports whether clients may see and download the document
func (d *Document) IsClientVisible() bool {
	return d.ClientVisible == FlagYes
}

// Flatten copies owner fields from a loaded practice
func (d *Document) Flatten() {
	if d.Practice == nil {
		return
	}
	d.ClientID = d.Practice.ClientID
	d.ContractNumber = d.Practice.ContractNumber
	if d.Practice.Client != nil {
		d.ClientName = d.Practice.Client.FullName
	}
}

// TableName specifies the table name for Document model
func (Document) TableName() string {
	return "documents"
}
