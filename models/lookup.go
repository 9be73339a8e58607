package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Business-significant status names. The client dashboard aggregates on
// these by exact string equality, so renaming the rows changes the counts.
const (
	StatusNameReimbursed = "Already Reimbursed"
	StatusNameCancelled  = "Cancelled"
)

// Status is a practice workflow state. The default status is the one with
// the lowest Position.
type Status struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"-"`

	Name     string `gorm:"uniqueIndex;not null" json:"nome"`
	Color    string `gorm:"not null;default:#6c757d" json:"colore"`
	Position int    `gorm:"not null;default:0;index" json:"ordine"`
}

// BeforeCreate hook to generate UUID
func (s *Status) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Status model
func (Status) TableName() string {
	return "statuses"
}

// Bank is a counterparty a practice may be filed against
type Bank struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"-"`

	Name string `gorm:"uniqueIndex;not null" json:"nome"`
}

// BeforeCreate hook to generate UUID
func (b *Bank) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Bank model
func (Bank) TableName() string {
	return "banks"
}
