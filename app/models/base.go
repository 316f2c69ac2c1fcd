// Package models defines the persisted EliteTable entities.
//
// Primary keys are UUID strings assigned in BeforeCreate. Association fields
// exist only so the schema carries foreign keys; they are never serialised.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base is embedded by every model.
type Base struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}

// BeforeCreate assigns an ID unless one was set (seed fixtures use
// deterministic IDs).
func (b *Base) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// Mutable adds UpdatedAt to Base.
type Mutable struct {
	Base
	UpdatedAt time.Time `json:"updatedAt"`
}
