package models

import (
	"time"
)

type Channel struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string    `json:"description"`
	CreatedBy   uint      `gorm:"not null;index" json:"created_by"`
	Creator     User      `gorm:"foreignKey:CreatedBy;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt   time.Time `json:"created_at"`

	// Not stored; filled by list/detail queries
	CreatorName  string `gorm:"-" json:"creator_name"`
	MessageCount int    `gorm:"-" json:"message_count"`
}
