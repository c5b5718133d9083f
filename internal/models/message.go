package models

import (
	"time"
)

type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChannelID uint      `gorm:"not null;index" json:"channel_id"`
	Channel   Channel   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	ImageURL  string    `json:"image_url"` // Set at creation only
	CreatedAt time.Time `json:"created_at"`

	// Not stored; filled by list/detail queries
	DisplayName string `gorm:"-" json:"display_name"`
	AvatarURL   string `gorm:"-" json:"avatar_url"`
	Upvotes     int    `gorm:"-" json:"upvotes"`
	Downvotes   int    `gorm:"-" json:"downvotes"`
	ReplyCount  int    `gorm:"-" json:"reply_count"`
}
