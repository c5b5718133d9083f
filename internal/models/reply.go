package models

import (
	"time"
)

// Reply belongs to exactly one message even when nested: a child reply
// always carries its parent's MessageID, so a reply tree never spans
// messages. The self-referential cascade removes whole subtrees when a
// parent reply is deleted.
type Reply struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	MessageID     uint      `gorm:"not null;index" json:"message_id"`
	Message       Message   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ParentReplyID *uint     `gorm:"index" json:"parent_reply_id"` // Nullable for top-level replies
	Parent        *Reply    `gorm:"foreignKey:ParentReplyID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	User          User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	ImageURL      string    `json:"image_url"` // Set at creation only
	CreatedAt     time.Time `json:"created_at"`

	// Not stored; filled by list/detail queries
	DisplayName string `gorm:"-" json:"display_name"`
	AvatarURL   string `gorm:"-" json:"avatar_url"`
	Upvotes     int    `gorm:"-" json:"upvotes"`
	Downvotes   int    `gorm:"-" json:"downvotes"`
	ChildCount  int    `gorm:"-" json:"child_count"`
}
