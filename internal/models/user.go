package models

import (
	"time"
)

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"uniqueIndex;size:50;not null" json:"username"` // Immutable handle
	Password    string    `gorm:"not null" json:"-"`                            // bcrypt hash
	DisplayName string    `gorm:"size:100;not null" json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	Role        string    `gorm:"size:20;default:'member';not null" json:"role"` // member, admin
	CreatedAt   time.Time `json:"created_at"`
	// No DeletedAt for hard delete
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserListing is a user row annotated with authored-content counts,
// returned by the admin user listing.
type UserListing struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	AvatarURL    string    `json:"avatar_url"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	MessageCount int       `json:"message_count"`
	ReplyCount   int       `json:"reply_count"`
}
