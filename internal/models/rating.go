package models

import (
	"time"
)

// Rating is a single signed vote by a user on either a message or a
// reply; exactly one of MessageID/ReplyID is set. The composite unique
// indexes hold one row per (user, target) pair: Postgres and SQLite both
// treat NULLs as distinct, so message votes and reply votes never
// collide with each other. Vote writes go through an ON CONFLICT upsert
// against these indexes, which keeps a re-vote from racing into a
// duplicate row.
type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_rating_user_message;uniqueIndex:idx_rating_user_reply" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	MessageID *uint     `gorm:"uniqueIndex:idx_rating_user_message" json:"message_id"`
	Message   *Message  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ReplyID   *uint     `gorm:"uniqueIndex:idx_rating_user_reply" json:"reply_id"`
	Reply     *Reply    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	IsUpvote  bool      `gorm:"not null" json:"is_upvote"`
	CreatedAt time.Time `json:"created_at"`
}

// VoteCounts is the recomputed tally returned after a rating write.
type VoteCounts struct {
	Upvotes   int64 `json:"upvotes"`
	Downvotes int64 `json:"downvotes"`
}
