package handlers

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"devchannels/internal/models"
)

type rateRequest struct {
	IsUpvote *bool `json:"is_upvote" binding:"required"`
}

// applyRating records a vote as a single atomic upsert: the composite
// unique index on (user, target) plus ON CONFLICT DO UPDATE guarantees
// one row per pair even under concurrent votes, with last writer wins
// on direction. Exactly one of messageID/replyID must be set.
func applyRating(db *gorm.DB, userID uint, messageID, replyID *uint, isUpvote bool) (models.VoteCounts, error) {
	rating := models.Rating{
		UserID:    userID,
		MessageID: messageID,
		ReplyID:   replyID,
		IsUpvote:  isUpvote,
	}

	conflictCols := []clause.Column{{Name: "user_id"}, {Name: "message_id"}}
	if replyID != nil {
		conflictCols = []clause.Column{{Name: "user_id"}, {Name: "reply_id"}}
	}

	err := db.Clauses(clause.OnConflict{
		Columns:   conflictCols,
		DoUpdates: clause.Assignments(map[string]interface{}{"is_upvote": isUpvote}),
	}).Create(&rating).Error
	if err != nil {
		return models.VoteCounts{}, err
	}

	return countVotes(db, messageID, replyID)
}

// countVotes recomputes the live tally for a message or reply.
func countVotes(db *gorm.DB, messageID, replyID *uint) (models.VoteCounts, error) {
	query := db.Model(&models.Rating{})
	if messageID != nil {
		query = query.Where("message_id = ?", *messageID)
	} else {
		query = query.Where("reply_id = ?", *replyID)
	}

	var counts models.VoteCounts
	if err := query.Where("is_upvote = ?", true).Count(&counts.Upvotes).Error; err != nil {
		return counts, err
	}

	query = db.Model(&models.Rating{})
	if messageID != nil {
		query = query.Where("message_id = ?", *messageID)
	} else {
		query = query.Where("reply_id = ?", *replyID)
	}
	if err := query.Where("is_upvote = ?", false).Count(&counts.Downvotes).Error; err != nil {
		return counts, err
	}

	return counts, nil
}
