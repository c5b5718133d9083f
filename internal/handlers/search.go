package handlers

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"devchannels/internal/models"
	"devchannels/internal/utils"
)

// Each arm of the content search is capped independently before the
// merge, matching the API contract.
const searchLimit = 20
const leaderboardLimit = 10

type SearchHandler struct {
	db *gorm.DB
}

func NewSearchHandler(db *gorm.DB) *SearchHandler {
	return &SearchHandler{db: db}
}

// searchItem is one row of the merged message/reply result set.
type searchItem struct {
	Type           string    `json:"type"`
	ID             uint      `json:"id"`
	Content        string    `json:"content"`
	ImageURL       string    `json:"image_url"`
	CreatedAt      time.Time `json:"created_at"`
	UserID         uint      `json:"user_id"`
	DisplayName    string    `json:"display_name"`
	AvatarURL      string    `json:"avatar_url"`
	ChannelName    string    `json:"channel_name"`
	MessageID      uint      `json:"message_id,omitempty"`
	MessageContent string    `json:"message_content,omitempty"`
	Upvotes        int       `json:"upvotes"`
	Downvotes      int       `json:"downvotes"`
}

// All performs the case-insensitive substring search over message and
// reply content, merged newest first.
func (h *SearchHandler) All(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Search query is required"})
		return
	}
	pattern := "%" + strings.ToLower(q) + "%"

	var messages []searchItem
	h.db.Model(&models.Message{}).
		Select("'message' as type, messages.id, messages.content, messages.image_url, messages.created_at, messages.user_id, "+
			"users.display_name, users.avatar_url, channels.name as channel_name").
		Joins("JOIN users ON messages.user_id = users.id").
		Joins("JOIN channels ON messages.channel_id = channels.id").
		Where("LOWER(messages.content) LIKE ?", pattern).
		Order("messages.created_at DESC").
		Limit(searchLimit).
		Scan(&messages)

	var replies []searchItem
	h.db.Model(&models.Reply{}).
		Select("'reply' as type, replies.id, replies.content, replies.image_url, replies.created_at, replies.user_id, "+
			"replies.message_id, messages.content as message_content, "+
			"users.display_name, users.avatar_url, channels.name as channel_name").
		Joins("JOIN users ON replies.user_id = users.id").
		Joins("JOIN messages ON replies.message_id = messages.id").
		Joins("JOIN channels ON messages.channel_id = channels.id").
		Where("LOWER(replies.content) LIKE ?", pattern).
		Order("replies.created_at DESC").
		Limit(searchLimit).
		Scan(&replies)

	results := append(messages, replies...)
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// Users finds users by username or display name substring.
func (h *SearchHandler) Users(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Search query is required"})
		return
	}
	pattern := "%" + strings.ToLower(q) + "%"

	var users []models.User
	h.db.Where("LOWER(username) LIKE ? OR LOWER(display_name) LIKE ?", pattern, pattern).
		Order("display_name").
		Limit(searchLimit).
		Find(&users)

	c.JSON(http.StatusOK, gin.H{"users": users})
}

type postCountRow struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	PostCount   int    `json:"post_count"`
}

// MostPosts ranks users by total authored content.
func (h *SearchHandler) MostPosts(c *gin.Context) {
	var rows []postCountRow
	h.db.Raw(`
		SELECT u.id, u.username, u.display_name, u.avatar_url,
			(SELECT COUNT(*) FROM messages WHERE user_id = u.id) +
			(SELECT COUNT(*) FROM replies WHERE user_id = u.id) AS post_count
		FROM users u
		ORDER BY post_count DESC
		LIMIT ?`, leaderboardLimit).Scan(&rows)

	c.JSON(http.StatusOK, gin.H{"users": rows})
}

type ratingRow struct {
	ID               uint    `json:"id"`
	Username         string  `json:"username"`
	DisplayName      string  `json:"display_name"`
	AvatarURL        string  `json:"avatar_url"`
	Upvotes          int     `json:"upvotes"`
	Downvotes        int     `json:"downvotes"`
	TotalVotes       int     `json:"total_votes"`
	RatingPercentage float64 `json:"rating_percentage"`
}

// HighestRated ranks users by net votes across their messages and
// replies. Users with no recorded votes are filtered before the
// percentage is computed, so the division is never over zero.
func (h *SearchHandler) HighestRated(c *gin.Context) {
	var rows []ratingRow
	h.db.Raw(`
		SELECT * FROM (
			SELECT u.id, u.username, u.display_name, u.avatar_url,
				(SELECT COUNT(*) FROM ratings r JOIN messages m ON r.message_id = m.id
					WHERE m.user_id = u.id AND r.is_upvote) +
				(SELECT COUNT(*) FROM ratings r JOIN replies rep ON r.reply_id = rep.id
					WHERE rep.user_id = u.id AND r.is_upvote) AS upvotes,
				(SELECT COUNT(*) FROM ratings r JOIN messages m ON r.message_id = m.id
					WHERE m.user_id = u.id AND NOT r.is_upvote) +
				(SELECT COUNT(*) FROM ratings r JOIN replies rep ON r.reply_id = rep.id
					WHERE rep.user_id = u.id AND NOT r.is_upvote) AS downvotes
			FROM users u
		) stats
		WHERE upvotes + downvotes > 0
		ORDER BY (upvotes - downvotes) DESC, upvotes DESC
		LIMIT ?`, leaderboardLimit).Scan(&rows)

	for i := range rows {
		rows[i].TotalVotes = rows[i].Upvotes + rows[i].Downvotes
		rows[i].RatingPercentage = float64(rows[i].Upvotes) / float64(rows[i].TotalVotes) * 100
	}

	c.JSON(http.StatusOK, gin.H{"users": rows})
}

// UserContent returns everything one user has authored, merged newest
// first.
func (h *SearchHandler) UserContent(c *gin.Context) {
	userID := utils.StringToUint(c.Param("userId"))

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	var messages []searchItem
	h.db.Model(&models.Message{}).
		Select("'message' as type, messages.id, messages.content, messages.image_url, messages.created_at, messages.user_id, "+
			"channels.name as channel_name, "+
			"(SELECT COUNT(*) FROM ratings WHERE message_id = messages.id AND is_upvote) as upvotes, "+
			"(SELECT COUNT(*) FROM ratings WHERE message_id = messages.id AND NOT is_upvote) as downvotes").
		Joins("JOIN channels ON messages.channel_id = channels.id").
		Where("messages.user_id = ?", userID).
		Order("messages.created_at DESC").
		Scan(&messages)

	var replies []searchItem
	h.db.Model(&models.Reply{}).
		Select("'reply' as type, replies.id, replies.content, replies.image_url, replies.created_at, replies.user_id, "+
			"replies.message_id, messages.content as message_content, channels.name as channel_name, "+
			"(SELECT COUNT(*) FROM ratings WHERE reply_id = replies.id AND is_upvote) as upvotes, "+
			"(SELECT COUNT(*) FROM ratings WHERE reply_id = replies.id AND NOT is_upvote) as downvotes").
		Joins("JOIN messages ON replies.message_id = messages.id").
		Joins("JOIN channels ON messages.channel_id = channels.id").
		Where("replies.user_id = ?", userID).
		Order("replies.created_at DESC").
		Scan(&replies)

	content := append(messages, replies...)
	sort.Slice(content, func(i, j int) bool {
		return content[i].CreatedAt.After(content[j].CreatedAt)
	})

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":           user.ID,
			"username":     user.Username,
			"display_name": user.DisplayName,
			"avatar_url":   user.AvatarURL,
		},
		"content": content,
	})
}
