package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"devchannels/internal/middleware"
	"devchannels/internal/models"
	"devchannels/internal/utils"
)

type AdminHandler struct {
	db *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// ListUsers returns every user with authored-content counts.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var users []models.UserListing
	h.db.Raw(`
		SELECT u.id, u.username, u.display_name, u.avatar_url, u.role, u.created_at,
			(SELECT COUNT(*) FROM messages WHERE user_id = u.id) AS message_count,
			(SELECT COUNT(*) FROM replies WHERE user_id = u.id) AS reply_count
		FROM users u
		ORDER BY u.username`).Scan(&users)

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// DeleteUser removes a user and cascades to all their channels,
// messages, replies and ratings. An admin cannot delete themselves and
// never another admin.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	id := utils.StringToUint(c.Param("id"))

	if id == actor.ID {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Cannot delete yourself"})
		return
	}

	var target models.User
	if err := h.db.First(&target, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	if target.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"message": "Cannot delete another admin"})
		return
	}

	if err := h.db.Delete(&target).Error; err != nil {
		jsonError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

type activityItem struct {
	Type        string    `json:"type"`
	ID          uint      `json:"id"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	DisplayName string    `json:"display_name"`
	ChannelName string    `json:"channel_name"`
}

// Stats returns system totals and the ten most recent content items.
func (h *AdminHandler) Stats(c *gin.Context) {
	var userCount, channelCount, messageCount, replyCount int64
	h.db.Model(&models.User{}).Count(&userCount)
	h.db.Model(&models.Channel{}).Count(&channelCount)
	h.db.Model(&models.Message{}).Count(&messageCount)
	h.db.Model(&models.Reply{}).Count(&replyCount)

	var recent []activityItem
	h.db.Raw(`
		SELECT 'message' AS type, m.id, m.content, m.created_at AS created_at,
			u.display_name, c.name AS channel_name
		FROM messages m
		JOIN users u ON m.user_id = u.id
		JOIN channels c ON m.channel_id = c.id

		UNION ALL

		SELECT 'reply' AS type, r.id, r.content, r.created_at AS created_at,
			u.display_name, c.name AS channel_name
		FROM replies r
		JOIN users u ON r.user_id = u.id
		JOIN messages m ON r.message_id = m.id
		JOIN channels c ON m.channel_id = c.id

		ORDER BY created_at DESC
		LIMIT 10`).Scan(&recent)

	c.JSON(http.StatusOK, gin.H{
		"stats": gin.H{
			"users":    userCount,
			"channels": channelCount,
			"messages": messageCount,
			"replies":  replyCount,
		},
		"recentActivity": recent,
	})
}
