package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"devchannels/internal/middleware"
	"devchannels/internal/models"
	"devchannels/internal/services"
	"devchannels/internal/utils"
)

type MessageHandler struct {
	db      *gorm.DB
	uploads *services.UploadService
}

func NewMessageHandler(db *gorm.DB, uploads *services.UploadService) *MessageHandler {
	return &MessageHandler{db: db, uploads: uploads}
}

// fillMessageMeta annotates messages with author info, vote tallies and
// reply counts in batched queries.
func fillMessageMeta(db *gorm.DB, messages []models.Message) {
	if len(messages) == 0 {
		return
	}

	messageIDs := make([]uint, len(messages))
	userIDs := make([]uint, len(messages))
	for i, m := range messages {
		messageIDs[i] = m.ID
		userIDs[i] = m.UserID
	}

	var authors []models.User
	db.Where("id IN ?", userIDs).Find(&authors)
	authorMap := make(map[uint]models.User)
	for _, u := range authors {
		authorMap[u.ID] = u
	}

	type voteResult struct {
		MessageID uint
		IsUpvote  bool
		Count     int
	}
	var votes []voteResult
	db.Model(&models.Rating{}).
		Select("message_id, is_upvote, COUNT(*) as count").
		Where("message_id IN ?", messageIDs).
		Group("message_id, is_upvote").
		Scan(&votes)
	upMap := make(map[uint]int)
	downMap := make(map[uint]int)
	for _, v := range votes {
		if v.IsUpvote {
			upMap[v.MessageID] = v.Count
		} else {
			downMap[v.MessageID] = v.Count
		}
	}

	type countResult struct {
		MessageID uint
		Count     int
	}
	var replyCounts []countResult
	db.Model(&models.Reply{}).
		Select("message_id, COUNT(*) as count").
		Where("message_id IN ?", messageIDs).
		Group("message_id").
		Scan(&replyCounts)
	replyMap := make(map[uint]int)
	for _, r := range replyCounts {
		replyMap[r.MessageID] = r.Count
	}

	for i := range messages {
		author := authorMap[messages[i].UserID]
		messages[i].DisplayName = author.DisplayName
		messages[i].AvatarURL = author.AvatarURL
		messages[i].Upvotes = upMap[messages[i].ID]
		messages[i].Downvotes = downMap[messages[i].ID]
		messages[i].ReplyCount = replyMap[messages[i].ID]
	}
}

// ListByChannel returns all messages in a channel, newest first.
func (h *MessageHandler) ListByChannel(c *gin.Context) {
	channelID := utils.StringToUint(c.Param("channelId"))

	var channel models.Channel
	if err := h.db.First(&channel, channelID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Channel not found"})
		return
	}

	var messages []models.Message
	if err := h.db.Where("channel_id = ?", channelID).
		Order("created_at DESC").
		Find(&messages).Error; err != nil {
		jsonError(c, err)
		return
	}
	fillMessageMeta(h.db, messages)

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *MessageHandler) Get(c *gin.Context) {
	id := utils.StringToUint(c.Param("id"))

	var message models.Message
	if err := h.db.First(&message, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Message not found"})
		return
	}
	msgs := []models.Message{message}
	fillMessageMeta(h.db, msgs)

	c.JSON(http.StatusOK, gin.H{"message": msgs[0]})
}

// Create posts a message into a channel. Accepts JSON or multipart; the
// multipart form may attach an image under the "image" field.
func (h *MessageHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	channelID := utils.StringToUint(c.Param("channelId"))

	var channel models.Channel
	if err := h.db.First(&channel, channelID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Channel not found"})
		return
	}

	content, imageURL, ok := h.readContentAndImage(c)
	if !ok {
		return
	}

	message := models.Message{
		ChannelID: channelID,
		UserID:    user.ID,
		Content:   content,
		ImageURL:  imageURL,
	}
	if err := h.db.Create(&message).Error; err != nil {
		jsonError(c, err)
		return
	}
	message.DisplayName = user.DisplayName
	message.AvatarURL = user.AvatarURL

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Message created successfully",
		"messageData": message,
	})
}

// readContentAndImage extracts the content field (and optional image)
// from a JSON or multipart body. Writes the error response itself when
// validation fails.
func (h *MessageHandler) readContentAndImage(c *gin.Context) (content, imageURL string, ok bool) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		content = strings.TrimSpace(c.PostForm("content"))
		if content == "" {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{{"param": "content", "msg": "Content is required"}}})
			return "", "", false
		}

		if file, err := c.FormFile("image"); err == nil {
			url, err := h.uploads.SaveImage(file)
			if err != nil {
				jsonError(c, err)
				return "", "", false
			}
			imageURL = url
		}
		return content, imageURL, true
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return "", "", false
	}
	return req.Content, "", true
}

// Delete removes a message and cascades to its replies and ratings.
// Author or admin only.
func (h *MessageHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id := utils.StringToUint(c.Param("id"))

	var message models.Message
	if err := h.db.First(&message, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Message not found"})
		return
	}

	if !user.IsAdmin() && message.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to delete this message"})
		return
	}

	if err := h.db.Delete(&message).Error; err != nil {
		jsonError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message deleted successfully"})
}

// Rate records the caller's vote on a message, overwriting any earlier
// vote by the same user.
func (h *MessageHandler) Rate(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id := utils.StringToUint(c.Param("id"))

	var message models.Message
	if err := h.db.First(&message, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Message not found"})
		return
	}

	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	counts, err := applyRating(h.db, user.ID, &message.ID, nil, *req.IsUpvote)
	if err != nil {
		jsonError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Rating updated successfully",
		"upvotes":   counts.Upvotes,
		"downvotes": counts.Downvotes,
	})
}
