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

type ReplyHandler struct {
	db      *gorm.DB
	uploads *services.UploadService
}

func NewReplyHandler(db *gorm.DB, uploads *services.UploadService) *ReplyHandler {
	return &ReplyHandler{db: db, uploads: uploads}
}

// fillReplyMeta annotates replies with author info, vote tallies and
// direct-child counts (consumers use child_count for lazy expansion).
func fillReplyMeta(db *gorm.DB, replies []models.Reply) {
	if len(replies) == 0 {
		return
	}

	replyIDs := make([]uint, len(replies))
	userIDs := make([]uint, len(replies))
	for i, r := range replies {
		replyIDs[i] = r.ID
		userIDs[i] = r.UserID
	}

	var authors []models.User
	db.Where("id IN ?", userIDs).Find(&authors)
	authorMap := make(map[uint]models.User)
	for _, u := range authors {
		authorMap[u.ID] = u
	}

	type voteResult struct {
		ReplyID  uint
		IsUpvote bool
		Count    int
	}
	var votes []voteResult
	db.Model(&models.Rating{}).
		Select("reply_id, is_upvote, COUNT(*) as count").
		Where("reply_id IN ?", replyIDs).
		Group("reply_id, is_upvote").
		Scan(&votes)
	upMap := make(map[uint]int)
	downMap := make(map[uint]int)
	for _, v := range votes {
		if v.IsUpvote {
			upMap[v.ReplyID] = v.Count
		} else {
			downMap[v.ReplyID] = v.Count
		}
	}

	type countResult struct {
		ParentReplyID uint
		Count         int
	}
	var childCounts []countResult
	db.Model(&models.Reply{}).
		Select("parent_reply_id, COUNT(*) as count").
		Where("parent_reply_id IN ?", replyIDs).
		Group("parent_reply_id").
		Scan(&childCounts)
	childMap := make(map[uint]int)
	for _, r := range childCounts {
		childMap[r.ParentReplyID] = r.Count
	}

	for i := range replies {
		author := authorMap[replies[i].UserID]
		replies[i].DisplayName = author.DisplayName
		replies[i].AvatarURL = author.AvatarURL
		replies[i].Upvotes = upMap[replies[i].ID]
		replies[i].Downvotes = downMap[replies[i].ID]
		replies[i].ChildCount = childMap[replies[i].ID]
	}
}

// ListByMessage returns the top-level replies of a message in
// chat-thread order (oldest first).
func (h *ReplyHandler) ListByMessage(c *gin.Context) {
	messageID := utils.StringToUint(c.Param("messageId"))

	var message models.Message
	if err := h.db.First(&message, messageID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Message not found"})
		return
	}

	var replies []models.Reply
	if err := h.db.Where("message_id = ? AND parent_reply_id IS NULL", messageID).
		Order("created_at ASC").
		Find(&replies).Error; err != nil {
		jsonError(c, err)
		return
	}
	fillReplyMeta(h.db, replies)

	c.JSON(http.StatusOK, gin.H{"replies": replies})
}

// ListByParent returns the direct children of a reply, oldest first.
func (h *ReplyHandler) ListByParent(c *gin.Context) {
	parentID := utils.StringToUint(c.Param("replyId"))

	var parent models.Reply
	if err := h.db.First(&parent, parentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Parent reply not found"})
		return
	}

	var replies []models.Reply
	if err := h.db.Where("parent_reply_id = ?", parentID).
		Order("created_at ASC").
		Find(&replies).Error; err != nil {
		jsonError(c, err)
		return
	}
	fillReplyMeta(h.db, replies)

	c.JSON(http.StatusOK, gin.H{"replies": replies})
}

// CreateForMessage posts a top-level reply on a message.
func (h *ReplyHandler) CreateForMessage(c *gin.Context) {
	user := middleware.CurrentUser(c)
	messageID := utils.StringToUint(c.Param("messageId"))

	var message models.Message
	if err := h.db.First(&message, messageID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Message not found"})
		return
	}

	content, imageURL, ok := h.readContentAndImage(c)
	if !ok {
		return
	}

	reply := models.Reply{
		MessageID: messageID,
		UserID:    user.ID,
		Content:   content,
		ImageURL:  imageURL,
	}
	if err := h.db.Create(&reply).Error; err != nil {
		jsonError(c, err)
		return
	}
	reply.DisplayName = user.DisplayName
	reply.AvatarURL = user.AvatarURL

	c.JSON(http.StatusCreated, gin.H{
		"message": "Reply created successfully",
		"reply":   reply,
	})
}

// CreateForParent posts a nested reply. The message id is inherited
// from the parent row; the caller cannot supply a different one, so a
// reply tree can never span messages.
func (h *ReplyHandler) CreateForParent(c *gin.Context) {
	user := middleware.CurrentUser(c)
	parentID := utils.StringToUint(c.Param("replyId"))

	var parent models.Reply
	if err := h.db.First(&parent, parentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Parent reply not found"})
		return
	}

	content, imageURL, ok := h.readContentAndImage(c)
	if !ok {
		return
	}

	reply := models.Reply{
		MessageID:     parent.MessageID,
		ParentReplyID: &parent.ID,
		UserID:        user.ID,
		Content:       content,
		ImageURL:      imageURL,
	}
	if err := h.db.Create(&reply).Error; err != nil {
		jsonError(c, err)
		return
	}
	reply.DisplayName = user.DisplayName
	reply.AvatarURL = user.AvatarURL

	c.JSON(http.StatusCreated, gin.H{
		"message": "Nested reply created successfully",
		"reply":   reply,
	})
}

func (h *ReplyHandler) readContentAndImage(c *gin.Context) (content, imageURL string, ok bool) {
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

// Delete removes a reply; the self-referential cascade takes every
// descendant reply and their ratings with it, not only direct children.
// Author or admin only.
func (h *ReplyHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id := utils.StringToUint(c.Param("id"))

	var reply models.Reply
	if err := h.db.First(&reply, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Reply not found"})
		return
	}

	if !user.IsAdmin() && reply.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to delete this reply"})
		return
	}

	if err := h.db.Delete(&reply).Error; err != nil {
		jsonError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reply deleted successfully"})
}

// Rate records the caller's vote on a reply, overwriting any earlier
// vote by the same user.
func (h *ReplyHandler) Rate(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id := utils.StringToUint(c.Param("id"))

	var reply models.Reply
	if err := h.db.First(&reply, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Reply not found"})
		return
	}

	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	counts, err := applyRating(h.db, user.ID, nil, &reply.ID, *req.IsUpvote)
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
