package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"devchannels/internal/middleware"
	"devchannels/internal/models"
	"devchannels/internal/utils"
)

type ChannelHandler struct {
	db *gorm.DB
}

func NewChannelHandler(db *gorm.DB) *ChannelHandler {
	return &ChannelHandler{db: db}
}

type createChannelRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

// fillChannelMeta annotates channels with creator display names and
// message counts in two batched queries.
func fillChannelMeta(db *gorm.DB, channels []models.Channel) {
	if len(channels) == 0 {
		return
	}

	creatorIDs := make([]uint, len(channels))
	channelIDs := make([]uint, len(channels))
	for i, ch := range channels {
		creatorIDs[i] = ch.CreatedBy
		channelIDs[i] = ch.ID
	}

	var creators []models.User
	db.Where("id IN ?", creatorIDs).Find(&creators)
	nameMap := make(map[uint]string)
	for _, u := range creators {
		nameMap[u.ID] = u.DisplayName
	}

	type countResult struct {
		ChannelID uint
		Count     int
	}
	var counts []countResult
	db.Model(&models.Message{}).
		Select("channel_id, COUNT(*) as count").
		Where("channel_id IN ?", channelIDs).
		Group("channel_id").
		Scan(&counts)
	countMap := make(map[uint]int)
	for _, r := range counts {
		countMap[r.ChannelID] = r.Count
	}

	for i := range channels {
		channels[i].CreatorName = nameMap[channels[i].CreatedBy]
		channels[i].MessageCount = countMap[channels[i].ID]
	}
}

func (h *ChannelHandler) List(c *gin.Context) {
	var channels []models.Channel
	if err := h.db.Order("created_at DESC").Find(&channels).Error; err != nil {
		jsonError(c, err)
		return
	}
	fillChannelMeta(h.db, channels)

	c.JSON(http.StatusOK, gin.H{"channels": channels})
}

func (h *ChannelHandler) Get(c *gin.Context) {
	id := utils.StringToUint(c.Param("id"))

	var channel models.Channel
	if err := h.db.First(&channel, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Channel not found"})
		return
	}
	chans := []models.Channel{channel}
	fillChannelMeta(h.db, chans)

	c.JSON(http.StatusOK, gin.H{"channel": chans[0]})
}

func (h *ChannelHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req createChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	var count int64
	h.db.Model(&models.Channel{}).Where("name = ?", req.Name).Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Channel with this name already exists"})
		return
	}

	channel := models.Channel{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   user.ID,
	}
	if err := h.db.Create(&channel).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Channel with this name already exists"})
		return
	}
	channel.CreatorName = user.DisplayName

	c.JSON(http.StatusCreated, gin.H{
		"message": "Channel created successfully",
		"channel": channel,
	})
}

// Delete removes a channel and, through the schema cascade, every
// message, reply and rating inside it. Creator or admin only.
func (h *ChannelHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id := utils.StringToUint(c.Param("id"))

	var channel models.Channel
	if err := h.db.First(&channel, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Channel not found"})
		return
	}

	if !user.IsAdmin() && channel.CreatedBy != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to delete this channel"})
		return
	}

	if err := h.db.Delete(&channel).Error; err != nil {
		jsonError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Channel deleted successfully"})
}
