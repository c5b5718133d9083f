package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"devchannels/internal/middleware"
	"devchannels/internal/models"
	"devchannels/internal/utils"
)

type AuthHandler struct {
	db   *gorm.DB
	auth *middleware.Authenticator
}

func NewAuthHandler(db *gorm.DB, auth *middleware.Authenticator) *AuthHandler {
	return &AuthHandler{db: db, auth: auth}
}

type registerRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=50"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"display_name" binding:"required,max=100"`
	AvatarURL   string `json:"avatar_url"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	username := strings.TrimSpace(req.Username)

	var count int64
	h.db.Model(&models.User{}).Where("username = ?", username).Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username already exists"})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		jsonError(c, utils.NewAppError(utils.ErrInternal, "Failed to hash password", err))
		return
	}

	user := models.User{
		Username:    username,
		Password:    hash,
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
		Role:        models.RoleMember,
	}
	if err := h.db.Create(&user).Error; err != nil {
		// Unique index closes the check-then-insert race
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username already exists"})
		return
	}

	token, err := h.auth.GenerateToken(&user)
	if err != nil {
		jsonError(c, utils.NewAppError(utils.ErrInternal, "Failed to issue token", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"token":   token,
		"user":    user,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	var user models.User
	if err := h.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	token, err := h.auth.GenerateToken(&user)
	if err != nil {
		jsonError(c, utils.NewAppError(utils.ErrInternal, "Failed to issue token", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// Me returns the user resolved from the bearer token.
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{"user": user})
}
