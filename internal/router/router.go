package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"devchannels/internal/config"
	"devchannels/internal/handlers"
	"devchannels/internal/middleware"
	"devchannels/internal/services"
)

// Setup wires middleware, handlers and routes onto the engine. All
// dependencies are constructed here and injected; nothing is global.
func Setup(r *gin.Engine, database *gorm.DB, cfg *config.Config, uploads *services.UploadService) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	go func() {
		for {
			time.Sleep(10 * time.Minute)
			limiter.Prune()
		}
	}()
	limited := middleware.RateLimit(limiter)

	auth := middleware.NewAuthenticator(database, cfg.JWTSecret)

	authHandler := handlers.NewAuthHandler(database, auth)
	channelHandler := handlers.NewChannelHandler(database)
	messageHandler := handlers.NewMessageHandler(database, uploads)
	replyHandler := handlers.NewReplyHandler(database, uploads)
	searchHandler := handlers.NewSearchHandler(database)
	userHandler := handlers.NewUserHandler(database)
	adminHandler := handlers.NewAdminHandler(database)

	// Uploaded images are public
	r.Static("/uploads", uploads.Dir())

	api := r.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", limited, authHandler.Register)
		authRoutes.POST("/login", limited, authHandler.Login)
		authRoutes.GET("/me", auth.RequireAuth(), authHandler.Me)
	}

	channels := api.Group("/channels")
	{
		channels.GET("", channelHandler.List)
		channels.GET("/:id", channelHandler.Get)
		channels.POST("", auth.RequireAuth(), limited, channelHandler.Create)
		channels.DELETE("/:id", auth.RequireAuth(), channelHandler.Delete)
	}

	messages := api.Group("/messages")
	{
		messages.GET("/channel/:channelId", messageHandler.ListByChannel)
		messages.GET("/:id", messageHandler.Get)
		messages.POST("/channel/:channelId", auth.RequireAuth(), limited, messageHandler.Create)
		messages.DELETE("/:id", auth.RequireAuth(), messageHandler.Delete)
		messages.POST("/:id/rate", auth.RequireAuth(), messageHandler.Rate)
	}

	replies := api.Group("/replies")
	{
		replies.GET("/message/:messageId", replyHandler.ListByMessage)
		replies.GET("/parent/:replyId", replyHandler.ListByParent)
		replies.POST("/message/:messageId", auth.RequireAuth(), limited, replyHandler.CreateForMessage)
		replies.POST("/parent/:replyId", auth.RequireAuth(), limited, replyHandler.CreateForParent)
		replies.DELETE("/:id", auth.RequireAuth(), replyHandler.Delete)
		replies.POST("/:id/rate", auth.RequireAuth(), replyHandler.Rate)
	}

	search := api.Group("/search")
	{
		search.GET("", searchHandler.All)
		search.GET("/users", searchHandler.Users)
		search.GET("/stats/users/most-posts", searchHandler.MostPosts)
		search.GET("/stats/users/highest-rated", searchHandler.HighestRated)
		search.GET("/user/:userId/content", searchHandler.UserContent)
	}

	users := api.Group("/users")
	users.Use(auth.RequireAuth())
	{
		users.GET("/profile", userHandler.Profile)
		users.PUT("/profile", userHandler.UpdateProfile)
		users.PUT("/password", userHandler.ChangePassword)
	}

	admin := api.Group("/admin")
	admin.Use(auth.RequireAuth(), middleware.RequireAdmin())
	{
		admin.GET("/users", adminHandler.ListUsers)
		admin.DELETE("/users/:id", adminHandler.DeleteUser)
		admin.GET("/stats", adminHandler.Stats)
	}
}
