package main

import (
	"fmt"
	"log"
	"net/http"

	"educonnect/backend/internal/auth"
	"educonnect/backend/internal/config"
	"educonnect/backend/internal/database"
	"educonnect/backend/internal/handler"
	"educonnect/backend/internal/storage"

	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "educonnect/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           EduConnect API
// @version         1.0
// @description     This is the API for the EduConnect platform.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	// Connect to the database
	database.Connect(config.AppConfig.DatabaseURL)

	handler.PostStore = storage.NewLocal(config.AppConfig.UploadDir)

	router := gin.Default()

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", handler.RegisterUser)
			authRoutes.POST("/login", handler.LoginUser)
		}

		// User routes (protected)
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.AuthMiddleware())
		{
			userRoutes.GET("", handler.SearchUsers) // Must be before /:id
			userRoutes.GET("/me", handler.GetMe)
			userRoutes.PUT("/me", handler.UpdateSettings)
			userRoutes.GET("/:id", handler.GetUserByID)
			userRoutes.POST("/:id/request", handler.SendFriendRequest)
		}

		// Friendship routes (protected)
		friendRoutes := apiV1.Group("/friends")
		friendRoutes.Use(auth.AuthMiddleware())
		{
			friendRoutes.GET("", handler.ListFriends)
			friendRoutes.DELETE("/:id", handler.Unfriend)
			friendRoutes.GET("/requests", handler.ListFriendRequests)
			friendRoutes.POST("/requests/:id/accept", handler.AcceptFriendRequest)
			friendRoutes.POST("/requests/:id/reject", handler.RejectFriendRequest)
		}

		// Group routes (protected)
		groupRoutes := apiV1.Group("/groups")
		groupRoutes.Use(auth.AuthMiddleware())
		{
			groupRoutes.POST("", handler.CreateGroup)
			groupRoutes.GET("", handler.ListGroups)
			groupRoutes.GET("/:id", handler.GetGroupByID)
			groupRoutes.POST("/:id/join", handler.JoinGroup)
			groupRoutes.POST("/:id/leave", handler.LeaveGroup)
			groupRoutes.GET("/:id/members", handler.GetGroupMembers)
			groupRoutes.GET("/:id/posts", handler.GetGroupFeed)
			groupRoutes.POST("/:id/messages", handler.SendGroupMessage)
			groupRoutes.GET("/:id/messages", handler.GetGroupMessages)
			groupRoutes.GET("/:id/stream", handler.StreamGroupEvents)
		}

		// Post routes (protected)
		postRoutes := apiV1.Group("/posts")
		postRoutes.Use(auth.AuthMiddleware())
		{
			postRoutes.GET("", handler.GetFeed)
			postRoutes.POST("", handler.CreatePost)
			postRoutes.PUT("/:id", handler.EditPost)
			postRoutes.DELETE("/:id", handler.DeletePost)
			postRoutes.POST("/:id/like", handler.ToggleLike)
			postRoutes.POST("/:id/comments", handler.AddComment)
		}

		// Chat routes (protected)
		chatRoutes := apiV1.Group("/chat")
		chatRoutes.Use(auth.AuthMiddleware())
		{
			chatRoutes.POST("/direct/:id", handler.SendDirectMessage)
			chatRoutes.GET("/direct/:id", handler.GetConversation)
			chatRoutes.GET("/stream", handler.StreamUserEvents)
		}
	}

	addr := ":" + config.AppConfig.Port
	fmt.Println("Server is running on " + addr)
	fmt.Println("Swagger UI is available at http://localhost" + addr + "/swagger/index.html")
	log.Fatal(router.Run(addr))
}
