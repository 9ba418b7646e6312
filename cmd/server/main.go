package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/api/handlers"
	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/api/middleware"
	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/chat"
	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/config"
	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/database"
	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/storage"
	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/summarize"
	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/translate"
	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/ws"
)

func main() {
	// Load configuration
	config, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize database connections
	db := database.InitDB(config)
	redisClient := database.InitRedis(config)

	// Setup and run the server
	r := setupRouter(db, redisClient, config)
	port := config.ServerPort

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func setupRouter(db *gorm.DB, redisClient *redis.Client, config *config.Config) *gin.Engine {
	r := gin.Default()

	// Configure CORS middleware
	headers := cors.DefaultConfig()
	headers.AllowOrigins = []string{config.FrontendURL}
	headers.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	headers.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	headers.ExposeHeaders = []string{"Content-Length"}
	headers.AllowCredentials = true
	r.Use(cors.New(headers))

	// Translation provider chain: MyMemory, then LibreTranslate if
	// configured, then the deterministic placeholder inside the translator.
	providers := []translate.Provider{translate.NewMyMemory(config.MyMemoryEmail)}
	if config.LibreTranslateURL != "" {
		providers = append(providers, translate.NewLibreTranslate(config.LibreTranslateURL, config.LibreTranslateKey))
	}
	translator := translate.NewTranslator(providers...)

	hub := ws.NewHub(redisClient)
	pipeline := chat.NewPipeline(db, redisClient, translator, hub)
	generator := summarize.NewGenerator(summarize.NewLLMClient(config.LLMHost, config.LLMModel, config.LLMTemperature))

	audioStore, err := storage.NewAudioStore(config)
	if err != nil {
		log.Printf("Warning: failed to initialize audio storage: %v", err)
	}

	// Initialize handlers and middleware with dependencies
	handler := handlers.NewHandler(db, redisClient, config, hub, pipeline, generator, audioStore)
	authMiddleware := middleware.NewAuthMiddleware(config.JWTSecret)

	// Realtime endpoint; the token rides in a query parameter.
	r.GET("/ws", handler.HandleWebSocket)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", handler.RegisterHandler)
			authGroup.POST("/login", handler.LoginHandler)
		}

		api.GET("/languages", handler.ListLanguages)

		// Protected routes
		protected := api.Group("", authMiddleware.AuthMiddleware())
		{
			protected.GET("/patients", handler.ListPatients)

			conversations := protected.Group("/conversations")
			{
				conversations.GET("", handler.ListConversations)
				conversations.POST("", handler.CreateConversation)
				conversations.GET("/:conversationId", handler.GetConversation)
				conversations.PATCH("/:conversationId/status", handler.UpdateConversationStatus)
				conversations.GET("/:conversationId/messages", handler.GetMessages)
				conversations.POST("/:conversationId/messages", handler.SendMessage)
				conversations.POST("/:conversationId/messages/read", handler.MarkMessagesRead)
				conversations.POST("/:conversationId/summary", handler.GenerateSummary)
				conversations.GET("/:conversationId/summary", handler.GetSummary)
			}

			protected.POST("/audio", handler.UploadAudio)
			protected.GET("/audio/*key", handler.GetAudioURL)
			protected.DELETE("/audio/*key", handler.DeleteAudio)
		}
	}

	return r
}
