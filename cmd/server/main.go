package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vivaha/backend/config"
	"github.com/vivaha/backend/internal/auth"
	"github.com/vivaha/backend/internal/cache"
	"github.com/vivaha/backend/internal/database"
	"github.com/vivaha/backend/internal/docstore"
	"github.com/vivaha/backend/internal/feed"
	"github.com/vivaha/backend/internal/handlers"
	"github.com/vivaha/backend/internal/middleware"
	"github.com/vivaha/backend/internal/repository"
	"github.com/vivaha/backend/internal/upload"
	"github.com/vivaha/backend/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.NewPostgresDB(cfg.GetDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	log.Println("Running database migrations...")
	if err := database.RunMigrations(db.DB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	// Connect to the document store
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	mongoDB, err := docstore.NewDB(ctx, cfg.Mongo.URI, cfg.Mongo.DBName)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect to document store: %v", err)
	}
	defer mongoDB.Client().Disconnect(context.Background())

	// Connect to Redis
	redis, err := cache.NewRedisClient(cfg.GetRedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		log.Println("Running without Redis - real-time features will be limited")
		redis = nil
	} else {
		defer redis.Close()
	}

	// Initialize services
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(db)
	convRepo := repository.NewConversationRepository(mongoDB)
	msgRepo := repository.NewMessageRepository(mongoDB)
	reportRepo := repository.NewReportRepository(db)
	walletRepo := repository.NewWalletRepository(db)

	// Image storage
	imageStore, err := upload.NewImageStore(cfg.Upload.Dir, cfg.Upload.BaseURL, cfg.Upload.MaxImageSize)
	if err != nil {
		log.Fatalf("Failed to initialize image store: %v", err)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(accountRepo, jwtService, redis)
	chatHandler := handlers.NewChatHandler(convRepo, msgRepo, reportRepo, walletRepo, accountRepo, imageStore, redis, cfg.API.UploadRatePerMin)
	walletHandler := handlers.NewWalletHandler(walletRepo, accountRepo)
	adminHandler := handlers.NewAdminHandler(convRepo, msgRepo, reportRepo)

	// Initialize realtime layer (only if Redis is available)
	var wsHandler *websocket.Handler
	if redis != nil {
		liveFeed, err := feed.NewLive(redis, convRepo, msgRepo)
		if err != nil {
			log.Fatalf("Failed to initialize feed: %v", err)
		}
		go liveFeed.Run(context.Background())

		hub := websocket.NewHub(liveFeed)
		go hub.Run()
		wsHandler = websocket.NewHandler(hub, jwtService, convRepo, cfg.CORS.AllowedOrigins)
	}

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(cfg.API.RateLimitMessagesPerSec)
	rateLimiter.Cleanup()

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Middleware
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public routes
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	// Uploaded chat images, served under the same base URL Save embeds in
	// message documents
	router.Static(cfg.Upload.BaseURL, imageStore.Dir())

	// WebSocket endpoint (only if Redis is available)
	if wsHandler != nil {
		router.GET("/ws", wsHandler.HandleWebSocket)
	}

	// Protected routes
	var sessions middleware.SessionStore
	if redis != nil {
		sessions = redis
	}
	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(jwtService, sessions))
	{
		api.GET("/me", authHandler.GetMe)
		api.POST("/logout", authHandler.Logout)
		api.GET("/wallet/balance", walletHandler.GetBalance)

		chat := api.Group("/chat")
		{
			chat.POST("/conversations", chatHandler.StartConversation)
			chat.GET("/conversations", chatHandler.GetConversations)
			chat.GET("/conversations/:id/messages", chatHandler.GetMessages)
			chat.POST("/messages", middleware.RateLimitMiddleware(rateLimiter), chatHandler.SendMessage)
			chat.PUT("/conversations/:id/read", chatHandler.MarkConversationRead)
			chat.POST("/upload-image", chatHandler.UploadImage)
			chat.POST("/conversations/:id/report", chatHandler.ReportConversation)
			chat.DELETE("/conversations/:id", chatHandler.DeleteConversation)
		}

		admin := api.Group("/admin/chat")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.GET("/conversations", adminHandler.ListConversations)
			admin.GET("/conversations/:id/messages", adminHandler.GetConversationMessages)
			admin.GET("/reports", adminHandler.ListReports)
			admin.PUT("/reports/:id", adminHandler.ReviewReport)

			if wsHandler != nil {
				admin.GET("/online-users", wsHandler.GetOnlineUsers)
			}
		}

		adminWallet := api.Group("/admin/wallet")
		adminWallet.Use(middleware.AdminMiddleware())
		{
			adminWallet.POST("/credit", walletHandler.CreditTokens)
		}
	}

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Starting Vivaha chat server on %s (env: %s)", addr, cfg.Server.Env)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
