package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/config"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/database"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/handlers"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/middleware"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/reconciler"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/services"
	"github.com/IIoT-Solutions-SA/forum-platform-api/pkg/utils"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	switch cfg.App.Env {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	err = utils.InitLogger(&utils.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	logger := utils.GetLogger()
	logger.Info("Starting forum platform API", utils.LogFields{
		"environment": cfg.App.Env,
		"port":        cfg.App.Port,
	})

	db, err := database.Connect(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", err)
	}

	if err := database.Migrate(db.DB()); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}
	logger.Info("Database migrations completed", nil)

	var redisClient database.RedisClient
	if cfg.Redis.URL != "" {
		redisClient, err = database.InitializeRedis(cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", err)
		}
		logger.Info("Redis connected", utils.LogFields{"url": cfg.Redis.URL})
	} else {
		logger.Fatal("REDIS_URL is required for refresh token tracking", nil)
	}

	svc, err := initializeServices(cfg, db, redisClient)
	if err != nil {
		logger.Fatal("Failed to initialize services", err)
	}

	hnd := initializeHandlers(cfg, db, redisClient, svc)
	mw := initializeMiddleware(svc)

	router := setupRouter(cfg, hnd, mw)

	recon := reconciler.New(svc.CategoryService, svc.InvitationService, cfg.Forum.ReconcileSchedule)
	if err := recon.Start(); err != nil {
		logger.Fatal("Failed to start reconciler", err)
	}

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.App.Port),
		Handler:        router,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(cfg.Server.IdleTimeout) * time.Second,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		logger.Info("Server starting", utils.LogFields{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...", nil)

	recon.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", err)
	}

	logger.Info("Server stopped gracefully", nil)
}

// ServiceContainer holds all initialized services.
type ServiceContainer struct {
	JWTService        *services.JWTService
	TokenManager      *services.TokenManager
	IdentityService   *services.IdentityService
	AuthService       *services.AuthService
	TenantService     *services.TenantService
	InvitationService *services.InvitationService
	CategoryService   *services.CategoryService
	TopicService      *services.TopicService
	BestAnswerService *services.BestAnswerService
	EngagementService *services.EngagementService
	ReputationService *services.ReputationService
	SearchService     *services.SearchService
	AttachmentService *services.AttachmentService
}

// HandlerContainer holds all initialized handlers.
type HandlerContainer struct {
	AuthHandler         *handlers.AuthHandler
	OrganizationHandler *handlers.OrganizationHandler
	CategoryHandler     *handlers.CategoryHandler
	TopicHandler        *handlers.TopicHandler
	EngagementHandler   *handlers.EngagementHandler
	SearchHandler       *handlers.SearchHandler
	ReputationHandler   *handlers.ReputationHandler
	AttachmentHandler   *handlers.AttachmentHandler
	AdminHandler        *handlers.AdminHandler
	HealthHandler       *handlers.HealthHandler
}

// MiddlewareContainer holds all initialized middleware.
type MiddlewareContainer struct {
	Auth *middleware.AuthMiddleware
}

func initializeServices(cfg *config.Config, db database.Database, redisClient database.RedisClient) (*ServiceContainer, error) {
	jwtService := services.NewJWTService(cfg.Security.JWTSecret, cfg.Security.JWTExpiry, cfg.Security.RefreshExpiry)
	tokenManager := services.NewTokenManager(redisClient)
	identityService := services.NewIdentityService(cfg.Identity)
	tenantService := services.NewTenantService(db)
	authService := services.NewAuthService(db, identityService, jwtService, tokenManager)
	invitationService := services.NewInvitationService(db, tenantService, cfg.Forum.InvitationTTL)
	categoryService := services.NewCategoryService(db)
	reputationService := services.NewReputationService(db)
	topicService := services.NewTopicService(db, categoryService, reputationService)
	bestAnswerService := services.NewBestAnswerService(db, reputationService)
	engagementService := services.NewEngagementService(db)
	searchService := services.NewSearchService(db)

	blobStore, err := services.NewS3BlobStore(context.Background(), cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blob store: %w", err)
	}
	attachmentService := services.NewAttachmentService(db, blobStore, cfg.Storage.MaxUploadMB)

	return &ServiceContainer{
		JWTService:        jwtService,
		TokenManager:      tokenManager,
		IdentityService:   identityService,
		AuthService:       authService,
		TenantService:     tenantService,
		InvitationService: invitationService,
		CategoryService:   categoryService,
		TopicService:      topicService,
		BestAnswerService: bestAnswerService,
		EngagementService: engagementService,
		ReputationService: reputationService,
		SearchService:     searchService,
		AttachmentService: attachmentService,
	}, nil
}

func initializeHandlers(cfg *config.Config, db database.Database, redisClient database.RedisClient, svc *ServiceContainer) *HandlerContainer {
	return &HandlerContainer{
		AuthHandler:         handlers.NewAuthHandler(svc.AuthService, svc.TenantService, svc.InvitationService, svc.IdentityService),
		OrganizationHandler: handlers.NewOrganizationHandler(svc.TenantService, svc.AuthService, svc.IdentityService),
		CategoryHandler:     handlers.NewCategoryHandler(svc.CategoryService),
		TopicHandler:        handlers.NewTopicHandler(svc.TopicService, svc.BestAnswerService, svc.EngagementService),
		EngagementHandler:   handlers.NewEngagementHandler(svc.EngagementService),
		SearchHandler:       handlers.NewSearchHandler(svc.SearchService),
		ReputationHandler:   handlers.NewReputationHandler(svc.ReputationService, svc.TenantService),
		AttachmentHandler:   handlers.NewAttachmentHandler(svc.AttachmentService),
		AdminHandler:        handlers.NewAdminHandler(svc.TenantService, svc.InvitationService, svc.ReputationService, svc.CategoryService),
		HealthHandler:       handlers.NewHealthHandler(db, redisClient),
	}
}

func initializeMiddleware(svc *ServiceContainer) *MiddlewareContainer {
	return &MiddlewareContainer{
		Auth: middleware.NewAuthMiddleware(svc.JWTService, svc.TenantService),
	}
}

func setupRouter(cfg *config.Config, hnd *HandlerContainer, mw *MiddlewareContainer) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(utils.LogrusLogger()))
	router.Use(func(c *gin.Context) {
		utils.SetSecurityHeaders(c)
		c.Next()
	})
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RateLimitMiddleware(cfg))

	router.GET("/health", hnd.HealthHandler.Health)
	router.GET("/ready", hnd.HealthHandler.Readiness)
	router.GET("/live", hnd.HealthHandler.Liveness)

	api := router.Group("/api/v1")

	// Public routes
	api.POST("/organizations", hnd.OrganizationHandler.Register)
	auth := api.Group("/auth")
	{
		auth.POST("/login", hnd.AuthHandler.Login)
		auth.POST("/refresh", hnd.AuthHandler.Refresh)
		auth.POST("/logout", hnd.AuthHandler.Logout)
		auth.POST("/invitations/accept", hnd.AuthHandler.AcceptInvitation)
	}

	// Authenticated routes
	protected := api.Group("/")
	protected.Use(mw.Auth.RequireAuth())
	{
		protected.GET("/auth/me", hnd.AuthHandler.Me)
		protected.PUT("/auth/me", hnd.AuthHandler.UpdateProfile)

		protected.GET("/organization", hnd.OrganizationHandler.Get)
		protected.PUT("/organization", hnd.OrganizationHandler.Update)
		protected.GET("/organization/members", hnd.OrganizationHandler.ListMembers)

		protected.GET("/categories", hnd.CategoryHandler.List)
		protected.GET("/categories/:slug", hnd.CategoryHandler.Get)

		topics := protected.Group("/topics")
		{
			topics.POST("", hnd.TopicHandler.Create)
			topics.GET("", hnd.TopicHandler.List)
			topics.GET("/:id", hnd.TopicHandler.Get)
			topics.DELETE("/:id", hnd.TopicHandler.Delete)
			topics.POST("/:id/replies", hnd.TopicHandler.CreateReply)
			topics.GET("/:id/replies", hnd.TopicHandler.ListReplies)
			topics.PUT("/:id/best-answer", hnd.TopicHandler.MarkBestAnswer)
			topics.DELETE("/:id/best-answer", hnd.TopicHandler.UnmarkBestAnswer)
			topics.POST("/:id/like", hnd.EngagementHandler.ToggleTopicLike)
			topics.POST("/:id/bookmark", hnd.EngagementHandler.ToggleBookmark)
			topics.GET("/:id/viewers", hnd.EngagementHandler.UniqueViewers)
			topics.GET("/:id/attachments", hnd.AttachmentHandler.ListForTopic)
		}

		replies := protected.Group("/replies")
		{
			replies.PUT("/:id", hnd.TopicHandler.EditReply)
			replies.DELETE("/:id", hnd.TopicHandler.DeleteReply)
			replies.POST("/:id/like", hnd.EngagementHandler.ToggleReplyLike)
		}

		protected.GET("/bookmarks", hnd.EngagementHandler.ListBookmarks)
		protected.GET("/search/topics", hnd.SearchHandler.SearchTopics)

		protected.GET("/users/:id/reputation", hnd.ReputationHandler.GetScore)
		protected.GET("/users/:id/reputation/history", hnd.ReputationHandler.History)

		attachments := protected.Group("/attachments")
		{
			attachments.POST("", hnd.AttachmentHandler.RequestUpload)
			attachments.POST("/:id/link", hnd.AttachmentHandler.Link)
			attachments.GET("/:id/download", hnd.AttachmentHandler.Download)
			attachments.DELETE("/:id", hnd.AttachmentHandler.Delete)
		}

		admin := protected.Group("/admin")
		admin.Use(mw.Auth.RequireAdmin())
		{
			admin.POST("/categories", hnd.CategoryHandler.Create)
			admin.POST("/invitations", hnd.AdminHandler.Invite)
			admin.GET("/invitations", hnd.AdminHandler.ListInvitations)
			admin.DELETE("/invitations/:id", hnd.AdminHandler.RevokeInvitation)
			admin.PUT("/members/:id/role", hnd.AdminHandler.SetMemberRole)
			admin.PUT("/members/:id/verified", hnd.AdminHandler.SetMemberVerified)
			admin.POST("/members/:id/reputation", hnd.AdminHandler.AdjustReputation)
			admin.POST("/reconcile", hnd.AdminHandler.ReconcileCounters)
		}
	}

	return router
}
