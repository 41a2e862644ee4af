package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/hostel-outing-api/api/swagger"
	"github.com/noah-isme/hostel-outing-api/internal/handler"
	"github.com/noah-isme/hostel-outing-api/internal/middleware"
	"github.com/noah-isme/hostel-outing-api/internal/models"
	"github.com/noah-isme/hostel-outing-api/internal/repository"
	"github.com/noah-isme/hostel-outing-api/internal/service"
	"github.com/noah-isme/hostel-outing-api/pkg/cache"
	"github.com/noah-isme/hostel-outing-api/pkg/config"
	"github.com/noah-isme/hostel-outing-api/pkg/database"
	"github.com/noah-isme/hostel-outing-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/hostel-outing-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/hostel-outing-api/pkg/middleware/requestid"
	"github.com/noah-isme/hostel-outing-api/pkg/storage"
)

// @title Hostel Outing API
// @version 1.0.0
// @description Outing request approval workflow for hostel residents
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	photoStore, err := storage.NewLocalStorage(cfg.Storage.PhotoDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init photo storage", "error", err)
	}
	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	photoSigner := storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL)
	exportSigner := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	validate := validator.New()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	outingRepo := repository.NewOutingRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	referenceRepo := repository.NewReferenceRepository(db)
	boardRepo := repository.NewBoardRepository(db)

	// Services.
	metricsSvc := service.NewMetricsService()
	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, true)
	}

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "hostel-outing-api",
	})
	outingSvc := service.NewOutingService(outingRepo, historyRepo, profileRepo, userRepo, cacheSvc, logr, service.OutingServiceConfig{
		AdminOverride: cfg.Workflow.AdminOverride,
	})
	profileSvc := service.NewProfileService(profileRepo, userRepo, photoStore, photoSigner, validate, logr, service.ProfileServiceConfig{
		MaxFileSizeBytes: cfg.Storage.MaxFileSizeBytes,
		AllowedMIMEs:     cfg.Storage.AllowedMIMEs,
	})
	bootstrapSvc := service.NewBootstrapService(userRepo, profileRepo, validate, logr, service.BootstrapConfig{
		Enabled: cfg.Bootstrap.Enabled,
	})
	boardSvc := service.NewBoardService(boardRepo, cacheSvc, validate, logr)
	dashboardSvc := service.NewDashboardService(outingSvc, boardRepo, cacheSvc, logr, cfg.Dashboard.CacheTTL)
	exportSvc := service.NewExportService(outingSvc, exportStore, exportSigner, logr)
	referenceSvc := service.NewReferenceService(referenceRepo, logr)

	// Handlers.
	scopes := handler.NewScopeResolver(profileRepo)
	authHandler := handler.NewAuthHandler(authSvc)
	outingHandler := handler.NewOutingHandler(outingSvc, scopes)
	profileHandler := handler.NewProfileHandler(profileSvc, scopes)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc, scopes)
	boardHandler := handler.NewBoardHandler(boardSvc, scopes)
	referenceHandler := handler.NewReferenceHandler(referenceSvc, scopes)
	bootstrapHandler := handler.NewBootstrapHandler(bootstrapSvc)
	exportHandler := handler.NewExportHandler(exportSvc, scopes)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	if cfg.Bootstrap.Enabled {
		api.POST("/bootstrap/admin", bootstrapHandler.BootstrapAdmin)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	outings := protected.Group("/outings")
	{
		outings.POST("", middleware.RequireRoles(models.RoleStudent), outingHandler.Create)
		outings.GET("", outingHandler.ListHistory)
		outings.GET("/stats", outingHandler.Stats)
		outings.GET("/pending", middleware.RequireRoles(
			models.RoleAdvisor, models.RoleHOD, models.RoleWarden, models.RoleAdmin, models.RolePrincipal,
		), outingHandler.ListPending)
		outings.GET("/approvals", middleware.RequireRoles(
			models.RoleAdvisor, models.RoleHOD, models.RoleWarden, models.RoleAdmin, models.RolePrincipal,
		), outingHandler.ApprovalHistory)
		outings.GET("/approvals/mine", middleware.RequireRoles(
			models.RoleAdvisor, models.RoleHOD, models.RoleWarden, models.RoleAdmin,
		), outingHandler.MyDecisions)
		outings.GET("/:id", outingHandler.Get)
		outings.POST("/:id/decision", middleware.RequireRoles(
			models.RoleAdvisor, models.RoleHOD, models.RoleWarden, models.RoleAdmin,
		), outingHandler.Decide)
	}

	profiles := protected.Group("/profiles")
	{
		profiles.GET("/me", profileHandler.Me)
		profiles.PUT("/me", profileHandler.Update)
		profiles.POST("/me/photo", profileHandler.UploadPhoto)
		profiles.GET("", middleware.RequireRoles(
			models.RoleAdmin, models.RoleWarden, models.RoleAdvisor, models.RoleHOD, models.RolePrincipal,
		), profileHandler.List)
		profiles.GET("/:id", profileHandler.Get)
		profiles.GET("/:id/photo-url", profileHandler.PhotoURL)
		profiles.POST("/:id/review", middleware.RequireRoles(models.RoleAdmin, models.RoleWarden), profileHandler.Review)
	}

	protected.GET("/dashboard", dashboardHandler.Summary)

	notices := protected.Group("/notices")
	{
		notices.GET("", boardHandler.ListNotices)
		notices.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleWarden), boardHandler.CreateNotice)
		notices.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), boardHandler.DeleteNotice)
	}

	complaints := protected.Group("/complaints")
	{
		complaints.POST("", middleware.RequireRoles(models.RoleStudent), boardHandler.CreateComplaint)
		complaints.GET("", boardHandler.ListComplaints)
		complaints.GET("/:id", boardHandler.GetComplaint)
		complaints.PUT("/:id/status",
			middleware.RequireRoles(models.RoleAdmin, models.RoleWarden),
			middleware.Audit(userRepo, models.AuditActionComplaintStatus, "complaint"),
			boardHandler.UpdateComplaintStatus)
	}

	referenceAudit := middleware.Audit(userRepo, models.AuditActionReferenceWrite, "reference")
	protected.GET("/departments", referenceHandler.ListDepartments)
	protected.POST("/departments", middleware.RequireRoles(models.RoleAdmin), referenceAudit, referenceHandler.CreateDepartment)
	protected.GET("/rooms", referenceHandler.ListRooms)
	protected.POST("/rooms", middleware.RequireRoles(models.RoleAdmin), referenceAudit, referenceHandler.CreateRoom)

	exports := protected.Group("/exports")
	{
		exports.POST("/outings/:id/slip", exportHandler.ApprovalSlip)
		exports.POST("/outings/history", exportHandler.HistoryCSV)
		exports.GET("/download", exportHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
