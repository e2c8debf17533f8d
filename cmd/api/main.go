package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fitpulse/fitpulse-backend/internal/config"
	"github.com/fitpulse/fitpulse-backend/internal/handler"
	"github.com/fitpulse/fitpulse-backend/internal/middleware"
	"github.com/fitpulse/fitpulse-backend/internal/migration"
	"github.com/fitpulse/fitpulse-backend/internal/repository"
	"github.com/fitpulse/fitpulse-backend/internal/routes"
	"github.com/fitpulse/fitpulse-backend/internal/service"
	"github.com/fitpulse/fitpulse-backend/internal/ws"
	pkgcache "github.com/fitpulse/fitpulse-backend/pkg/cache"
	"github.com/fitpulse/fitpulse-backend/pkg/jwt"
	pkglogger "github.com/fitpulse/fitpulse-backend/pkg/logger"
	pkgredis "github.com/fitpulse/fitpulse-backend/pkg/redis"
	pkgstorage "github.com/fitpulse/fitpulse-backend/pkg/storage"
)

// @title           FitPulse Messaging API
// @version         1.0
// @description     Direct messaging and notification service for the FitPulse fitness platform
//
// @host            localhost:8080
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	pkglogger.GetLogger().Info().
		Str("env", env).
		Strs("env_files", dotenvFiles).
		Msg("starting")

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	pkglogger.GetLogger().Info().Str("host", cfg.Database.Host).Msg("connected to MySQL")

	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("Redis unavailable, continuing without it")
		redisClient = nil
	}

	var cacheService pkgcache.Service
	if redisClient != nil {
		cacheService = pkgcache.NewService(redisClient)
	}

	var s3Client *pkgstorage.S3Client
	if cfg.Storage.Enabled && cfg.Storage.Bucket != "" {
		s3Client, err = pkgstorage.NewS3Client(pkgstorage.S3Config{
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			Bucket:          cfg.Storage.Bucket,
			CDNURL:          cfg.Storage.CDNURL,
			BasePath:        cfg.Storage.BasePath,
			ForcePathStyle:  cfg.Storage.ForcePathStyle,
		})
		if err != nil {
			pkglogger.GetLogger().Warn().Err(err).Msg("S3 init failed, continuing without attachments")
			s3Client = nil
		}
	}

	wsHub := ws.NewHub(redisClient)
	go wsHub.Run()
	defer wsHub.Stop()

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn.Std())

	// Repositories
	memberRepo := repository.NewMemberRepository(db)
	connectionRepo := repository.NewConnectionRepository(db)
	convRepo := repository.NewConversationRepository(db)
	msgRepo := repository.NewMessageRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	// Services
	chatService := service.NewChatService(
		convRepo, msgRepo, memberRepo, connectionRepo, notifRepo, wsHub, cacheService)
	adminService := service.NewAdminMessageService(
		convRepo, msgRepo, memberRepo, notifRepo, wsHub, cacheService)
	reactionService := service.NewReactionService(
		reactionRepo, msgRepo, convRepo, memberRepo, wsHub)
	notificationService := service.NewNotificationService(notifRepo)

	// Handlers
	chatHandler := handler.NewChatHandler(chatService)
	adminHandler := handler.NewAdminHandler(adminService)
	reactionHandler := handler.NewReactionHandler(reactionService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	attachmentHandler := handler.NewAttachmentHandler(s3Client)
	wsHandler := handler.NewWSHandler(wsHub, cfg.CORS.AllowOrigins)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	allowOrigins := cfg.CORS.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "http://localhost:3000"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     splitAndTrim(allowOrigins),
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Remaining"},
		MaxAge:           86400,
	}))

	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	if redisClient != nil && !cfg.IsDevelopment() {
		router.Use(middleware.RateLimit(redisClient, middleware.RateLimitConfig{
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
			KeyPrefix:         "api:ratelimit:",
			Message:           "Too many requests. Please try again shortly.",
		}))
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "fitpulse-backend",
			"time":    time.Now().Unix(),
		})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.Setup(router,
		chatHandler, adminHandler, reactionHandler,
		notificationHandler, attachmentHandler, wsHandler,
		jwtManager, redisClient)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	pkglogger.GetLogger().Info().Str("addr", addr).Msg("server listening")
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// splitAndTrim splits a comma-separated string and trims spaces
func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// initDB opens the MySQL connection via GORM
func initDB(cfg *config.Config) (*gorm.DB, error) {
	mysqlCfg, err := mysqldriver.ParseDSN(cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	logMode := gormlogger.Warn
	if cfg.IsDevelopment() {
		logMode = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(mysqlCfg.FormatDSN()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logMode),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}
