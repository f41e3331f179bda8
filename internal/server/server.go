package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"stash/internal/ai"
	"stash/internal/config"
	"stash/internal/database"
	"stash/internal/mail"
	custommiddleware "stash/internal/middleware"
	"stash/internal/repository"
	"stash/internal/service"
	"stash/internal/storage"
	"stash/internal/transport"
	"stash/internal/workflow"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, dbService *database.Service) (*Server, error) {
	db := dbService.DB()

	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env == "development"))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(dbService.Health())
	})

	// Redis client for rate limiting
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Object storage for wardrobe images
	mediaStore, err := storage.NewS3(context.Background(), cfg.Storage.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize media store: %w", err)
	}

	// Generative AI client: garment analysis and outfit styling
	aiClient := ai.NewClient(ai.Config{
		APIKey:      cfg.AI.APIKey,
		BaseURL:     cfg.AI.BaseURL,
		VisionModel: cfg.AI.VisionModel,
		TextModel:   cfg.AI.TextModel,
	}, logger)

	// Verification mail
	mailer := mail.NewSMTPMailer(mail.Config{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		From:      cfg.SMTP.From,
		VerifyURL: cfg.SMTP.VerifyURL,
	}, logger)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	verificationTokenRepo := repository.NewVerificationTokenRepository(db)
	itemRepo := repository.NewItemRepository(db)
	outfitRepo := repository.NewOutfitRepository(db)

	// Initialize services
	userService := service.NewUserService(userRepo, refreshTokenRepo, verificationTokenRepo, mailer, cfg.JWT.Secret, logger)
	itemService := service.NewItemService(itemRepo, mediaStore, logger)
	outfitService := service.NewOutfitService(outfitRepo, logger)

	// Initialize handlers
	userHandler := transport.NewUserHandler(userService, logger)
	itemHandler := transport.NewItemHandler(itemService, logger)
	outfitHandler := transport.NewOutfitHandler(outfitService, itemService, aiClient, logger)
	captureHandler := transport.NewCaptureHandler(workflow.NoCameraProvider{}, aiClient, logger)

	// Create middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	requireVerified := custommiddleware.RequireVerified(logger)
	authRateLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 20,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit:auth",
	}, logger)
	captureRateLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 10,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit:capture",
	}, logger)

	// Register routes
	router.Group(func(r chi.Router) {
		r.Use(authRateLimit)
		userHandler.RegisterRoutes(r, authMiddleware)
	})
	itemHandler.RegisterRoutes(router, authMiddleware)
	outfitHandler.RegisterRoutes(router, authMiddleware)
	captureHandler.RegisterRoutes(router, authMiddleware, requireVerified, captureRateLimit)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server, nil
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
