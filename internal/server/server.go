// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"moeum/internal/cache"
	"moeum/internal/config"
	"moeum/internal/database"
	"moeum/internal/identity"
	"moeum/internal/middleware"
	"moeum/internal/models"
	"moeum/internal/provider"
	"moeum/internal/repository"
	"moeum/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	directory identity.Directory
	tokens    *identity.TokenIssuer

	profileRepo repository.ProfileRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository

	federationService *service.FederationService
	profileService    *service.ProfileService
	postService       *service.PostService
	commentService    *service.CommentService
	viewCounter       *service.ViewCounter
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: fiberprometheus.New("moeum-api"),
	}

	server.directory = identity.NewStore(db)
	server.tokens = identity.NewTokenIssuer(cfg.TokenSecret, cfg.TokenIssuer, cfg.TokenAudience, cfg.TokenTTL())

	server.profileRepo = repository.NewProfileRepository(db)
	server.postRepo = repository.NewPostRepository(db)
	server.commentRepo = repository.NewCommentRepository(db)

	var kakao, naver provider.Provider
	if cfg.KakaoClientID != "" {
		kakao = provider.NewKakao(cfg.KakaoClientID, cfg.KakaoClientSecret, cfg.KakaoRedirectURI)
	}
	if cfg.NaverClientID != "" {
		naver = provider.NewNaver(cfg.NaverClientID, cfg.NaverClientSecret, cfg.NaverRedirectURI)
	}

	server.federationService = service.NewFederationService(
		server.directory, server.tokens, kakao, naver,
		service.LinkPolicy{Kakao: cfg.KakaoLinkByEmail, Naver: cfg.NaverLinkByEmail},
	)
	server.profileService = service.NewProfileService(server.profileRepo)
	server.postService = service.NewPostService(server.postRepo, nil)
	server.commentService = service.NewCommentService(server.commentRepo, server.postRepo)
	server.viewCounter = service.NewViewCounter(server.postRepo.IncrementViews, cfg.ViewDedupWindow())

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate request and subject ids into slog
	app.Use(middleware.ContextMiddleware())

	// Distributed tracing spans
	app.Use(middleware.TracingMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.Envelope{
				Success: false,
				Error:   "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health", s.HealthCheck)
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api/v1")

	// Auth routes
	auth := api.Group("/auth")
	auth.Get("/naver/state", s.NaverLoginState)
	auth.Post("/kakao", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "kakao_login"), s.KakaoLogin)
	auth.Post("/naver", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "naver_login"), s.NaverLogin)

	// Post routes: reads allow anonymous callers, writes require auth.
	posts := api.Group("/posts")
	posts.Get("/", s.OptionalAuth(), s.GetPosts)
	posts.Post("/", s.RequireAuth(), middleware.RateLimit(
		s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	posts.Get("/:postId/comments", s.OptionalAuth(), s.GetComments)
	posts.Post("/:postId/comments", s.RequireAuth(), middleware.RateLimit(
		s.redis, 20, time.Minute, "create_comment"), s.CreateComment)
	posts.Get("/:id", s.OptionalAuth(), s.GetPost)
	posts.Put("/:id", s.RequireAuth(), s.UpdatePost)
	posts.Delete("/:id", s.RequireAuth(), s.DeletePost)

	// Comment routes
	comments := api.Group("/comments", s.RequireAuth())
	comments.Put("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)

	// Profile routes
	profiles := api.Group("/profiles")
	profiles.Get("/me", s.RequireAuth(), s.GetMyProfile)
	profiles.Put("/me", s.RequireAuth(), s.UpdateMyProfile)
}

// HealthCheck is a simple liveness alias kept at the unversioned path.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return s.LivenessCheck(c)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now(),
		"service":   "moeum-api",
		"version":   "1.0.0",
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Redis is optional: view dedup and caching degrade without it.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Moeum API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok && e.Code < fiber.StatusInternalServerError {
				return c.Status(e.Code).JSON(models.Envelope{Success: false, Error: e.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, models.NewUpstreamError("Internal server error", err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
