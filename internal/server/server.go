// Package server contains the HTTP handlers for the application's API
// endpoints.
package server

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"reclaimit/internal/cache"
	"reclaimit/internal/config"
	"reclaimit/internal/database"
	"reclaimit/internal/middleware"
	"reclaimit/internal/models"
	"reclaimit/internal/notifications"
	"reclaimit/internal/observability"
	"reclaimit/internal/repository"
	"reclaimit/internal/service"
	"reclaimit/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	tokenIssuer   = "reclaimit-api"
	tokenAudience = "reclaimit-client"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	itemRepo       repository.ItemRepository
	claimRepo      repository.ClaimRepository
	imageStore     storage.ImageStore
	itemService    *service.ItemService
	userService    *service.UserService
	claimService   *service.ClaimService
	adminService   *service.AdminService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	imageStore, err := storage.NewLocalImageStore(cfg)
	if err != nil {
		return nil, err
	}

	dispatcher := notifications.NewDispatcher(notifications.NewSMTPMailer(cfg))
	return newServerWith(cfg, db, cache.GetClient(), imageStore, dispatcher), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Used by tests and bootstrap layers that establish DB/Redis themselves.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, imageStore storage.ImageStore, notifier service.ClaimNotifier) *Server {
	return newServerWith(cfg, db, redisClient, imageStore, notifier)
}

func newServerWith(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, imageStore storage.ImageStore, notifier service.ClaimNotifier) *Server {
	userRepo := repository.NewUserRepository(db)
	itemRepo := repository.NewItemRepository(db)
	claimRepo := repository.NewClaimRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: observability.InitMetrics("reclaimit-api"),
		userRepo:       userRepo,
		itemRepo:       itemRepo,
		claimRepo:      claimRepo,
		imageStore:     imageStore,
	}
	s.itemService = service.NewItemService(itemRepo)
	s.userService = service.NewUserService(userRepo)
	s.claimService = service.NewClaimService(db, claimRepo, itemRepo, userRepo, notifier)
	s.adminService = service.NewAdminService(userRepo, itemRepo, claimRepo)
	return s
}

// Shutdown releases server resources. The Fiber app is shut down by the
// caller before this runs.
func (s *Server) Shutdown(_ context.Context) error {
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}
	return nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before middlewares that can short-circuit (e.g. limiter) so
	// browser clients still receive CORS headers on error responses.
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
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "ReClaimIt Metrics Dashboard",
	}))

	// Uploaded item images
	if store, ok := s.imageStore.(*storage.LocalImageStore); ok {
		app.Static("/uploads", store.Dir())
	}

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)

	// Category routes (public)
	categories := api.Group("/categories")
	categories.Get("/", s.GetCategories)
	categories.Get("/suggest", s.SuggestCategory)
	categories.Get("/stats", s.GetCategoryStats)

	// Public item routes. :kind is "lost" or "found".
	items := api.Group("/items/:kind")
	items.Get("/", s.ListItems)
	items.Get("/search", middleware.RateLimit(s.redis, 20, time.Minute, "search"), s.SearchItems)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	// Session routes
	session := protected.Group("/auth")
	session.Get("/verify", s.VerifyToken)
	session.Post("/refresh", s.RefreshToken)
	session.Post("/logout", s.Logout)

	// User routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Put("/me/password", s.ChangeMyPassword)

	// Item routes requiring a session. Specific paths before the generic
	// /:id routes.
	authedItems := protected.Group("/items/:kind")
	authedItems.Post("/", middleware.RateLimit(s.redis, 5, 5*time.Minute, "create_item"), s.CreateItem)
	authedItems.Get("/mine", s.GetMyItems)

	// Legacy direct claim flow on found items.
	foundItems := protected.Group("/items/found")
	foundItems.Post("/:id/claim", s.ClaimFoundItem)
	foundItems.Post("/:id/resolve", s.ResolveFoundItem)

	authedItems.Put("/:id", s.UpdateItem)
	authedItems.Delete("/:id", s.DeleteItem)
	items.Get("/:id", s.GetItem)

	// Claim routes
	claims := protected.Group("/claims")
	claims.Post("/", middleware.RateLimit(s.redis, 10, 5*time.Minute, "submit_claim"), s.SubmitClaim)
	claims.Get("/me", s.GetMyClaims)

	adminClaims := protected.Group("/claims", s.AdminRequired())
	adminClaims.Get("/", s.ListClaims)
	adminClaims.Post("/:id/approve", s.ApproveClaim)
	adminClaims.Post("/:id/decline", s.DeclineClaim)
	adminClaims.Delete("/:id", s.DeleteClaim)
	adminClaims.Get("/:id", s.GetClaim)

	// Admin moderation routes
	admin := protected.Group("/admin", s.AdminRequired())
	admin.Get("/stats", s.GetDashboardStats)
	admin.Get("/items", s.ListAllItems)
	admin.Delete("/items/:kind/:id", s.AdminDeleteItem)
	admin.Get("/users", s.ListUsers)
	admin.Get("/users/:id", s.GetUserDetail)
	admin.Patch("/users/:id/toggle-status", s.ToggleUserStatus)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional, so a
// missing cache degrades the report but not the status.
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
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"success": overallStatus == "healthy",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware. Besides validating
// the token it loads the account and rejects blocked users, so a block
// takes effect on the next request, not at the next login.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			return models.RespondWithStatusError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return models.RespondWithStatusError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithStatusError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}
		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != tokenIssuer {
			return models.RespondWithStatusError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token issuer"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != tokenAudience {
			return models.RespondWithStatusError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token audience"))
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithStatusError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid subject claim"))
		}
		userID64, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithStatusError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid subject claim"))
		}
		userID := uint(userID64)

		user, err := s.userRepo.GetByID(c.Context(), userID)
		if err != nil {
			return models.RespondWithStatusError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Account no longer exists"))
		}
		if user.IsBlocked() {
			return models.RespondWithStatusError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Your account has been blocked"))
		}

		c.Locals("userID", userID)
		c.Locals("userRole", user.Role)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// AdminRequired rejects non-admin users with 403. Must be placed after
// AuthRequired so that userRole is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("userRole").(models.UserRole)
		if role != models.RoleAdmin {
			return models.RespondWithStatusError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}
