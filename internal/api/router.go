package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/inkwellhq/inkwell/internal/api/handler"
	"github.com/inkwellhq/inkwell/internal/api/middleware"
	"github.com/inkwellhq/inkwell/internal/core/domain"
	"github.com/inkwellhq/inkwell/internal/core/ports"
	"github.com/inkwellhq/inkwell/internal/core/service"
	"github.com/inkwellhq/inkwell/internal/core/token"
	mongodb "github.com/inkwellhq/inkwell/internal/infrastructure/db/mongo"
	redisdb "github.com/inkwellhq/inkwell/internal/infrastructure/db/redis"
	healthhandlers "github.com/inkwellhq/inkwell/internal/infrastructure/http/handlers"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(
	db *mongo.Database,
	rdb *redis.Client,
	mail ports.MailDispatcher,
	codec *token.Codec,
	appURL string,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	postRepo := mongodb.NewPostRepository(db)
	throttle := redisdb.NewLoginThrottle(rdb)

	authService := service.NewAuthService(userRepo, codec, mail, throttle, appURL, log)
	userService := service.NewUserService(userRepo)
	postService := service.NewPostService(postRepo)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	postHandler := handler.NewPostHandler(postService)
	activateHandler := handler.NewActivateHandler(authService)

	requireAuth := middleware.Auth(codec, authService)
	requireAdmin := middleware.RequireRole(domain.RoleAdmin)

	// --- Public auth routes ---
	e.POST("/api/register", authHandler.Register)
	e.POST("/api/login", authHandler.Login)
	e.POST("/api/refresh", authHandler.Refresh)
	e.POST("/api/two-factor", authHandler.TwoFactor)
	e.GET("/activate", activateHandler.Activate)

	// --- Authenticated routes ---
	e.POST("/api/change-password", authHandler.ChangePassword, requireAuth)
	e.PATCH("/api/users/language", userHandler.SetLanguage, requireAuth)
	e.POST("/api/posts", postHandler.CreatePost, requireAuth)
	e.GET("/api/posts", postHandler.ListPosts, requireAuth)

	// --- Admin routes ---
	e.GET("/api/admin/users", userHandler.ListUsers, requireAuth, requireAdmin)
	e.PATCH("/api/admin/users", userHandler.UpdateAccess, requireAuth, requireAdmin)

	// --- Health probes (no auth required) ---
	healthHandler := healthhandlers.NewHealthHandler()
	healthDepsHandler := healthhandlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e
}
