package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/salatech/promotion-service/internal/config"
	"github.com/salatech/promotion-service/internal/handler"
	"github.com/salatech/promotion-service/internal/middleware"
	"github.com/salatech/promotion-service/internal/model"
	"github.com/salatech/promotion-service/internal/response"
	"github.com/salatech/promotion-service/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Year      *handler.AcademicYearHandler
	Promotion *handler.PromotionHandler
	WS        *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)
		auth.GET("/me", middleware.RequireAdminJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. School Group (JWT + Tenant Scope + RBAC) ───────────────────
	schoolAPI := router.Group("/api/v1/schools/:school_id")
	schoolAPI.Use(
		middleware.RequireAdminJWT(authService),
		middleware.RequireSchoolScope(),
	)
	{
		schoolAPI.GET("/academic-years",
			middleware.RequirePermission(model.PermissionYearsRead),
			handlers.Year.List,
		)
		schoolAPI.GET("/academic-years/:year_id",
			middleware.RequirePermission(model.PermissionYearsRead),
			handlers.Year.Get,
		)

		// Promotion wizard
		schoolAPI.GET("/academic-years/:year_id/promotion/eligible-students",
			middleware.RequirePermission(model.PermissionPromotionRead),
			handlers.Promotion.EligibleStudents,
		)
		schoolAPI.GET("/academic-years/:year_id/promotion/preview",
			middleware.RequirePermission(model.PermissionPromotionRead),
			handlers.Promotion.Preview,
		)
		schoolAPI.POST("/academic-years/:year_id/promotion/execute",
			middleware.RequirePermission(model.PermissionPromotionExecute),
			handlers.Promotion.Execute,
		)
		schoolAPI.POST("/academic-years/:year_id/promotion/undo",
			middleware.RequirePermission(model.PermissionPromotionUndo),
			handlers.Promotion.Undo,
		)
		schoolAPI.GET("/academic-years/:year_id/promotion/report",
			middleware.RequirePermission(model.PermissionPromotionRead),
			handlers.Promotion.Report,
		)

		schoolAPI.GET("/students/:student_id/progression",
			middleware.RequirePermission(model.PermissionPromotionRead),
			handlers.Promotion.StudentProgression,
		)
	}

	// ─── 3. WebSocket Group (JWT via query token) ──────────────────────
	ws := router.Group("/ws/v1/schools/:school_id")
	ws.Use(
		middleware.RequireAdminJWT(authService),
		middleware.RequireSchoolScope(),
	)
	{
		ws.GET("/promotion/:year_id/stream", handlers.WS.PromotionStream)
	}

	return router
}
