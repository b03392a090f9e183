package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/services"
	_ "github.com/comitanigiacomo/kanso-fast-engine/internal/docs"
)

type RouterDependencies struct {
	AuthHandler        *AuthHandler
	SessionHandler     *SessionHandler
	StatsHandler       *StatsHandler
	AchievementHandler *AchievementHandler
	WellnessHandler    *WellnessHandler
	ProfileHandler     *ProfileHandler
	MeditationHandler  *MeditationHandler
	TokenService       *services.TokenService
	DB                 *sqlx.DB
	Redis              *redis.Client
	Logger             *zap.Logger
	CorsOrigins        []string
	RateLimit          int
	RateLimitWindow    time.Duration
	EnableDocs         bool
	StartTime          time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	RegisterValidators()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(cors.New(corsConfig(deps.CorsOrigins)))

	if deps.Redis != nil && deps.RateLimit > 0 {
		router.Use(middleware.RateLimiterMiddleware(deps.Redis, deps.RateLimit, deps.RateLimitWindow, log))
	}

	router.GET("/health", healthHandler(deps))

	if deps.EnableDocs {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiV1 := router.Group("/api/v1")

	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterRoutes(apiV1)
	}

	protected := apiV1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.TokenService))
	{
		for _, h := range []interface{ RegisterRoutes(*gin.RouterGroup) }{
			deps.SessionHandler,
			deps.StatsHandler,
			deps.AchievementHandler,
			deps.WellnessHandler,
			deps.ProfileHandler,
			deps.MeditationHandler,
		} {
			h.RegisterRoutes(protected)
		}
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

func healthHandler(deps RouterDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "connected"
		if deps.DB == nil || deps.DB.PingContext(c.Request.Context()) != nil {
			dbStatus = "unreachable"
		}

		redisStatus := "connected"
		if deps.Redis == nil {
			redisStatus = "disabled"
		} else if deps.Redis.Ping(c.Request.Context()).Err() != nil {
			redisStatus = "unreachable"
		}

		statusCode := http.StatusOK
		status := "ok"
		if dbStatus != "connected" {
			statusCode = http.StatusServiceUnavailable
			status = "error"
		} else if redisStatus == "unreachable" {
			status = "degraded"
		}

		c.JSON(statusCode, gin.H{
			"status":   status,
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	}
}
