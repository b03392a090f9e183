package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/kanso-fast-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-fast-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-fast-engine/internal/config"
	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/services"
	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/workers"
	"github.com/comitanigiacomo/kanso-fast-engine/internal/logger"
)

func main() {
	startTime := time.Now()

	cfg, err := config.Load()
	if err != nil {
		// Logger config depends on cfg, so this one goes to a bare production logger.
		zap.Must(zap.NewProduction()).Fatal("invalid configuration", zap.Error(err))
	}

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		zap.Must(zap.NewProduction()).Fatal("failed to build logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("connecting to database", zap.String("host", cfg.Database.Host), zap.String("name", cfg.Database.Name))

	db, err := sqlx.Connect("pgx", cfg.Database.DSN())
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	var rdb *redis.Client
	if client, err := cache.NewRedisClient(cfg.Redis); err != nil {
		log.Warn("redis unavailable, running without cache and rate limiting", zap.Error(err))
	} else {
		rdb = client
		defer rdb.Close()
	}

	userRepo := repository.NewPostgresUserRepository(db)
	settingsRepo := repository.NewPostgresSettingsRepository(db)
	waterRepo := repository.NewPostgresWaterRepository(db)
	moodRepo := repository.NewPostgresMoodRepository(db)
	profileRepo := repository.NewPostgresProfileRepository(db)
	achievementRepo := repository.NewPostgresAchievementRepository(db)

	var sessionRepo domain.SessionRepository = repository.NewPostgresSessionRepository(db)
	var deviceStore domain.DeviceStore
	if rdb != nil {
		sessionRepo = repository.NewCachedSessionRepository(sessionRepo, rdb, log)
		deviceStore = cache.NewRedisDeviceStore(rdb, log)
	} else {
		deviceStore = cache.NewMemoryDeviceStore()
	}

	clock := domain.SystemClock{}

	achievementService := services.NewAchievementService(sessionRepo, waterRepo, achievementRepo, settingsRepo, clock)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	achievementWorker := workers.NewAchievementWorker(achievementService, log)
	achievementWorker.Start(workerCtx)

	authService := services.NewAuthService(userRepo)
	tokenService := services.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL, userRepo)
	sessionService := services.NewSessionService(sessionRepo, clock, achievementWorker)
	statsService := services.NewStatsService(sessionRepo, settingsRepo, clock)
	waterService := services.NewWaterService(waterRepo, settingsRepo, clock, achievementWorker)
	moodService := services.NewMoodService(moodRepo, settingsRepo, clock)
	profileService := services.NewProfileService(profileRepo)
	settingsService := services.NewSettingsService(settingsRepo)
	meditationService := services.NewMeditationService(deviceStore, settingsRepo, clock)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:        adapterHTTP.NewAuthHandler(authService, tokenService),
		SessionHandler:     adapterHTTP.NewSessionHandler(sessionService, workers.NewProgressTicker(clock, workers.DefaultTickInterval)),
		StatsHandler:       adapterHTTP.NewStatsHandler(statsService),
		AchievementHandler: adapterHTTP.NewAchievementHandler(achievementService),
		WellnessHandler:    adapterHTTP.NewWellnessHandler(waterService, moodService),
		ProfileHandler:     adapterHTTP.NewProfileHandler(profileService, settingsService),
		MeditationHandler:  adapterHTTP.NewMeditationHandler(meditationService),
		TokenService:       tokenService,
		DB:                 db,
		Redis:              rdb,
		Logger:             log,
		CorsOrigins:        cfg.CorsOrigins,
		RateLimit:          cfg.RateLimit,
		RateLimitWindow:    cfg.RateLimitWindow,
		EnableDocs:         cfg.EnableDocs,
		StartTime:          startTime,
	})

	srv := newHTTPServer(":"+cfg.Port, router)

	go func() {
		log.Info("kanso fast engine listening", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("stop signal received, shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}

	stopWorkers()
	select {
	case <-achievementWorker.Done():
	case <-time.After(5 * time.Second):
		log.Warn("achievement worker did not stop in time")
	}

	log.Info("server stopped gracefully")
}
