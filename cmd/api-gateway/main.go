package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/training-attendance-api/internal/handler"
	"github.com/noah-isme/training-attendance-api/internal/repository"
	"github.com/noah-isme/training-attendance-api/internal/service"
	"github.com/noah-isme/training-attendance-api/pkg/cache"
	"github.com/noah-isme/training-attendance-api/pkg/config"
	"github.com/noah-isme/training-attendance-api/pkg/database"
	"github.com/noah-isme/training-attendance-api/pkg/logger"
)

// @title Training Attendance API
// @version 1.0.0
// @description Attendance taking and daily academic logs for training courses
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	dailyLogRepo := repository.NewDailyLogRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, "training-attendance")

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Courses.CacheTTL, logr, cfg.Courses.CacheEnabled && redisClient != nil)
	authSvc := service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	courseSvc := service.NewCourseService(courseRepo, cacheSvc, cfg.Courses.CacheTTL, logr)
	sessionSvc := service.NewSessionService(service.SessionDeps{
		Roster:              studentRepo,
		Attendance:          attendanceRepo,
		DailyLogs:           dailyLogRepo,
		Metrics:             metrics,
		MaxConcurrentWrites: cfg.Sessions.MaxConcurrentWrites,
	}, validate, cfg.Sessions.DraftTTL, logr)
	historySvc := service.NewHistoryService(studentRepo, attendanceRepo, dailyLogRepo, cfg.Sessions.Location(), logr)

	checks := map[string]handler.ReadinessCheck{"postgres": db.PingContext}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	router := newRouter(cfg, logr, routerDeps{
		auth:     authSvc,
		metrics:  metrics,
		sessions: handler.NewSessionHandler(sessionSvc),
		history:  handler.NewHistoryHandler(historySvc),
		courses:  handler.NewCourseHandler(courseSvc),
		ops:      handler.NewMetricsHandler(metrics, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
