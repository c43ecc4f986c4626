package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/training-attendance-api/api/swagger"
	"github.com/noah-isme/training-attendance-api/internal/handler"
	"github.com/noah-isme/training-attendance-api/internal/middleware"
	"github.com/noah-isme/training-attendance-api/internal/models"
	"github.com/noah-isme/training-attendance-api/internal/service"
	"github.com/noah-isme/training-attendance-api/pkg/config"
	"github.com/noah-isme/training-attendance-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/training-attendance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/training-attendance-api/pkg/middleware/requestid"
)

type routerDeps struct {
	auth     middleware.TokenValidator
	metrics  *service.MetricsService
	sessions *handler.SessionHandler
	history  *handler.HistoryHandler
	courses  *handler.CourseHandler
	ops      *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", deps.ops.Health)
	r.GET("/ready", deps.ops.Ready)
	r.GET("/metrics", deps.ops.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTrainer)

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(deps.auth))

	api.GET("/courses", staff, deps.courses.List)

	sessions := api.Group("/sessions", staff)
	sessions.POST("", deps.sessions.Open)
	sessions.GET("/:id", deps.sessions.Get)
	sessions.PUT("/:id/selection", deps.sessions.Select)
	sessions.PATCH("/:id/students/:studentId", deps.sessions.UpdateStatus)
	sessions.PUT("/:id/notes", deps.sessions.SetNotes)
	sessions.POST("/:id/save", middleware.Audit(logr, "save", "attendance_session"), deps.sessions.Save)
	sessions.DELETE("/:id", middleware.Audit(logr, "discard", "attendance_session"), deps.sessions.Discard)

	api.GET("/students/:id/history",
		middleware.RBAC(string(models.RoleAdmin), string(models.RoleTrainer), middleware.Self),
		deps.history.Student,
	)
	api.GET("/me/history", middleware.RequireRoles(models.RoleStudent), deps.history.Me)

	return r
}
