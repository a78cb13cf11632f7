package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/studytrack/studytrack-api/api/swagger"
	"github.com/studytrack/studytrack-api/internal/handler"
	"github.com/studytrack/studytrack-api/internal/middleware"
	"github.com/studytrack/studytrack-api/internal/models"
	"github.com/studytrack/studytrack-api/internal/repository"
	"github.com/studytrack/studytrack-api/internal/service"
	"github.com/studytrack/studytrack-api/pkg/config"
	"github.com/studytrack/studytrack-api/pkg/kvstore"
	"github.com/studytrack/studytrack-api/pkg/logger"
	corsmiddleware "github.com/studytrack/studytrack-api/pkg/middleware/cors"
	reqidmiddleware "github.com/studytrack/studytrack-api/pkg/middleware/requestid"
	"github.com/studytrack/studytrack-api/pkg/storage"
)

// @title StudyTrack API
// @version 1.0.0
// @description Assignment tracking for students and teachers
// @BasePath /api/v1
// @schemes http

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

	metrics := service.NewMetricsService()

	store, err := kvstore.Open(cfg.Store.DataDir, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to open record store", "error", err)
	}
	store.SetObserver(metrics.ObserveStoreOperation)

	userRepo := repository.NewUserRepository(store)
	sessionRepo := repository.NewSessionRepository(store)
	assignmentRepo := repository.NewAssignmentRepository(store)
	gradeRepo := repository.NewGradeRepository(store)
	classRepo := repository.NewClassRepository(store)
	notificationRepo := repository.NewNotificationRepository(store)

	seeder := service.NewDemoSeeder(assignmentRepo, gradeRepo, notificationRepo, logr)
	authSvc := service.NewAuthService(userRepo, sessionRepo, seeder, nil, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
		SeedDemoData:      cfg.Seed.DemoData,
	})
	userSvc := service.NewUserService(userRepo, nil, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, notificationRepo, nil, nil, logr)
	gradeSvc := service.NewGradeService(gradeRepo, nil, logr)
	classSvc := service.NewClassService(classRepo, userRepo, notificationRepo, nil, logr)
	notificationSvc := service.NewNotificationService(notificationRepo, nil, logr)
	dashboardSvc := service.NewDashboardService(assignmentRepo, gradeRepo, nil, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		fileStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc = service.NewExportService(gradeRepo, assignmentRepo, fileStorage, signer, nil, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.SignedURLTTL,
		}, logr)
		go runExportCleanup(ctx, exportSvc, cfg.Exports.CleanupInterval, logr)
	}

	if cfg.Reminders.Enabled {
		reminderSvc := service.NewReminderService(userRepo, assignmentRepo, notificationRepo, nil, logr, service.ReminderConfig{
			Interval:   cfg.Reminders.Interval,
			WindowDays: cfg.Reminders.WindowDays,
		})
		reminderSvc.SetMetrics(metrics)
		reminderSvc.Start(ctx)
		defer reminderSvc.Stop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	metricsHandler := handler.NewMetricsHandler(metrics)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r, cfg, routeDeps{
		auth:          handler.NewAuthHandler(authSvc, userSvc),
		users:         handler.NewUserHandler(userSvc),
		assignments:   handler.NewAssignmentHandler(assignmentSvc),
		grades:        handler.NewGradeHandler(gradeSvc),
		classes:       handler.NewClassHandler(classSvc, userSvc),
		notifications: handler.NewNotificationHandler(notificationSvc),
		dashboard:     handler.NewDashboardHandler(dashboardSvc),
		exports:       exportHandlerOrNil(exportSvc, metrics),
		authService:   authSvc,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("server shutdown failed", "error", err)
	}
}

type routeDeps struct {
	auth          *handler.AuthHandler
	users         *handler.UserHandler
	assignments   *handler.AssignmentHandler
	grades        *handler.GradeHandler
	classes       *handler.ClassHandler
	notifications *handler.NotificationHandler
	dashboard     *handler.DashboardHandler
	exports       *handler.ExportHandler
	authService   *service.AuthService
}

func registerRoutes(r *gin.Engine, cfg *config.Config, deps routeDeps) {
	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/register", deps.auth.Register)
	api.POST("/auth/login", deps.auth.Login)

	if deps.exports != nil {
		// Token-authenticated: the signed URL is the credential.
		api.GET("/exports/download", deps.exports.Download)
	}

	authed := api.Group("")
	authed.Use(middleware.JWT(deps.authService))

	authed.POST("/auth/logout", deps.auth.Logout)
	authed.GET("/auth/me", deps.auth.Me)

	authed.PUT("/users/me", deps.users.UpdateProfile)
	authed.PUT("/users/me/settings", deps.users.UpdateSettings)

	assignments := authed.Group("/assignments")
	{
		assignments.GET("", deps.assignments.List)
		assignments.POST("", deps.assignments.Create)
		assignments.GET("/grouped", deps.assignments.Grouped)
		assignments.GET("/calendar", deps.assignments.Calendar)
		assignments.GET("/:id", deps.assignments.Get)
		assignments.PUT("/:id", deps.assignments.Update)
		assignments.PATCH("/:id/status", deps.assignments.UpdateStatus)
		assignments.PATCH("/:id/milestones/:milestoneId", deps.assignments.UpdateMilestoneStatus)
		assignments.DELETE("/:id", deps.assignments.Delete)
	}

	grades := authed.Group("/grades")
	{
		grades.GET("", deps.grades.List)
		grades.POST("", deps.grades.Create)
		grades.GET("/summary", deps.grades.Summary)
		grades.GET("/:id", deps.grades.Get)
		grades.PUT("/:id", deps.grades.Update)
		grades.DELETE("/:id", deps.grades.Delete)
	}

	teacherOnly := middleware.RequireRoles(models.RoleTeacher)
	classes := authed.Group("/classes")
	{
		classes.GET("", deps.classes.List)
		classes.GET("/:id", deps.classes.Get)
		classes.POST("", teacherOnly, deps.classes.Create)
		classes.PUT("/:id", teacherOnly, deps.classes.Update)
		classes.DELETE("/:id", teacherOnly, deps.classes.Delete)
		classes.POST("/:id/students", teacherOnly, deps.classes.AddStudent)
		classes.DELETE("/:id/students/:schoolId", teacherOnly, deps.classes.RemoveStudent)
	}

	notifications := authed.Group("/notifications")
	{
		notifications.GET("", deps.notifications.List)
		notifications.POST("", deps.notifications.Create)
		notifications.POST("/read-all", deps.notifications.MarkAllRead)
		notifications.PATCH("/:id/read", deps.notifications.MarkRead)
		notifications.DELETE("/:id", deps.notifications.Delete)
		notifications.DELETE("", deps.notifications.ClearAll)
	}

	authed.GET("/dashboard", deps.dashboard.Stats)

	if deps.exports != nil {
		authed.POST("/exports/:kind", deps.exports.Generate)
	}
}

func exportHandlerOrNil(svc *service.ExportService, metrics *service.MetricsService) *handler.ExportHandler {
	if svc == nil {
		return nil
	}
	return handler.NewExportHandler(svc, metrics)
}

func runExportCleanup(ctx context.Context, svc *service.ExportService, interval time.Duration, logr *zap.Logger) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := svc.Cleanup(0)
			if err != nil {
				logr.Sugar().Warnw("export cleanup failed", "error", err)
				continue
			}
			if len(removed) > 0 {
				logr.Sugar().Infow("cleaned up expired exports", "count", len(removed))
			}
		}
	}
}
