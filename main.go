package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	v1 "github.com/taskdesk/api/v1"
	"github.com/taskdesk/config"
	"github.com/taskdesk/database"
	"github.com/taskdesk/logger"
	"github.com/taskdesk/middleware"
	"github.com/taskdesk/notifications"
	"github.com/taskdesk/scheduler"
	"github.com/taskdesk/services"
	"github.com/taskdesk/storage"
	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	zlog, err := logger.NewZapLogger(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	db, err := database.Initialize(cfg.DatabaseURL, zlog)
	if err != nil {
		zlog.Fatal("Failed to initialize database", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	media, err := storage.New(ctx, cfg)
	if err != nil {
		zlog.Fatal("Failed to initialize media storage", zap.Error(err))
	}

	var notifier services.Notifier = services.LogNotifier{Log: zlog}
	var dispatcher *notifications.Dispatcher
	if cfg.MailEnabled {
		dispatcher = notifications.NewDispatcher(notifications.NewMailer(cfg.SMTP), zlog, cfg.MailQueueSize)
		dispatcher.Start(ctx)
		notifier = dispatcher
	}

	authService := services.NewAuthService(db, cfg.JWTSecret, cfg.JWTTTL, zlog)
	if err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		zlog.Fatal("Failed to create bootstrap admin", zap.Error(err))
	}

	dueDates := services.NewDueDateService(db, notifier, zlog, cfg.DueSoonDays)

	jobs := scheduler.NewScheduler(zlog)
	if err := jobs.Add(scheduler.Job{
		Name:     "expire-overdue-projects",
		Interval: cfg.SweepInterval,
		Run: func(ctx context.Context) error {
			_, err := dueDates.ExpireOverdue(ctx)
			return err
		},
	}); err != nil {
		zlog.Fatal("Failed to schedule job", zap.Error(err))
	}
	if err := jobs.Add(scheduler.Job{
		Name:     "due-soon-reminders",
		Interval: cfg.ReminderInterval,
		Run: func(ctx context.Context) error {
			_, err := dueDates.RemindDueSoon(ctx)
			return err
		},
	}); err != nil {
		zlog.Fatal("Failed to schedule job", zap.Error(err))
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(zlog))

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	} else {
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	}
	router.Use(cors.New(corsConfig))

	v1.RegisterRoutes(router.Group("/api/v1"), v1.Dependencies{
		DB:         db,
		Auth:       authService,
		Projects:   services.NewProjectService(db, notifier, media, zlog),
		Tasks:      services.NewTaskService(db, notifier, zlog),
		Images:     services.NewImageService(db, media, zlog),
		Activities: services.NewActivityService(db),
		Log:        zlog,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		zlog.Info("Taskdesk API starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zlog.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	jobs.Stop()
	if dispatcher != nil {
		dispatcher.Stop()
	}
	cancel()

	zlog.Info("Server stopped")
}
