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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/courseops/scheduling-api/api/swagger"
	"github.com/courseops/scheduling-api/internal/handler"
	"github.com/courseops/scheduling-api/internal/middleware"
	"github.com/courseops/scheduling-api/internal/notifier"
	"github.com/courseops/scheduling-api/internal/repository"
	"github.com/courseops/scheduling-api/internal/service"
	"github.com/courseops/scheduling-api/pkg/cache"
	"github.com/courseops/scheduling-api/pkg/config"
	"github.com/courseops/scheduling-api/pkg/database"
	"github.com/courseops/scheduling-api/pkg/logger"
	corsmiddleware "github.com/courseops/scheduling-api/pkg/middleware/cors"
	reqidmiddleware "github.com/courseops/scheduling-api/pkg/middleware/requestid"
)

// @title Course Scheduling API
// @version 1.0.0
// @description Course request lifecycle and instructor scheduling engine
// @BasePath /
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	scheduleCache := repository.NewScheduleCache(nil, cfg.Cache.ScheduleTTL, logr)
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
		scheduleCache = repository.NewScheduleCache(redisClient, cfg.Cache.ScheduleTTL, logr)
	}

	requestRepo := repository.NewCourseRequestRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	classRepo := repository.NewClassEntryRepository(db)
	directoryRepo := repository.NewDirectoryRepository(db)
	atomic := repository.NewAtomic(db)

	metricsSvc := service.NewMetricsService()

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sinks []notifier.Notifier
	if cfg.Notifier.WebhookURL != "" {
		sinks = append(sinks, notifier.NewWebhookNotifier(cfg.Notifier.WebhookURL, cfg.Notifier.WebhookTimeout))
	}
	sinks = append(sinks, notifier.NewLogNotifier(logr))

	dispatcher := notifier.NewDispatcher(cfg.Notifier, sinks, directoryRepo, metricsSvc, logr)
	if cfg.Notifier.Enabled {
		dispatcher.Start(rootCtx)
		defer dispatcher.Stop()
	}

	validate := validator.New()

	schedulingSvc := service.NewSchedulingService(
		requestRepo,
		availabilityRepo,
		classRepo,
		atomic,
		dispatcher,
		scheduleCache,
		metricsSvc,
		validate,
		logr,
	)
	availabilitySvc := service.NewAvailabilityService(
		availabilityRepo,
		classRepo,
		requestRepo,
		directoryRepo,
		atomic,
		scheduleCache,
		logr,
	)

	schedulingHandler := handler.NewSchedulingHandler(schedulingSvc)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	auth := middleware.BearerAuth(cfg.Auth.Secret)

	requests := api.Group("/requests")
	{
		requests.GET("", schedulingHandler.List)
		requests.GET("/:id", schedulingHandler.Get)
		requests.POST("", auth, schedulingHandler.Submit)
		requests.POST("/:id/assign", auth, schedulingHandler.Assign)
		requests.POST("/:id/reschedule", auth, schedulingHandler.Reschedule)
		requests.POST("/:id/cancel", auth, schedulingHandler.Cancel)
		requests.POST("/:id/complete", auth, schedulingHandler.Complete)
		requests.POST("/:id/archive", auth, schedulingHandler.Archive)
	}

	instructors := api.Group("/instructors")
	{
		instructors.GET("/:id/availability", availabilityHandler.List)
		instructors.GET("/:id/schedule", availabilityHandler.Schedule)
		instructors.PUT("/:id/availability", auth, availabilityHandler.MarkAvailable)
		instructors.DELETE("/:id/availability/:date", auth, availabilityHandler.Remove)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
