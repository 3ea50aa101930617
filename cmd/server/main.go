package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PsyMetrics-KR/scoring-service/internal/cache"
	"github.com/PsyMetrics-KR/scoring-service/internal/config"
	"github.com/PsyMetrics-KR/scoring-service/internal/handlers"
	"github.com/PsyMetrics-KR/scoring-service/internal/models"
	"github.com/PsyMetrics-KR/scoring-service/internal/repositories/postgres"
	"github.com/PsyMetrics-KR/scoring-service/internal/services"
	"github.com/PsyMetrics-KR/scoring-service/internal/utils"
	"github.com/PsyMetrics-KR/scoring-service/internal/validator"
	"github.com/PsyMetrics-KR/scoring-service/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.LogError(err, "Failed to connect to database")
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&models.Test{},
		&models.Question{},
		&models.Option{},
		&models.TestQuestion{},
		&models.NormTable{},
		&models.ReportRule{},
		&models.Report{},
		&models.Response{},
		&models.UserProfile{},
		&models.QuestionGroupStat{},
		&models.TestGroupStat{},
	); err != nil {
		logger.LogError(err, "Failed to run migrations")
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.LogError(err, "Failed to connect to Redis")
		os.Exit(1)
	}
	defer redisClient.Close()

	publisher, err := cfg.Events.CreateEventPublisher(utils.ToSlogLogger(logger))
	if err != nil {
		logger.LogError(err, "Failed to create event publisher")
		os.Exit(1)
	}
	defer publisher.Close()

	repo := postgres.NewRepository(db)
	v := validator.New()
	cacheService := cache.NewRedisCache(redisClient, logger)
	cacheTTL := time.Duration(cfg.RuleCacheTTLSeconds) * time.Second

	ruleService := services.NewRuleService(repo, cacheService, publisher, logger, v, cacheTTL)
	normResolver := services.NewNormResolver(ruleService, logger)
	statsService := services.NewStatisticsService(repo, logger, cfg.StatsMaxRetries)
	scoringService := services.NewScoringService(
		repo, ruleService, normResolver, statsService, publisher, logger, v, cfg.ScoreScale)
	testService := services.NewTestService(repo, logger)
	reportService := services.NewReportService(repo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(
		testService, scoringService, reportService, ruleService, statsService, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting scoring service", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogError(err, "Server stopped unexpectedly")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.LogError(err, "Forced shutdown")
	}
}
