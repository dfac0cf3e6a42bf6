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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/coursekit/quiz-authoring-service/internal/cache"
	"github.com/coursekit/quiz-authoring-service/internal/client"
	"github.com/coursekit/quiz-authoring-service/internal/config"
	"github.com/coursekit/quiz-authoring-service/internal/events"
	"github.com/coursekit/quiz-authoring-service/internal/handlers"
	"github.com/coursekit/quiz-authoring-service/internal/metrics"
	"github.com/coursekit/quiz-authoring-service/internal/services"
	"github.com/coursekit/quiz-authoring-service/internal/utils"
	"github.com/coursekit/quiz-authoring-service/internal/validator"
	"github.com/coursekit/quiz-authoring-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger = utils.NewDevelopmentLogger()
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	publisher, err := events.NewKafkaEventPublisher(events.PublisherConfig{
		KafkaBrokers: cfg.KafkaBrokers,
		TopicName:    cfg.KafkaTopic,
		Logger:       utils.ToSlogLogger(logger),
	})
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(registry)

	platform := client.NewHTTPClient(cfg.CourseAPIURL, cfg.CourseAPITimeout, logger)
	pipeline := services.NewPersistencePipeline(platform, logger, m, cfg.CourseAPITimeout)

	editorService := services.NewEditorService(
		platform,
		pipeline,
		validator.New(),
		publisher,
		cache.NewRedisCache(redisClient, logger),
		cfg.QuizCacheTTL,
		logger,
		m,
	)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(editorService, logger)
	handlerManager.SetupRoutes(router, registry)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting quiz authoring service", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
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
		logger.Error("Forced shutdown", "error", err)
	}
}
