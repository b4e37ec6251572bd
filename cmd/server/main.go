package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/nexlearn/campus-rewards/internal/auth"
	"github.com/nexlearn/campus-rewards/internal/cache"
	"github.com/nexlearn/campus-rewards/internal/config"
	"github.com/nexlearn/campus-rewards/internal/events"
	"github.com/nexlearn/campus-rewards/internal/handlers"
	"github.com/nexlearn/campus-rewards/internal/models"
	"github.com/nexlearn/campus-rewards/internal/repositories/postgres"
	"github.com/nexlearn/campus-rewards/internal/services"
	"github.com/nexlearn/campus-rewards/internal/utils"
	"github.com/nexlearn/campus-rewards/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.StudentProfile{},
		&models.TeacherProfile{},
		&models.Class{},
		&models.Task{},
		&models.TaskSubmission{},
		&models.VoucherLevel{},
		&models.Redemption{},
		&models.PointHistory{},
		&models.Notification{},
	); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Redis is optional; without it the service runs with an uncached
	// ranking path.
	var cacheService cache.CacheService = cache.NoopCache{}
	if redisClient, err := pkg.NewRedisClient(cfg); err != nil {
		logger.Warn("Redis unavailable, running without cache", "error", err)
	} else {
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient, slogger)
	}

	// Without brokers the publisher captures events in memory; useful for
	// local runs.
	var publisher events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := events.NewKafkaPublisher(events.PublisherConfig{
			KafkaBrokers: cfg.KafkaBrokers,
			TopicName:    cfg.KafkaTopic,
			Logger:       slogger,
		})
		if err != nil {
			logger.Error("Failed to create Kafka publisher", "error", err)
			os.Exit(1)
		}
		publisher = kafkaPublisher
	} else {
		logger.Warn("No Kafka brokers configured, events stay in memory")
		publisher = events.NewMockPublisher(slogger)
	}
	defer publisher.Close()

	repo := postgres.New(db)
	validator := utils.NewValidator()
	serviceManager := services.NewServiceManager(repo, slogger, validator, publisher, cacheService)
	authenticator := auth.NewAuthenticator(cfg, repo, logger)
	handlerManager := handlers.NewHandlerManager(serviceManager, authenticator, validator, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))
	handlerManager.SetupRoutes(router)

	logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
