package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/solvio/solvio-api/internal/config"
	"github.com/solvio/solvio-api/internal/database"
	"github.com/solvio/solvio-api/internal/handler"
	"github.com/solvio/solvio-api/internal/middleware"
	"github.com/solvio/solvio-api/internal/models"
	"github.com/solvio/solvio-api/internal/repository"
	"github.com/solvio/solvio-api/internal/router"
	"github.com/solvio/solvio-api/internal/service"
	"github.com/solvio/solvio-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Classroom{}, &models.Assignment{}, &models.Question{}, &models.Progress{}, &models.Submission{}, &models.Problem{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured, report caching disabled")
	}

	var events service.EventPublisher
	if cfg.NATSURL != "" {
		natsConn, err := database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
		events = service.NewNATSEventPublisher(natsConn, "", logger)
	} else {
		logger.Warn().Msg("nats url not configured, completion events disabled")
	}

	generator, err := ai.NewOpenAIGenerator(ai.OpenAIConfig{
		APIKey:    cfg.OpenAIAPIKey,
		Model:     cfg.OpenAIModel,
		MaxTokens: cfg.AIMaxTokens,
		Timeout:   cfg.AITimeout,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("failed to create feedback generator: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	classroomRepo := repository.NewClassroomRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	problemRepo := repository.NewProblemRepository(db)

	classroomService := service.NewClassroomService(classroomRepo, assignmentRepo, progressRepo, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, classroomRepo, progressRepo, validate, logger)
	progressService := service.NewProgressService(progressRepo, assignmentRepo, generator, events, validate, logger)
	reportService := service.NewReportService(progressRepo, assignmentRepo, generator, redisClient, cfg.ReportCacheTTL, logger)
	problemService := service.NewProblemService(problemRepo, logger)

	classroomHandler := handler.NewClassroomHandler(classroomService, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, logger)
	progressHandler := handler.NewProgressHandler(progressService, logger)
	reportHandler := handler.NewReportHandler(reportService, logger)
	problemHandler := handler.NewProblemHandler(problemService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ClassroomHandler:  classroomHandler,
		AssignmentHandler: assignmentHandler,
		ProgressHandler:   progressHandler,
		ReportHandler:     reportHandler,
		ProblemHandler:    problemHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
