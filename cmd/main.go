package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/mentorloop-backend/internal/config"
	"github.com/yungbote/mentorloop-backend/internal/db"
	"github.com/yungbote/mentorloop-backend/internal/handlers"
	"github.com/yungbote/mentorloop-backend/internal/jobs"
	"github.com/yungbote/mentorloop-backend/internal/logger"
	"github.com/yungbote/mentorloop-backend/internal/middleware"
	"github.com/yungbote/mentorloop-backend/internal/observability"
	"github.com/yungbote/mentorloop-backend/internal/pipeline"
	"github.com/yungbote/mentorloop-backend/internal/pipeline/steps"
	"github.com/yungbote/mentorloop-backend/internal/repos"
	"github.com/yungbote/mentorloop-backend/internal/server"
	"github.com/yungbote/mentorloop-backend/internal/services"
	"github.com/yungbote/mentorloop-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	rulesPath := utils.GetEnv("RULES_PATH", "", log)

	// Tracing
	shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "mentorloop-backend",
		Environment: logMode,
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
	})
	defer func() {
		if shutdownOTel != nil {
			_ = shutdownOTel(context.Background())
		}
	}()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	conceptRepo := repos.NewConceptRepo(thePG, log)
	masteryRepo := repos.NewUserConceptMasteryRepo(thePG, log)
	reviewRepo := repos.NewReviewScheduleRepo(thePG, log)
	transcriptRepo := repos.NewTranscriptEntryRepo(thePG, log)
	gapRepo := repos.NewLearningGapRepo(thePG, log)
	opportunityRepo := repos.NewOpportunityRepo(thePG, log)
	jobRepo := repos.NewPipelineJobRepo(thePG, log)

	// Activity crediting rules
	var rules *config.Rules
	if rulesPath != "" {
		rules, err = config.Load(rulesPath, log)
		if err != nil {
			log.Warn("Could not load rules file, falling back to defaults", "path", rulesPath, "error", err)
			rules = config.Default()
		}
	} else {
		rules = config.Default()
	}

	// Services
	log.Info("Setting up Services from main...")
	openaiClient, err := services.NewOpenAIClient(log)
	if err != nil {
		log.Error("Could not init OpenAIClient", "error", err)
		os.Exit(1)
	}
	semanticCache, err := services.NewRedisSemanticCache(log, openaiClient)
	if err != nil {
		log.Warn("Could not init SemanticCache, responses will not be cached", "error", err)
		semanticCache = nil
	}
	documentSearch, err := services.NewPineconeDocumentSearch(log, openaiClient)
	if err != nil {
		log.Warn("Could not init DocumentSearch, investigations run without sources", "error", err)
		documentSearch = nil
	}
	speechProvider, err := services.NewSpeechProvider(log)
	if err != nil {
		log.Warn("Could not init SpeechProvider, voice notes disabled", "error", err)
		speechProvider = nil
	}
	visionProvider, err := services.NewVisionProvider(log)
	if err != nil {
		log.Warn("Could not init VisionProvider, image OCR disabled", "error", err)
		visionProvider = nil
	}
	masteryService := services.NewMasteryService(thePG, log, conceptRepo, masteryRepo, reviewRepo)
	conceptService := services.NewConceptService(thePG, log, conceptRepo)
	moderationService := services.NewModerationService(log)

	// Pipeline
	log.Info("Setting up pipeline from main...")
	router := pipeline.NewRouter(log, openaiClient)
	executor := pipeline.NewExecutor(log, router, steps.Deps{
		DB:            thePG,
		Log:           log,
		AI:            openaiClient,
		Docs:          documentSearch,
		Speech:        speechProvider,
		Vision:        visionProvider,
		Mastery:       masteryService,
		Rules:         rules,
		Concepts:      conceptRepo,
		Transcripts:   transcriptRepo,
		Gaps:          gapRepo,
		Opportunities: opportunityRepo,
	})

	// Jobs
	log.Info("Setting up job runner from main...")
	jobService := jobs.NewService(thePG, log, executor, jobRepo, userRepo, semanticCache, jobs.NewLogNotifier(log))
	worker := jobs.NewWorker(log, jobService)
	go worker.Start(context.Background())

	// Handlers
	log.Info("Setting up handlers from main...")
	chatHandler := handlers.NewChatHandler(log, executor, moderationService, semanticCache, userRepo)
	jobsHandler := handlers.NewJobsHandler(jobService, moderationService)
	masteryHandler := handlers.NewMasteryHandler(masteryService)
	conceptsHandler := handlers.NewConceptsHandler(conceptService)
	gapsHandler := handlers.NewGapsHandler(gapRepo)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, jwtSecretKey)

	// Router
	log.Info("Setting up router from main...")
	engine := server.NewRouter(server.RouterConfig{
		AuthMiddleware:  authMiddleware,
		ChatHandler:     chatHandler,
		JobsHandler:     jobsHandler,
		MasteryHandler:  masteryHandler,
		ConceptsHandler: conceptsHandler,
		GapsHandler:     gapsHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := engine.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
