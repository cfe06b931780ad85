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
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ravgen/rav-api/api/swagger"
	"github.com/ravgen/rav-api/internal/ai"
	"github.com/ravgen/rav-api/internal/handler"
	"github.com/ravgen/rav-api/internal/middleware"
	"github.com/ravgen/rav-api/internal/repository"
	"github.com/ravgen/rav-api/internal/service"
	"github.com/ravgen/rav-api/pkg/cache"
	"github.com/ravgen/rav-api/pkg/config"
	"github.com/ravgen/rav-api/pkg/database"
	"github.com/ravgen/rav-api/pkg/jobs"
	"github.com/ravgen/rav-api/pkg/logger"
	corsmiddleware "github.com/ravgen/rav-api/pkg/middleware/cors"
	reqidmiddleware "github.com/ravgen/rav-api/pkg/middleware/requestid"
	"github.com/ravgen/rav-api/pkg/storage"
)

// @title RAV API
// @version 0.1.0
// @description Automated student evaluation reports (RAV) for teachers
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("redis connection failed", "error", err)
		}
		defer redisClient.Close() //nolint:errcheck
	}

	documents, err := storage.NewBucket(cfg.Storage.DocumentsDir)
	if err != nil {
		logr.Sugar().Fatalw("documents bucket init failed", "error", err)
	}
	reports, err := storage.NewBucket(cfg.Storage.ReportsDir)
	if err != nil {
		logr.Sugar().Fatalw("reports bucket init failed", "error", err)
	}
	templates, err := storage.NewBucket(cfg.Storage.TemplatesDir)
	if err != nil {
		logr.Sugar().Fatalw("templates bucket init failed", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL)

	aiClient := ai.New(cfg.AI)

	metricsSvc := service.NewMetricsService()
	metricsSvc.RegisterDBStats(db.DB, "rav")
	aiClient.SetObserver(metricsSvc.ObserveModelRequest)

	studentRepo := repository.NewStudentRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	fixedQuestionRepo := repository.NewFixedQuestionRepository(db)
	configurationRepo := repository.NewConfigurationRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	logRepo := repository.NewLogRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	authSvc := service.NewAuthService(cfg.JWT)
	configurationSvc := service.NewConfigurationService(configurationRepo, cacheRepo, cfg.Cache.TTL, logr)
	templateSvc := service.NewTemplateService(templateRepo, templates, logr)
	fixedQuestionSvc := service.NewFixedQuestionService(fixedQuestionRepo, nil)
	logSvc := service.NewLogService(logRepo, studentRepo)
	studentSvc := service.NewStudentService(studentRepo, questionRepo, answerRepo, logRepo, documents, reports, service.StudentServiceConfig{
		MaxFileSizeBytes:  cfg.Uploads.MaxFileSizeBytes,
		AllowedExtensions: cfg.Uploads.AllowedExtensions,
	}, logr)

	extractionSvc := service.NewExtractionService(studentRepo, documents, logr)
	questionSvc := service.NewQuestionService(studentRepo, questionRepo, answerRepo, fixedQuestionRepo, aiClient, cfg.AI.Model, logr)
	narrativeSvc := service.NewNarrativeService(studentRepo, answerRepo, aiClient, logr)
	renderSvc := service.NewRenderService(studentRepo, configurationSvc, templateSvc, reports, logr)

	// The autosave queue and the answer service reference each other, so
	// the queue handler resolves the service lazily.
	var answerSvc *service.AnswerService
	autosaveQueue := jobs.NewQueue("autosave", func(ctx context.Context, job jobs.Job) error {
		return answerSvc.HandleAutosaveJob(ctx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Autosave.Workers,
		BufferSize: cfg.Autosave.BufferSize,
		Logger:     logr,
	})
	answerSvc = service.NewAnswerService(studentRepo, questionRepo, answerRepo, autosaveQueue, logr)
	autosaveQueue.Start(ctx)
	defer autosaveQueue.Stop()

	evaluationSvc := service.NewEvaluationService(
		studentRepo,
		questionRepo,
		answerRepo,
		logRepo,
		extractionSvc,
		questionSvc,
		answerSvc,
		narrativeSvc,
		renderSvc,
		configurationSvc,
		metricsSvc,
		logr,
	)

	studentHandler := handler.NewStudentHandler(studentSvc)
	evaluationHandler := handler.NewEvaluationHandler(evaluationSvc, reports, signer)
	configurationHandler := handler.NewConfigurationHandler(configurationSvc)
	fixedQuestionHandler := handler.NewFixedQuestionHandler(fixedQuestionSvc)
	templateHandler := handler.NewTemplateHandler(templateSvc)
	logHandler := handler.NewLogHandler(logSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// Downloads authenticate through the signed token in the URL, not a
	// bearer header, so the route sits outside the JWT group.
	api.GET("/students/:id/evaluation/download", evaluationHandler.Download)

	authorized := api.Group("", middleware.JWT(authSvc))
	{
		students := authorized.Group("/students")
		{
			students.POST("/upload", studentHandler.Upload)
			students.GET("", studentHandler.List)
			students.GET("/summary", studentHandler.Summary)
			students.GET("/:id", studentHandler.Get)
			students.PATCH("/:id", studentHandler.Update)
			students.DELETE("/:id", studentHandler.Delete)

			students.GET("/:id/logs", logHandler.List)
			students.DELETE("/:id/logs", logHandler.Clear)

			evaluation := students.Group("/:id/evaluation")
			{
				evaluation.POST("/start", evaluationHandler.Start)
				evaluation.POST("/continue", evaluationHandler.Continue)
				evaluation.POST("/reset", evaluationHandler.Reset)
				evaluation.GET("/questions", evaluationHandler.Questions)
				evaluation.POST("/answers/autosave", evaluationHandler.Autosave)
				evaluation.POST("/answers", evaluationHandler.Submit)
				evaluation.POST("/narrative", evaluationHandler.Narrative)
				evaluation.POST("/render", evaluationHandler.Render)
				evaluation.GET("/preview", evaluationHandler.Preview)
			}
		}

		authorized.GET("/configuration", configurationHandler.Get)
		authorized.PUT("/configuration", configurationHandler.Upsert)

		authorized.GET("/fixed-questions", fixedQuestionHandler.List)
		authorized.POST("/fixed-questions", fixedQuestionHandler.Create)
		authorized.PATCH("/fixed-questions/:id", fixedQuestionHandler.Update)
		authorized.DELETE("/fixed-questions/:id", fixedQuestionHandler.Delete)

		authorized.GET("/templates", templateHandler.List)
		authorized.POST("/templates", templateHandler.Upload)
		authorized.DELETE("/templates/:id", templateHandler.Delete)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}
