package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"tenderpack-backend/config"
	"tenderpack-backend/exporter"
	"tenderpack-backend/handlers"
	"tenderpack-backend/library"
	"tenderpack-backend/logging"
	"tenderpack-backend/repository"
	"tenderpack-backend/service"
	"tenderpack-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database connections
	db, err := initPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to initialize Postgres", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Postgres connection established")

	// Initialize storage
	fileStorage, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	logger.Info("Storage initialized", zap.String("type", string(cfg.Storage.Type)))

	lib, err := library.LoadFile(cfg.LibraryPath)
	if err != nil {
		logger.Fatal("Failed to load annexure library", zap.Error(err))
	}
	logger.Info("Annexure library loaded",
		zap.String("version", lib.Version),
		zap.Int("annexures", len(lib.Annexures)))

	// Initialize repositories
	packRepo := repository.NewPackRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	vaultRepo := repository.NewVaultRepository(db)

	// Annexure detection is optional
	var detector service.AnnexureDetector
	if cfg.DetectionEnabled() {
		client, err := initGemini(cfg.GeminiAPIKey)
		if err != nil {
			logger.Fatal("Failed to initialize Gemini", zap.Error(err))
		}
		defer client.Close()
		detector = service.NewGeminiDetector(client,
			service.DetectorWithModel(cfg.GeminiModel),
			service.DetectorWithLogger(logger))
		logger.Info("Gemini client initialized", zap.String("model", cfg.GeminiModel))
	} else {
		logger.Warn("GEMINI_API_KEY not set, annexure detection disabled")
	}

	// Initialize services
	exp := exporter.New(fileStorage,
		exporter.WithTempDir(cfg.ExportTempDir),
		exporter.WithLogger(logger))
	packService := service.NewPackService(
		service.WithPackStore(packRepo),
		service.WithProfileStore(profileRepo),
		service.WithTemplateStore(templateRepo),
		service.WithVaultStore(vaultRepo),
		service.WithStorage(fileStorage),
		service.WithExporter(exp),
		service.WithDetector(detector),
		service.WithLibrary(lib),
		service.WithLogger(logger),
	)
	templateService := service.NewTemplateService(
		service.TemplateWithStore(templateRepo),
		service.TemplateWithProfileStore(profileRepo),
		service.TemplateWithPackStore(packRepo),
		service.TemplateWithLibrary(lib),
		service.TemplateWithLogger(logger),
	)
	vaultService := service.NewVaultService(vaultRepo, fileStorage, logger)
	profileService := service.NewProfileService(profileRepo)

	// Setup Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		if err := db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"detection": cfg.DetectionEnabled(),
		})
	})

	// API routes
	handlers.RegisterRoutes(r.Group("/api"),
		handlers.NewPackHandler(packService, logger),
		handlers.NewTemplateHandler(templateService),
		handlers.NewVaultHandler(vaultService, profileService),
	)

	// Start server
	logger.Info("Server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func initPostgres(connString string) (*pgxpool.Pool, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

func initGemini(apiKey string) (*genai.Client, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return client, nil
}
