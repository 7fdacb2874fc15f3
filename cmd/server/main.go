package main

import (
	"errors"
	"log"

	"obit_pipeline_go/config"
	"obit_pipeline_go/db"
	"obit_pipeline_go/handlers"
	"obit_pipeline_go/models"
	"obit_pipeline_go/services"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg.DBPath, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations for owned entities. Cases are read-only to this app
	// but migrated here so a fresh install works end to end.
	if err := db.AutoMigrate(&models.Case{}, &models.Contact{}, &models.Relationship{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// The engine refuses to build against a store missing the pipeline
	// columns. Surface the migration SQL so operators can fix it.
	engine, err := services.NewPipelineEngine(db.DB)
	if err != nil {
		var schemaErr *services.SchemaError
		if errors.As(err, &schemaErr) {
			log.Printf("Pipeline schema not ready: %v", schemaErr)
			log.Fatalf("Apply the migration and restart:\n%s", services.PipelineMigrationSQL)
		}
		log.Fatalf("Failed to build pipeline engine: %v", err)
	}
	handlers.Engine = engine

	// Initialize document storage (R2 or local fallback)
	services.InitializeStorage(cfg)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
	}))

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// Pipeline board
	e.GET("/api/pipeline/counts", handlers.GetStageCountsHandler)
	e.GET("/api/pipeline/:stage", handlers.GetPipelineCardsHandler)

	// Contacts
	e.GET("/api/contacts/:id", handlers.GetContactDetailHandler)
	e.PUT("/api/contacts/:id/stage", handlers.MoveContactStageHandler)
	e.PUT("/api/contacts/:id/notes", handlers.UpdateContactNotesHandler)

	// Cases
	e.GET("/api/cases", handlers.GetCasesHandler)
	e.GET("/api/cases/:id/summary.pdf", handlers.GetCaseSummaryPDFHandler)
	e.GET("/api/cases/:id/documents", handlers.ListCaseDocumentsHandler)
	e.POST("/api/cases/:id/documents", handlers.UploadCaseDocumentHandler)
	e.GET("/api/cases/:id/documents/:name", handlers.DownloadCaseDocumentHandler)
	e.DELETE("/api/cases/:id/documents/:name", handlers.DeleteCaseDocumentHandler)

	// Reports
	e.GET("/api/export/pipeline.xlsx", handlers.ExportPipelineHandler)

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
