package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sjlee-dev/vidbrief/cms"
	"github.com/sjlee-dev/vidbrief/config"
	"github.com/sjlee-dev/vidbrief/handlers/api"
	"github.com/sjlee-dev/vidbrief/httpclient"
	"github.com/sjlee-dev/vidbrief/logger"
	"github.com/sjlee-dev/vidbrief/repository/sqlite"
	"github.com/sjlee-dev/vidbrief/services/auth"
	"github.com/sjlee-dev/vidbrief/services/summary"
	"github.com/sjlee-dev/vidbrief/storage"
	"github.com/sjlee-dev/vidbrief/summarizer"
	"github.com/sjlee-dev/vidbrief/transcript"
	"github.com/sjlee-dev/vidbrief/validation"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.Init(cfg.LogDir, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Initialize transcript cache database
	db, err := sqlite.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	transcriptRepo, err := sqlite.NewTranscriptRepository(db)
	if err != nil {
		log.Fatalf("Failed to initialize transcript repository: %v", err)
	}

	// CMS client shared by auth and summary services
	cmsClient := cms.NewClient(cfg.CMS, httpclient.New())

	validator := validation.NewValidator()

	transcriptService := transcript.NewService(transcriptRepo, validator, transcript.Config{
		PrimaryLang:   cfg.Transcript.PrimaryLang,
		SecondaryLang: cfg.Transcript.SecondaryLang,
		FetchTimeout:  cfg.Transcript.FetchTimeout,
		UserAgent:     cfg.Transcript.UserAgent,
		BaseURL:       cfg.Transcript.InnertubeURL,
	})

	generator := summarizer.NewService(summarizer.Config{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		Timeout:     cfg.OpenAI.Timeout,
	})

	authService := auth.NewService(cmsClient)

	// Optional S3 summary archive
	var archiver summary.Archiver
	if cfg.Storage.Enabled {
		archiveClient, err := storage.NewArchiveClient(storage.ArchiveConfig{
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Region:    cfg.Storage.Region,
			Endpoint:  cfg.Storage.Endpoint,
			Bucket:    cfg.Storage.Bucket,
		})
		if err != nil {
			log.Fatalf("Failed to initialize summary archive: %v", err)
		}
		archiver = archiveClient
	}

	summaryService := summary.NewService(
		cmsClient,
		transcriptService,
		generator,
		authService,
		archiver,
		summary.Config{
			Model:    cfg.OpenAI.Model,
			PageSize: cfg.CMS.PageSize,
		},
	)

	server := api.NewServer(cfg,
		api.WithLogger(appLogger),
		api.WithServices(authService, summaryService, transcriptService, generator, cmsClient),
	)

	// Run until interrupted, then drain in-flight requests
	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		appLogger.WithError(err).Fatal("Server failed")
	case sig := <-quit:
		appLogger.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.WithError(err).Error("Graceful shutdown failed")
	}
}
