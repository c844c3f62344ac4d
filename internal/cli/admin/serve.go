package admin

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/biomente/biomente/internal/ai"
	"github.com/biomente/biomente/internal/api/handlers"
	"github.com/biomente/biomente/internal/config"
	"github.com/biomente/biomente/internal/extract"
	"github.com/biomente/biomente/internal/jobs"
	"github.com/biomente/biomente/internal/repository"
	"github.com/biomente/biomente/internal/server"
	"github.com/biomente/biomente/internal/service"
	"github.com/biomente/biomente/internal/state"
	"github.com/biomente/biomente/internal/storage"
	"github.com/biomente/biomente/internal/telemetry"
)

// analysisPollInterval is how often the background worker drains pending analysis jobs
const analysisPollInterval = 5 * time.Second

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the biomente API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// The assistant cannot run without its AI backend.
	if !cfg.HasOpenAI() {
		return fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if cfg.SentryDSN != "" {
		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if cfg.Environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	repo, err := repository.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer repo.Close()
	log.Printf("opened database %s", cfg.DatabasePath)

	store := state.New(repo)
	store.Restore(repo.Load(ctx))

	gateway := ai.NewClientWithConfig(ai.Config{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.OpenAIModel,
	})
	sessions := ai.NewSessionManager(gateway)
	extractor := extract.New()

	queue := jobs.NewQueue()
	analysisProcessor := jobs.NewAnalysisWorker(queue, gateway, store)
	analysisWorker := jobs.NewWorker(analysisProcessor, analysisPollInterval)
	go analysisWorker.Start(ctx)
	log.Println("analysis worker started")

	svc := service.NewAssistantService(store, gateway, sessions, extractor, queue)

	if cfg.HasS3() {
		s3Config := storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		}
		s3Client, err := storage.NewS3Client(ctx, s3Config)
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		svc.WithArchiver(s3Client)
	}

	routerCfg := server.RouterConfig{
		ProfileHandler:      handlers.NewProfileHandler(store, sessions),
		ProjectHandler:      handlers.NewProjectHandler(store),
		SearchHandler:       handlers.NewSearchHandler(svc, store),
		DocumentHandler:     handlers.NewDocumentHandler(svc),
		ArticleHandler:      handlers.NewArticleHandler(svc),
		ComparisonHandler:   handlers.NewComparisonHandler(svc, store),
		BibliographyHandler: handlers.NewBibliographyHandler(svc),
		ChatHandler:         handlers.NewChatHandler(svc),
		StateHandler:        handlers.NewStateHandler(store),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	analysisWorker.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}
